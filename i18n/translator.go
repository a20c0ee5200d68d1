// Package i18n titles issue codes for people reading command line reports.
package i18n

// Translator retrieves localized titles for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "path" or "element").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	var msg string
	switch t.lang {
	case "ja":
		switch code {
		case "structural_mismatch":
			msg = "スキーマに合う構造が見つかりません"
		case "undeclared_node":
			msg = "宣言されていないノードです"
		case "duplicate_element":
			msg = "要素が重複しています"
		case "wildcard_encountered":
			msg = "ワイルドカードに到達しました"
		case "unknown_root":
			msg = "ルート要素を特定できません"
		case "array_shape":
			msg = "配列の形が不正です"
		case "ambiguous_declaration":
			msg = "宣言が曖昧です"
		case "invalid_value":
			msg = "値が不正です"
		case "parse_error":
			msg = "解析エラー"
		}
	default: // "en"
		switch code {
		case "structural_mismatch":
			msg = "no content path matches the schema"
		case "undeclared_node":
			msg = "undeclared node"
		case "duplicate_element":
			msg = "duplicate element"
		case "wildcard_encountered":
			msg = "wildcard encountered"
		case "unknown_root":
			msg = "unknown root element"
		case "array_shape":
			msg = "unexpected array shape"
		case "ambiguous_declaration":
			msg = "ambiguous declaration"
		case "invalid_value":
			msg = "invalid value"
		case "parse_error":
			msg = "parse error"
		}
	}
	if msg == "" {
		return code
	}
	if el := data["element"]; el != "" {
		msg += " [" + el + "]"
	}
	return msg
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
