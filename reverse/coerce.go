package reverse

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/itchyny/timefmt-go"

	"github.com/reoring/xsdalign/xsd"
)

const (
	dateLayout     = "%Y-%m-%d"
	dateTimeLayout = "%Y-%m-%dT%H:%M:%S"
	timeLayout     = "%H:%M:%S"
)

// coerce converts the text of a leaf of type t into a JSON scalar. Text that
// does not fit the built-in kind stays a string and ok is false.
func coerce(t *xsd.SimpleType, text string) (v any, ok bool) {
	if t == nil {
		return text, true
	}
	s := strings.TrimSpace(text)
	switch k := t.BuiltinKind(); {
	case k == xsd.KindBoolean:
		switch s {
		case "true", "1":
			return true, true
		case "false", "0":
			return false, true
		}
		return text, false
	case k.IsInteger():
		n := strings.TrimPrefix(s, "+")
		if _, ok := new(big.Int).SetString(n, 10); !ok || !jsonNumber(n) {
			return text, false
		}
		return json.Number(n), true
	case k.IsNumeric():
		switch s {
		case "INF", "-INF", "+INF", "NaN":
			// no JSON number form
			return text, true
		}
		n := strings.TrimPrefix(s, "+")
		if _, err := strconv.ParseFloat(n, 64); err != nil || !jsonNumber(n) {
			return text, false
		}
		return json.Number(n), true
	case k == xsd.KindDate:
		return text, validTime(s, 10, dateLayout)
	case k == xsd.KindDateTime:
		return text, validTime(s, 19, dateTimeLayout)
	case k == xsd.KindTime:
		return text, validTime(s, 8, timeLayout)
	}
	return text, true
}

// validTime checks the leading n characters of s against layout; fractional
// seconds and zone designators that follow are not inspected. Parse rolls
// out-of-range fields over (2020-02-30 becomes March 1st), so the parsed
// value must format back to the same text.
func validTime(s string, n int, layout string) bool {
	if len(s) < n {
		return false
	}
	t, err := timefmt.Parse(s[:n], layout)
	return err == nil && timefmt.Format(t, layout) == s[:n]
}

// jsonNumber reports whether s is also a valid JSON number literal; XML
// allows forms such as "1." and ".5" that JSON does not.
func jsonNumber(s string) bool {
	if s == "" || (s[0] != '-' && (s[0] < '0' || s[0] > '9')) {
		return false
	}
	return json.Valid([]byte(s))
}
