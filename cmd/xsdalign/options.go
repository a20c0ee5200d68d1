package main

// Common holds the flags every command takes.
type Common struct {
	Schema    string `short:"s" long:"schema" description:"schema descriptor (YAML or JSON)" required:"true"`
	Output    string `short:"o" long:"output" description:"output file, stdout when empty"`
	Indent    string `long:"indent" description:"indentation; two spaces by default when writing to a terminal"`
	Compact   bool   `long:"compact" description:"never indent output"`
	LogLevel  string `long:"log-level" default:"WARN" description:"DEBUG, INFO, WARN or ERROR"`
	LogFormat string `long:"log-format" default:"text" choice:"text" choice:"json" description:"log output format"`
	Lang      string `long:"lang" default:"en" choice:"en" choice:"ja" description:"language of issue reports"`
}

// Input is the optional positional input file.
type Input struct {
	Path string `positional-arg-name:"input" description:"input file, stdin when empty or -"`
}

type ToJSON struct {
	Common
	CompactArrays  bool  `long:"compact-arrays" description:"collapse containers of one repeating child into arrays"`
	SkipRoot       bool  `long:"skip-root" description:"omit the root element wrapper"`
	SkipAttributes bool  `long:"skip-attributes" description:"drop all attributes"`
	Args           Input `positional-args:"yes"`
}

type ToXML struct {
	Common
	Root             string   `short:"r" long:"root" description:"root element, derived from the input when empty"`
	Namespace        string   `short:"n" long:"namespace" description:"namespace of the root element"`
	Format           string   `short:"f" long:"format" default:"auto" choice:"auto" choice:"json" choice:"yaml" choice:"xml" description:"input format, from the file extension when auto"`
	DeepSearch       bool     `long:"deep-search" description:"recover required structure from flattened input"`
	CompactArrays    bool     `long:"compact-arrays" description:"accept bare arrays for containers of one repeating child"`
	Strict           bool     `long:"strict" description:"reject array shapes that do not match --compact-arrays"`
	FailOnWildcards  bool     `long:"fail-on-wildcards" description:"abort on wildcard content instead of warning"`
	IgnoreUndeclared bool     `long:"ignore-undeclared" description:"warn on undeclared input members instead of failing"`
	SkipAttributes   bool     `long:"skip-attributes" description:"ignore attribute members"`
	Overrides        string   `long:"overrides" description:"YAML or JSON file of path overrides and defaults"`
	Set              []string `long:"set" description:"override path=value, repeatable"`
	Args             Input    `positional-args:"yes"`
}

type JSONSchema struct {
	Common
	Root                string `short:"r" long:"root" description:"root element" required:"true"`
	Namespace           string `short:"n" long:"namespace" description:"namespace of the root element"`
	SkipRoot            bool   `long:"skip-root" description:"describe the root value without its wrapper"`
	SkipArrayContainers bool   `long:"skip-array-containers" description:"describe containers of one repeating child as arrays"`
	SkipAttributes      bool   `long:"skip-attributes" description:"leave attributes out"`
	DefinitionsPath     string `long:"definitions-path" description:"reference prefix, #/components/schemas/ for OpenAPI"`
}

type Explain struct {
	Common
}

type Options struct {
	ToJSON     *ToJSON     `command:"tojson" description:"convert XML to JSON"`
	ToXML      *ToXML      `command:"toxml" description:"align JSON, YAML or XML with the schema and write XML"`
	JSONSchema *JSONSchema `command:"jsonschema" description:"project the schema onto a JSON Schema"`
	Explain    *Explain    `command:"explain" description:"print the elements of the schema with their cardinality"`
}

// NewOptions allocates every command so the parser has somewhere to store
// its flags.
func NewOptions() *Options {
	return &Options{
		ToJSON:     &ToJSON{},
		ToXML:      &ToXML{},
		JSONSchema: &JSONSchema{},
		Explain:    &Explain{},
	}
}
