// Command xsdalign converts between XML and JSON-like documents guided by
// an XML Schema, and projects schemas onto JSON Schema.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"

	xa "github.com/reoring/xsdalign"
	"github.com/reoring/xsdalign/convert"
	"github.com/reoring/xsdalign/i18n"
	"github.com/reoring/xsdalign/internal/logging"
	"github.com/reoring/xsdalign/jsonschema"
	"github.com/reoring/xsdalign/override"
	"github.com/reoring/xsdalign/reverse"
	"github.com/reoring/xsdalign/xsd"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, ferr.Message)
			return
		}
		report(os.Stderr, err)
		os.Exit(1)
	}
}

// report prints err on w, one line per issue when it carries any.
func report(w io.Writer, err error) {
	iss, ok := xa.AsIssues(err)
	if !ok {
		fmt.Fprintln(w, "xsdalign:", err)
		return
	}
	for _, is := range iss {
		fmt.Fprintf(w, "xsdalign: %s at %s: %s\n", i18n.T(is.Code, nil), is.Path, is.Message)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	opts := NewOptions()
	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.ParseArgs(args); err != nil {
		return err
	}
	if parser.Active == nil {
		return errors.New("expected a command: tojson, toxml, jsonschema or explain")
	}
	switch parser.Active.Name {
	case "tojson":
		return toJSON(opts.ToJSON, stdin, stdout, stderr)
	case "toxml":
		return toXML(ctx, opts.ToXML, stdin, stdout, stderr)
	case "jsonschema":
		return projectSchema(opts.JSONSchema, stdout, stderr)
	case "explain":
		return explain(opts.Explain, stdout, stderr)
	}
	return errors.Errorf("unknown command %s", parser.Active.Name)
}

// env is the state shared by every command: the logger, the schema and the
// output stream.
type env struct {
	log    *slog.Logger
	schema *xsd.Schema
	out    io.Writer
	indent string
	close  func() error
}

func setup(c *Common, stdout, stderr io.Writer) (*env, error) {
	log := logging.New(c.LogLevel, c.LogFormat, stderr)
	i18n.SetLanguage(c.Lang)
	schema, err := xsd.LoadFile(c.Schema)
	if err != nil {
		return nil, err
	}
	e := &env{log: log, schema: schema, out: stdout, close: func() error { return nil }}
	if c.Output != "" {
		f, err := os.Create(c.Output)
		if err != nil {
			return nil, errors.Wrapf(err, "create %s", c.Output)
		}
		e.out, e.close = f, f.Close
	}
	switch {
	case c.Compact:
	case c.Indent != "":
		e.indent = c.Indent
	case terminal(e.out):
		e.indent = "  "
	}
	return e, nil
}

func terminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func open(path string, stdin io.Reader) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	return f, nil
}

func finish(e *env, warnings xa.Issues, err error) error {
	if len(warnings) > 0 {
		e.log.Info("conversion finished with warnings", "count", len(warnings))
	}
	if cerr := e.close(); err == nil && cerr != nil {
		err = cerr
	}
	return err
}

func toJSON(o *ToJSON, stdin io.Reader, stdout, stderr io.Writer) error {
	e, err := setup(&o.Common, stdout, stderr)
	if err != nil {
		return err
	}
	in, err := open(o.Args.Path, stdin)
	if err != nil {
		return finish(e, nil, err)
	}
	defer in.Close()
	warnings, err := convert.XMLToJSON(e.schema, in, e.out, convert.JSONOptions{
		Options: reverse.Options{
			CompactArrays:   o.CompactArrays,
			SkipRootElement: o.SkipRoot,
			SkipAttributes:  o.SkipAttributes,
			Logger:          e.log,
		},
		Indent: e.indent,
	})
	return finish(e, warnings, err)
}

func toXML(ctx context.Context, o *ToXML, stdin io.Reader, stdout, stderr io.Writer) error {
	e, err := setup(&o.Common, stdout, stderr)
	if err != nil {
		return err
	}
	opt := convert.XMLOptions{
		Options: xa.Options{
			RootElement:              o.Root,
			TargetNamespace:          o.Namespace,
			DeepSearch:               o.DeepSearch,
			FailOnWildcards:          o.FailOnWildcards,
			IgnoreUndeclaredElements: o.IgnoreUndeclared,
			CompactArrays:            o.CompactArrays,
			StrictSyntax:             o.Strict,
			SkipAttributes:           o.SkipAttributes,
			Logger:                   e.log,
		},
		Indent: e.indent,
	}
	if opt.Overrides, err = overrides(o, e.log); err != nil {
		return finish(e, nil, err)
	}

	in, err := open(o.Args.Path, stdin)
	if err != nil {
		return finish(e, nil, err)
	}
	defer in.Close()
	var warnings xa.Issues
	switch inputFormat(o.Format, o.Args.Path) {
	case "yaml":
		warnings, err = convert.YAMLToXML(ctx, e.schema, in, e.out, opt)
	case "xml":
		warnings, err = convert.DOMToXML(ctx, e.schema, in, e.out, opt)
	default:
		warnings, err = convert.JSONToXML(ctx, e.schema, in, e.out, opt)
	}
	return finish(e, warnings, err)
}

func inputFormat(format, path string) string {
	if format != "" && format != "auto" {
		return format
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".xml":
		return "xml"
	}
	return "json"
}

func overrides(o *ToXML, log *slog.Logger) (override.Provider, error) {
	if o.Overrides == "" && len(o.Set) == 0 {
		return nil, nil
	}
	m := override.NewMap()
	if o.Overrides != "" {
		f, err := os.Open(o.Overrides)
		if err != nil {
			return nil, errors.Wrapf(err, "open %s", o.Overrides)
		}
		defer f.Close()
		if m, err = override.Load(f, log); err != nil {
			return nil, err
		}
	}
	if err := override.ParseAssignments(m, o.Set, log); err != nil {
		return nil, err
	}
	return m, nil
}

func projectSchema(o *JSONSchema, stdout, stderr io.Writer) error {
	e, err := setup(&o.Common, stdout, stderr)
	if err != nil {
		return err
	}
	warnings, err := convert.ProjectJSONSchema(e.schema, o.Root, o.Namespace, e.out, jsonschema.Options{
		SkipArrayElementContainers: o.SkipArrayContainers,
		SkipRootElement:            o.SkipRoot,
		SkipAttributes:             o.SkipAttributes,
		SchemaLocation:             e.schema.Location,
		DefinitionsPath:            o.DefinitionsPath,
		Logger:                     e.log,
	}, e.indent)
	return finish(e, warnings, err)
}
