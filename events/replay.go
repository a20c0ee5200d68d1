package events

import (
	"encoding/xml"
	"io"

	"github.com/pkg/errors"
)

// Replay parses XML from r and sends its structure to sink. Namespace
// declarations become prefix mapping events; comments, processing
// instructions and directives are skipped.
func Replay(r io.Reader, sink Sink) error {
	dec := xml.NewDecoder(r)
	if err := sink.StartDocument(); err != nil {
		return err
	}
	var declared [][]string
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "events: read xml")
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var prefixes []string
			attrs := make([]xml.Attr, 0, len(t.Attr))
			for _, a := range t.Attr {
				switch {
				case a.Name.Space == "xmlns":
					prefixes = append(prefixes, a.Name.Local)
					if err := sink.StartPrefixMapping(a.Name.Local, a.Value); err != nil {
						return err
					}
				case a.Name.Space == "" && a.Name.Local == "xmlns":
					prefixes = append(prefixes, "")
					if err := sink.StartPrefixMapping("", a.Value); err != nil {
						return err
					}
				default:
					attrs = append(attrs, a)
				}
			}
			declared = append(declared, prefixes)
			if err := sink.StartElement(t.Name, attrs); err != nil {
				return err
			}
		case xml.CharData:
			if err := sink.Characters(string(t)); err != nil {
				return err
			}
		case xml.EndElement:
			if err := sink.EndElement(t.Name); err != nil {
				return err
			}
			n := len(declared) - 1
			for _, p := range declared[n] {
				if err := sink.EndPrefixMapping(p); err != nil {
					return err
				}
			}
			declared = declared[:n]
		}
	}
	return sink.EndDocument()
}
