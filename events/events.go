// Package events defines the structural event stream exchanged between the
// Forward Aligner, serializers and the Reverse Builder.
package events

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Sink consumes structural events. Element names carry the namespace URI in
// Space; prefixes are announced with StartPrefixMapping before the element
// that declares them and withdrawn with EndPrefixMapping after it closes.
type Sink interface {
	StartDocument() error
	EndDocument() error
	StartPrefixMapping(prefix, uri string) error
	EndPrefixMapping(prefix string) error
	StartElement(name xml.Name, attrs []xml.Attr) error
	Characters(text string) error
	EndElement(name xml.Name) error
}

// Kind identifies an event.
type Kind int

const (
	StartDocument Kind = iota
	EndDocument
	StartPrefixMapping
	EndPrefixMapping
	StartElement
	Characters
	EndElement
)

func (k Kind) String() string {
	switch k {
	case StartDocument:
		return "startDocument"
	case EndDocument:
		return "endDocument"
	case StartPrefixMapping:
		return "startPrefixMapping"
	case EndPrefixMapping:
		return "endPrefixMapping"
	case StartElement:
		return "startElement"
	case Characters:
		return "characters"
	case EndElement:
		return "endElement"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Event is one recorded call on a Sink.
type Event struct {
	Kind   Kind
	Name   xml.Name
	Attrs  []xml.Attr
	Text   string
	Prefix string
	URI    string
}

func (e Event) String() string {
	switch e.Kind {
	case StartElement:
		var b strings.Builder
		b.WriteString("<" + e.Name.Local)
		for _, a := range e.Attrs {
			fmt.Fprintf(&b, " %s=%q", a.Name.Local, a.Value)
		}
		b.WriteString(">")
		return b.String()
	case EndElement:
		return "</" + e.Name.Local + ">"
	case Characters:
		return e.Text
	case StartPrefixMapping:
		return "xmlns:" + e.Prefix + "=" + e.URI
	case EndPrefixMapping:
		return "-xmlns:" + e.Prefix
	}
	return e.Kind.String()
}

// Send replays e on sink.
func (e Event) Send(sink Sink) error {
	switch e.Kind {
	case StartDocument:
		return sink.StartDocument()
	case EndDocument:
		return sink.EndDocument()
	case StartPrefixMapping:
		return sink.StartPrefixMapping(e.Prefix, e.URI)
	case EndPrefixMapping:
		return sink.EndPrefixMapping(e.Prefix)
	case StartElement:
		return sink.StartElement(e.Name, e.Attrs)
	case Characters:
		return sink.Characters(e.Text)
	case EndElement:
		return sink.EndElement(e.Name)
	}
	return fmt.Errorf("events: unknown kind %d", e.Kind)
}

// Recorder is a Sink that keeps every event in order.
type Recorder struct {
	Events []Event
}

func (r *Recorder) StartDocument() error { return r.add(Event{Kind: StartDocument}) }
func (r *Recorder) EndDocument() error   { return r.add(Event{Kind: EndDocument}) }

func (r *Recorder) StartPrefixMapping(prefix, uri string) error {
	return r.add(Event{Kind: StartPrefixMapping, Prefix: prefix, URI: uri})
}

func (r *Recorder) EndPrefixMapping(prefix string) error {
	return r.add(Event{Kind: EndPrefixMapping, Prefix: prefix})
}

func (r *Recorder) StartElement(name xml.Name, attrs []xml.Attr) error {
	return r.add(Event{Kind: StartElement, Name: name, Attrs: append([]xml.Attr(nil), attrs...)})
}

func (r *Recorder) Characters(text string) error {
	// adjacent text merges into one event
	if n := len(r.Events); n > 0 && r.Events[n-1].Kind == Characters {
		r.Events[n-1].Text += text
		return nil
	}
	return r.add(Event{Kind: Characters, Text: text})
}

func (r *Recorder) EndElement(name xml.Name) error {
	return r.add(Event{Kind: EndElement, Name: name})
}

func (r *Recorder) add(e Event) error {
	r.Events = append(r.Events, e)
	return nil
}

// Replay sends the recorded events to sink, stopping at the first error.
func (r *Recorder) Replay(sink Sink) error {
	for _, e := range r.Events {
		if err := e.Send(sink); err != nil {
			return err
		}
	}
	return nil
}

// Tee forwards every event to each sink in order.
type Tee []Sink

func (t Tee) each(f func(Sink) error) error {
	for _, s := range t {
		if err := f(s); err != nil {
			return err
		}
	}
	return nil
}

func (t Tee) StartDocument() error { return t.each(func(s Sink) error { return s.StartDocument() }) }
func (t Tee) EndDocument() error   { return t.each(func(s Sink) error { return s.EndDocument() }) }

func (t Tee) StartPrefixMapping(prefix, uri string) error {
	return t.each(func(s Sink) error { return s.StartPrefixMapping(prefix, uri) })
}

func (t Tee) EndPrefixMapping(prefix string) error {
	return t.each(func(s Sink) error { return s.EndPrefixMapping(prefix) })
}

func (t Tee) StartElement(name xml.Name, attrs []xml.Attr) error {
	return t.each(func(s Sink) error { return s.StartElement(name, attrs) })
}

func (t Tee) Characters(text string) error {
	return t.each(func(s Sink) error { return s.Characters(text) })
}

func (t Tee) EndElement(name xml.Name) error {
	return t.each(func(s Sink) error { return s.EndElement(name) })
}
