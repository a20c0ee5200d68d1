package override

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type document struct {
	Overrides map[string]any `yaml:"overrides"`
	Defaults  map[string]any `yaml:"defaults"`
}

// Load reads overrides from YAML or JSON. The document either has
// "overrides"/"defaults" sections or is a flat path->value mapping of
// overrides. Duplicate paths are logged and the first value kept.
func Load(r io.Reader, log *slog.Logger) (*Map, error) {
	if log == nil {
		log = slog.Default()
	}
	var raw map[string]any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return NewMap(), nil
		}
		return nil, errors.Wrap(err, "override: decode")
	}
	doc := document{Overrides: raw}
	if sectioned(raw) {
		doc.Overrides, _ = raw["overrides"].(map[string]any)
		doc.Defaults, _ = raw["defaults"].(map[string]any)
	}
	m := NewMap()
	if err := register(m.Register, doc.Overrides, log); err != nil {
		return nil, err
	}
	if err := register(m.RegisterDefault, doc.Defaults, log); err != nil {
		return nil, err
	}
	return m, nil
}

func sectioned(raw map[string]any) bool {
	if len(raw) == 0 {
		return false
	}
	for k := range raw {
		if k != "overrides" && k != "defaults" {
			return false
		}
	}
	return true
}

// FromMap registers a flat path->value mapping of overrides.
func FromMap(values map[string]any, log *slog.Logger) (*Map, error) {
	if log == nil {
		log = slog.Default()
	}
	m := NewMap()
	return m, register(m.Register, values, log)
}

// ParseAssignments registers "path=value" pairs, as given on a command line.
func ParseAssignments(m *Map, assignments []string, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	for _, a := range assignments {
		k, v, ok := strings.Cut(a, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return errors.Errorf("override: invalid assignment [%s], expected path=value", a)
		}
		if err := m.Register(ParsePath(strings.TrimSpace(k)), v); err != nil {
			if errors.Is(err, ErrDuplicate) {
				log.Warn("duplicate override ignored", "path", k)
				continue
			}
			return errors.Wrapf(err, "override: register [%s]", k)
		}
	}
	return nil
}

func register(add func(Path, any) error, values map[string]any, log *slog.Logger) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := add(ParsePath(k), normalize(values[k])); err != nil {
			if errors.Is(err, ErrDuplicate) {
				log.Warn("duplicate override ignored", "path", k)
				continue
			}
			return errors.Wrapf(err, "override: register [%s]", k)
		}
	}
	return nil
}

// normalize turns decoded scalars into their text and keeps lists as lists.
func normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return t
	case []any:
		out := make([]any, 0, len(t))
		for _, it := range t {
			out = append(out, normalize(it))
		}
		return out
	}
	return fmt.Sprint(v)
}
