// Package credentials loads and validates the per-system credential bundle used to
// launch the exporters.
//
// A bundle is a flat structured file (JSON or YAML) keyed by system identifier. A
// value is either a single secret string or an object with named sub-secrets, e.g.
//
//	{
//	  "moodle": "0123456789abcdef",
//	  "dis":    "fedcba9876543210",
//	  "stepik": { "client_id": "...", "client_secret": "..." }
//	}
package credentials

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrNoUsableCredentials = errors.New("no usable credentials in bundle")
	ErrNoSupportedSystems  = errors.New("no supported systems in bundle")
)

// Value is a single bundle entry. Exactly one of Token or Fields is populated for
// a well formed entry.
type Value struct {
	Token  string
	Fields map[string]string
}

// Bundle is the decoded, unvalidated credential file.
type Bundle map[string]Value

// Registry is a validated bundle restricted to supported systems. Every entry in a
// Registry is usable.
type Registry struct {
	values map[string]Value
}

func (v Value) usable() bool {
	if strings.TrimSpace(v.Token) != "" {
		return true
	}

	for _, f := range v.Fields {
		if strings.TrimSpace(f) != "" {
			return true
		}
	}

	return false
}

// Load reads and decodes the credential bundle at path.
func Load(path string) (Bundle, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file %v (%w)", path, err)
	}

	return Decode(b)
}

// Decode parses a bundle from JSON or YAML bytes.
func Decode(b []byte) (Bundle, error) {
	raw := map[string]any{}
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("invalid credentials file (%w)", err)
	}

	bundle := Bundle{}
	for k, v := range raw {
		switch value := v.(type) {
		case map[string]any:
			fields := map[string]string{}
			for name, f := range value {
				fields[name] = scalar(f)
			}
			bundle[k] = Value{Fields: fields}

		default:
			bundle[k] = Value{Token: scalar(value)}
		}
	}

	return bundle, nil
}

// Validate checks that the bundle has at least one usable entry and at least one
// usable entry for a supported system, and returns the registry restricted to those
// entries.
func Validate(bundle Bundle, supported ...string) (*Registry, error) {
	usable := false
	for _, v := range bundle {
		if v.usable() {
			usable = true
			break
		}
	}

	if !usable {
		return nil, fmt.Errorf("%w: %v", ErrNoUsableCredentials, keys(bundle))
	}

	registry := Registry{
		values: map[string]Value{},
	}

	for _, system := range supported {
		if v, ok := bundle[system]; ok && v.usable() {
			registry.values[system] = v
		}
	}

	if len(registry.values) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrNoSupportedSystems, keys(bundle))
	}

	return &registry, nil
}

// LoadRegistry is Load followed by Validate.
func LoadRegistry(path string, supported ...string) (*Registry, error) {
	bundle, err := Load(path)
	if err != nil {
		return nil, err
	}

	return Validate(bundle, supported...)
}

func (r *Registry) Has(system string) bool {
	if r == nil {
		return false
	}

	_, ok := r.values[system]

	return ok
}

// Token returns the single secret configured for a system.
func (r *Registry) Token(system string) (string, error) {
	if !r.Has(system) {
		return "", fmt.Errorf("no credentials for system '%v'", system)
	}

	token := strings.TrimSpace(r.values[system].Token)
	if token == "" {
		return "", fmt.Errorf("credentials for system '%v' are not a single token", system)
	}

	return token, nil
}

// Field returns a named sub-secret configured for a system.
func (r *Registry) Field(system, name string) (string, error) {
	if !r.Has(system) {
		return "", fmt.Errorf("no credentials for system '%v'", system)
	}

	v := strings.TrimSpace(r.values[system].Fields[name])
	if v == "" {
		return "", fmt.Errorf("missing '%v' in credentials for system '%v'", name, system)
	}

	return v, nil
}

// Systems returns the registered system identifiers in sorted order.
func (r *Registry) Systems() []string {
	if r == nil {
		return nil
	}

	list := make([]string, 0, len(r.values))
	for k := range r.values {
		list = append(list, k)
	}

	sort.Strings(list)

	return list
}

// scalar renders a bundle value as a string. Zero numbers, false, null and empty lists
// render as "" so that they do not count as usable credentials.
func scalar(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case bool:
		if value {
			return "true"
		}
		return ""
	case int:
		if value == 0 {
			return ""
		}
		return fmt.Sprintf("%v", value)
	case int64:
		if value == 0 {
			return ""
		}
		return fmt.Sprintf("%v", value)
	case uint64:
		if value == 0 {
			return ""
		}
		return fmt.Sprintf("%v", value)
	case float64:
		if value == 0 {
			return ""
		}
		return fmt.Sprintf("%v", value)
	case []any:
		if len(value) == 0 {
			return ""
		}
		return fmt.Sprintf("%v", value)
	default:
		return fmt.Sprintf("%v", value)
	}
}

func keys(bundle Bundle) []string {
	list := make([]string, 0, len(bundle))
	for k := range bundle {
		list = append(list, k)
	}

	sort.Strings(list)

	return list
}
