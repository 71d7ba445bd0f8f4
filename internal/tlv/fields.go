package tlv

import (
	"bytes"
	"encoding/json"
	"sort"

	"gopkg.in/yaml.v3"
)

// Fields is a field map that remembers insertion order. Setting a key that
// already exists replaces its value but keeps its original position, so a
// parsed payload lists its tags in scan order with last-write-wins values.
//
// The zero value is not ready to use; construct with NewFields.
type Fields struct {
	keys   []string
	values map[string]string
}

// NewFields returns an empty Fields.
func NewFields() *Fields {
	return &Fields{values: make(map[string]string)}
}

// FieldsFromMap copies m into a new Fields with keys in sorted order.
func FieldsFromMap(m map[string]string) *Fields {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	f := NewFields()
	for _, k := range keys {
		f.Set(k, m[k])
	}
	return f
}

// Set stores value under key.
func (f *Fields) Set(key, value string) {
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
}

// Get returns the value stored under key.
func (f *Fields) Get(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

// Value returns the value stored under key, or "" when absent.
func (f *Fields) Value(key string) string {
	return f.values[key]
}

// Has reports whether key is present.
func (f *Fields) Has(key string) bool {
	_, ok := f.values[key]
	return ok
}

// Len returns the number of keys.
func (f *Fields) Len() int {
	return len(f.keys)
}

// Keys returns the keys in insertion order.
func (f *Fields) Keys() []string {
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

// Range calls fn for each key in insertion order until fn returns false.
func (f *Fields) Range(fn func(key, value string) bool) {
	for _, k := range f.keys {
		if !fn(k, f.values[k]) {
			return
		}
	}
}

// Map returns an unordered copy of the fields.
func (f *Fields) Map() map[string]string {
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the fields as a JSON object in insertion order.
func (f *Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range f.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML encodes the fields as a YAML mapping in insertion order. Every
// scalar is tagged as a string so ids like 01 are not read back as numbers.
func (f *Fields) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range f.keys {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.values[k]},
		)
	}
	return node, nil
}
