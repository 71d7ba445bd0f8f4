package writer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// InputFormat picks the field map format for a file by extension. Files
// without a known extension are read as JSON.
func InputFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

// ReadFieldMap decodes a flat field map. Scalar values of any type are
// converted to their text form; nested values are rejected. Numbers lose
// trailing zeros in TOML (12.30 reads as 12.3), so amounts should be quoted.
func ReadFieldMap(data []byte, f Format) (map[string]string, error) {
	var raw map[string]any

	switch f {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to parse JSON field map: %w", err)
		}
	case FormatYAML:
		// Decoding straight into strings keeps "01" and "12.30" verbatim.
		var m map[string]string
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to parse YAML field map: %w", err)
		}
		if m == nil {
			m = map[string]string{}
		}
		return m, nil
	case FormatTOML:
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return nil, fmt.Errorf("failed to parse TOML field map: %w", err)
		}
	default:
		return nil, fmt.Errorf("format %q cannot be read as a field map", f)
	}

	out := make(map[string]string, len(raw))
	for k, v := range raw {
		s, err := scalarString(v)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
		out[k] = s
	}
	return out, nil
}

func scalarString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case bool:
		return strconv.FormatBool(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("unsupported value of type %T", v)
	}
}

// ParseAssignments reads "key=value" pairs, as given to --set flags.
func ParseAssignments(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q, want key=value", p)
		}
		out[key] = value
	}
	return out, nil
}
