// Package codec reads and writes documents in the formats the morph CLI
// accepts: JSON, YAML, TOML and flat key=value properties.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"

	"github.com/jacoelho/morph/internal/shape"
)

// Format names a document encoding.
type Format string

const (
	FormatJSON       Format = "json"
	FormatYAML       Format = "yaml"
	FormatTOML       Format = "toml"
	FormatProperties Format = "properties"
)

var (
	ErrUnknownFormat    = errors.New("unknown format")
	ErrUnsupportedValue = errors.New("value cannot be encoded in this format")
	ErrDecode           = errors.New("decode failed")
)

// Formats lists every supported format.
func Formats() []Format {
	return []Format{FormatJSON, FormatYAML, FormatTOML, FormatProperties}
}

// ParseFormat resolves a user supplied format name.
func ParseFormat(input string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatYAML), "yml":
		return FormatYAML, nil
	case string(FormatTOML):
		return FormatTOML, nil
	case string(FormatProperties), "props", "env":
		return FormatProperties, nil
	default:
		return "", fmt.Errorf("%w, got: %s", ErrUnknownFormat, input)
	}
}

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".toml":
		return FormatTOML, true
	case ".properties", ".props", ".env":
		return FormatProperties, true
	default:
		return "", false
	}
}

// Decode reads a whole document from r.
func Decode(r io.Reader, format Format) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	switch format {
	case FormatJSON:
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("%w: json: %v", ErrDecode, err)
		}
		return v, nil
	case FormatYAML:
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("%w: yaml: %v", ErrDecode, err)
		}
		return v, nil
	case FormatTOML:
		var v map[string]any
		if err := toml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("%w: toml: %v", ErrDecode, err)
		}
		return v, nil
	case FormatProperties:
		return decodeProperties(data)
	default:
		return nil, fmt.Errorf("%w, got: %s", ErrUnknownFormat, format)
	}
}

// Encode writes v to w.
func Encode(w io.Writer, format Format, v any) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("encode JSON: %w", err)
		}
		return nil
	case FormatYAML:
		payload, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode YAML: %w", err)
		}
		_, err = w.Write(payload)
		return err
	case FormatTOML:
		if !shape.IsMapping(v) {
			return fmt.Errorf("%w: toml documents must be tables, got %T", ErrUnsupportedValue, v)
		}
		if err := toml.NewEncoder(w).Encode(v); err != nil {
			return fmt.Errorf("encode TOML: %w", err)
		}
		return nil
	case FormatProperties:
		return encodeProperties(w, v)
	default:
		return fmt.Errorf("%w, got: %s", ErrUnknownFormat, format)
	}
}
