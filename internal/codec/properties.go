package codec

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/jacoelho/morph/internal/flat"
	"github.com/jacoelho/morph/internal/shape"
)

// decodeProperties parses key=value lines. Empty lines and lines starting
// with # are skipped; keys and values are trimmed.
func decodeProperties(data []byte) (map[string]any, error) {
	out := make(map[string]any)
	lines := strings.Split(string(data), "\n")

	for lineNum, line := range lines {
		line = strings.TrimSpace(line)

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("%w: properties: invalid format at line %d: %s (expected key=value)", ErrDecode, lineNum+1, line)
		}

		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("%w: properties: empty key at line %d: %s", ErrDecode, lineNum+1, line)
		}

		out[key] = strings.TrimSpace(value)
	}

	return out, nil
}

// encodeProperties writes one sorted key=value line per leaf. Nested values
// are flattened into path keys first.
func encodeProperties(w io.Writer, v any) error {
	if !shape.IsMapping(v) {
		return fmt.Errorf("%w: properties documents must be mappings, got %T", ErrUnsupportedValue, v)
	}

	entries, err := flat.FlattenMapping(v)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	bw := bufio.NewWriter(w)
	for _, key := range keys {
		if _, err := fmt.Fprintf(bw, "%s=%s\n", key, propertyValue(entries[key])); err != nil {
			return err
		}
	}

	return bw.Flush()
}

func propertyValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}
