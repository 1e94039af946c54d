// Package coerce converts loosely typed configuration values into booleans
// and lists.
package coerce

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"mvdan.cc/sh/v3/shell"

	"github.com/jacoelho/morph/internal/flat"
	"github.com/jacoelho/morph/internal/number"
	"github.com/jacoelho/morph/internal/shape"
)

// ErrInvalidBool indicates a string that is neither truthy nor falsy.
var ErrInvalidBool = errors.New("invalid boolean literal")

var (
	truthy = []string{"t", "true", "y", "yes", "on", "1"}
	falsy  = []string{"f", "false", "n", "no", "off", "0"}
)

// ParseBool converts v to a boolean. Strings are matched case-insensitively
// against the truthy words (t, true, y, yes, on, 1) and the falsy words
// (f, false, n, no, off, 0); any other string fails with ErrInvalidBool.
// Non-string values follow Truthy.
func ParseBool(v any) (bool, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	if !shape.IsString(v) {
		return Truthy(v), nil
	}

	word := strings.ToLower(reflect.ValueOf(v).String())
	for _, candidate := range truthy {
		if word == candidate {
			return true, nil
		}
	}
	for _, candidate := range falsy {
		if word == candidate {
			return false, nil
		}
	}

	return false, fmt.Errorf("%w: %q", ErrInvalidBool, word)
}

// ToBool is ParseBool returning fallback for unrecognised strings.
func ToBool(v any, fallback bool) bool {
	b, err := ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// Truthy reports whether v is non-empty: nil, false, numeric zero, empty
// strings and empty containers are false, everything else is true.
func Truthy(v any) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	if zero, ok := number.IsZero(v); ok {
		return !zero
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map, reflect.Chan:
		return rv.Len() > 0
	case reflect.Bool:
		return rv.Bool()
	case reflect.Pointer, reflect.Interface, reflect.Func:
		return !rv.IsNil()
	default:
		return true
	}
}

// ListOptions tunes ToList. The zero value flattens nested sequences and
// splits strings into shell words.
type ListOptions struct {
	// KeepNested disables splicing nested sequences into the result.
	KeepNested bool
	// NoSplit keeps strings as single elements.
	NoSplit bool
}

// ToList converts v to a list. Empty values give an empty list, sequences are
// copied (and flattened unless KeepNested), strings are split with POSIX
// shell quoting rules unless NoSplit, anything else is wrapped.
func ToList(v any, opts ListOptions) ([]any, error) {
	if !Truthy(v) {
		return []any{}, nil
	}

	if items, ok := shape.AsSequence(v); ok {
		if opts.KeepNested {
			return append([]any(nil), items...), nil
		}
		return flat.FlattenSequence(items)
	}

	if s, ok := v.(string); ok && !opts.NoSplit {
		words, err := SplitWords(s)
		if err != nil {
			return nil, err
		}
		out := make([]any, len(words))
		for i, word := range words {
			out[i] = word
		}
		return out, nil
	}

	return []any{v}, nil
}

// SplitWords splits s into words using shell quoting rules. Parameters are
// not expanded: "$HOME" stays "$HOME".
func SplitWords(s string) ([]string, error) {
	words, err := shell.Fields(s, func(name string) string {
		return "$" + name
	})
	if err != nil {
		return nil, fmt.Errorf("split %q: %w", s, err)
	}
	return words, nil
}
