// Package flat converts nested mappings and sequences to and from flat
// mappings keyed by path expressions such as "a.c[1].d".
package flat

import (
	"fmt"

	"github.com/jacoelho/morph/internal/pathkey"
	"github.com/jacoelho/morph/internal/shape"
)

// Flatten flattens a mapping into a path-keyed map[string]any, or a sequence
// into a []any with nested sequences spliced in place.
func Flatten(v any) (any, error) {
	switch shape.Of(v) {
	case shape.Mapping:
		return FlattenMapping(v)
	case shape.Sequence:
		return FlattenSequence(v)
	default:
		return nil, fmt.Errorf("%w, not %T", ErrUnflattenableType, v)
	}
}

// FlattenMapping emits one entry per leaf of v keyed by the path leading to
// it. Empty nested containers contribute no entries.
func FlattenMapping(v any) (map[string]any, error) {
	m, ok := shape.AsMapping(v)
	if !ok {
		return nil, fmt.Errorf("%w, not %T", ErrUnflattenableType, v)
	}

	out := make(map[string]any, len(m))
	for key, value := range m {
		flattenInto(out, key, value)
	}

	return out, nil
}

func flattenInto(out map[string]any, path string, value any) {
	switch shape.Of(value) {
	case shape.Sequence:
		items, _ := shape.AsSequence(value)
		for index, item := range items {
			flattenInto(out, path+pathkey.FormatIndex(index), item)
		}
	case shape.Mapping:
		fields, _ := shape.AsMapping(value)
		for key, item := range fields {
			flattenInto(out, path+"."+key, item)
		}
	default:
		out[path] = value
	}
}

// FlattenSequence splices nested sequences into a single list. Mappings and
// leaves are kept as elements without being decomposed.
func FlattenSequence(v any) ([]any, error) {
	items, ok := shape.AsSequence(v)
	if !ok {
		return nil, fmt.Errorf("%w, not %T", ErrUnflattenableType, v)
	}

	out := make([]any, 0, len(items))
	return appendSpliced(out, items), nil
}

func appendSpliced(out []any, items []any) []any {
	for _, item := range items {
		if nested, ok := shape.AsSequence(item); ok {
			out = appendSpliced(out, nested)
			continue
		}
		out = append(out, item)
	}
	return out
}
