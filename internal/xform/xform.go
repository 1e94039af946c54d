// Package xform rebuilds nested values while passing every leaf and every
// mapping key through a caller-supplied function.
package xform

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/jacoelho/morph/internal/shape"
)

var (
	// ErrKeyNotString indicates a transformed mapping key that is not a string.
	ErrKeyNotString = errors.New("transformed key is not a string")

	// ErrKeyCollision indicates two keys of one mapping transformed into the
	// same key.
	ErrKeyCollision = errors.New("transformed keys collide")
)

// Position tells where the value handed to a Func sits.
type Position uint8

const (
	// PositionRoot is a leaf passed directly to Transform.
	PositionRoot Position = iota
	// PositionElement is a leaf inside a sequence.
	PositionElement
	// PositionKey is a mapping key.
	PositionKey
	// PositionValue is a leaf stored under a mapping key.
	PositionValue
)

// Context describes the surroundings of a transformed value. Only the fields
// relevant to Position are set.
type Context struct {
	Position Position
	// Root is the value originally passed to Transform.
	Root any

	// Index and Seq are set for PositionElement.
	Index int
	Seq   []any

	// ItemKey is set for PositionValue, ItemValue for PositionKey; Dict for both.
	ItemKey   string
	ItemValue any
	Dict      map[string]any
}

// Func transforms one value.
type Func func(value any, ctx Context) (any, error)

// Transform returns a copy of v where every leaf and mapping key has been
// replaced by fn's result. Sequences and mappings are rebuilt, never mutated.
func Transform(v any, fn Func) (any, error) {
	return walk(v, Context{Position: PositionRoot, Root: v}, fn)
}

func walk(current any, ctx Context, fn Func) (any, error) {
	switch shape.Of(current) {
	case shape.Sequence:
		items, _ := shape.AsSequence(current)
		out := make([]any, len(items))
		for index, item := range items {
			transformed, err := walk(item, Context{
				Position: PositionElement,
				Root:     ctx.Root,
				Index:    index,
				Seq:      items,
			}, fn)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", index, err)
			}
			out[index] = transformed
		}
		return out, nil
	case shape.Mapping:
		fields, _ := shape.AsMapping(current)
		out := make(map[string]any, len(fields))
		for key, value := range fields {
			newKey, err := fn(key, Context{
				Position:  PositionKey,
				Root:      ctx.Root,
				ItemValue: value,
				Dict:      fields,
			})
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", key, err)
			}
			if !shape.IsString(newKey) {
				return nil, fmt.Errorf("%w: key %q became %T", ErrKeyNotString, key, newKey)
			}
			name := reflect.ValueOf(newKey).String()
			if _, exists := out[name]; exists {
				return nil, fmt.Errorf("%w: %q", ErrKeyCollision, name)
			}

			newValue, err := walk(value, Context{
				Position: PositionValue,
				Root:     ctx.Root,
				ItemKey:  key,
				Dict:     fields,
			}, fn)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			out[name] = newValue
		}
		return out, nil
	default:
		return fn(current, ctx)
	}
}

// Stringify renders every leaf value as a string and leaves keys unchanged.
// nil becomes the empty string.
func Stringify(value any, ctx Context) (any, error) {
	if ctx.Position == PositionKey {
		return value, nil
	}

	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return fmt.Sprint(v), nil
	}
}
