// Package shape classifies arbitrary Go values into the container shapes the
// path codec understands: scalars, sequences, mappings and opaque leaves.
package shape

import (
	"encoding/json"
	"reflect"

	"github.com/jacoelho/morph/internal/stack"
)

// Kind is the shape of a value as seen by the flattener and unflattener.
type Kind uint8

const (
	// Scalar covers nil, booleans, numbers, strings and byte slices.
	Scalar Kind = iota
	// Sequence covers slices and arrays other than byte slices.
	Sequence
	// Mapping covers maps whose keys are all strings.
	Mapping
	// Opaque covers everything else (structs, pointers, funcs, channels).
	Opaque
)

func (k Kind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case Sequence:
		return "sequence"
	case Mapping:
		return "mapping"
	case Opaque:
		return "opaque"
	default:
		return "unknown"
	}
}

// Leaf reports whether values of this kind are carried through unchanged.
func (k Kind) Leaf() bool {
	return k == Scalar || k == Opaque
}

// Of classifies v. Every value maps to exactly one Kind.
func Of(v any) Kind {
	switch v.(type) {
	case nil, bool, string, []byte, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, uintptr,
		float32, float64, complex64, complex128:
		return Scalar
	case map[string]any:
		return Mapping
	case []any:
		return Sequence
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return Scalar
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return Scalar
		}
		return Sequence
	case reflect.Array:
		return Sequence
	case reflect.Map:
		if hasStringKeys(rv) {
			return Mapping
		}
		return Opaque
	default:
		return Opaque
	}
}

// IsString reports whether v is a string or a named string type.
func IsString(v any) bool {
	if v == nil {
		return false
	}
	return reflect.TypeOf(v).Kind() == reflect.String
}

// IsSequence reports whether v is sequence-shaped.
func IsSequence(v any) bool {
	return Of(v) == Sequence
}

// IsMapping reports whether v is mapping-shaped.
func IsMapping(v any) bool {
	return Of(v) == Mapping
}

// IsScalar reports whether v is nil, a boolean, a number, a string or a byte slice.
func IsScalar(v any) bool {
	return Of(v) == Scalar
}

// IsStruct reports whether v is a mapping or a sequence. When primitives is
// set, every contained value must also be primitive (see IsPrimitive).
func IsStruct(v any, primitives bool) bool {
	switch Of(v) {
	case Mapping:
		if !primitives {
			return true
		}
		m, _ := AsMapping(v)
		for _, item := range m {
			if !IsPrimitive(item) {
				return false
			}
		}
		return true
	case Sequence:
		if !primitives {
			return true
		}
		s, _ := AsSequence(v)
		for _, item := range s {
			if !IsPrimitive(item) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// IsPrimitive reports whether v is a scalar or a structure made only of
// primitives.
func IsPrimitive(v any) bool {
	if IsScalar(v) {
		return true
	}
	return IsStruct(v, true)
}

// AsMapping returns v as a map[string]any. Typed maps are copied into a new
// map; a map[string]any is returned as is and must not be mutated.
func AsMapping(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	if Of(v) != Mapping {
		return nil, false
	}

	rv := reflect.ValueOf(v)
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		key := iter.Key()
		if key.Kind() == reflect.Interface {
			key = key.Elem()
		}
		out[key.String()] = iter.Value().Interface()
	}

	return out, true
}

// AsSequence returns v as a []any. Typed slices and arrays are copied; a
// []any is returned as is and must not be mutated.
func AsSequence(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	if Of(v) != Sequence {
		return nil, false
	}

	rv := reflect.ValueOf(v)
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}

	return out, true
}

// Depth returns the maximum container nesting depth of v. Leaves have depth
// zero. The walk is iterative so arbitrarily deep input cannot exhaust the
// goroutine stack.
func Depth(v any) int {
	type frame struct {
		value any
		depth int
	}

	maxDepth := 0
	pending := stack.New(frame{value: v})
	for {
		current, ok := pending.Pop()
		if !ok {
			return maxDepth
		}

		var children []any
		switch Of(current.value) {
		case Mapping:
			m, _ := AsMapping(current.value)
			children = make([]any, 0, len(m))
			for _, child := range m {
				children = append(children, child)
			}
		case Sequence:
			children, _ = AsSequence(current.value)
		default:
			continue
		}

		depth := current.depth + 1
		maxDepth = max(maxDepth, depth)
		for _, child := range children {
			pending.Push(frame{value: child, depth: depth})
		}
	}
}

func hasStringKeys(rv reflect.Value) bool {
	keyType := rv.Type().Key()
	if keyType.Kind() == reflect.String {
		return true
	}
	if keyType.Kind() != reflect.Interface {
		return false
	}

	iter := rv.MapRange()
	for iter.Next() {
		key := iter.Key().Elem()
		if !key.IsValid() || key.Kind() != reflect.String {
			return false
		}
	}

	return true
}
