package selector

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/jacoelho/morph/internal/shape"
)

// Record exposes named fields. Sources implementing it are read through it
// instead of through reflection.
type Record interface {
	FieldNames() []string
	Field(name string) (any, bool)
}

type field struct {
	name  string
	value any
}

// fieldsOf lists the immediate keys or fields of source. Mappings are listed
// in lexical key order, containers and records in their own order, structs in
// declaration order.
func fieldsOf(source any) ([]field, error) {
	switch src := source.(type) {
	case nil:
		return nil, nil
	case Container:
		out := make([]field, 0, src.Len())
		for _, key := range src.Keys() {
			value, _ := src.Get(key)
			out = append(out, field{name: key, value: value})
		}
		return out, nil
	case Record:
		names := src.FieldNames()
		out := make([]field, 0, len(names))
		for _, name := range names {
			if value, ok := src.Field(name); ok {
				out = append(out, field{name: name, value: value})
			}
		}
		return out, nil
	}

	if m, ok := shape.AsMapping(source); ok {
		keys := make([]string, 0, len(m))
		for key := range m {
			keys = append(keys, key)
		}
		slices.Sort(keys)

		out := make([]field, 0, len(keys))
		for _, key := range keys {
			out = append(out, field{name: key, value: m[key]})
		}
		return out, nil
	}

	rv := reflect.ValueOf(source)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %T is neither mapping-shaped nor a record", ErrUnsupportedSource, source)
	}

	rt := rv.Type()
	out := make([]field, 0, rt.NumField())
	for i := range rt.NumField() {
		sf := rt.Field(i)
		if !sf.IsExported() || sf.Anonymous {
			continue
		}
		out = append(out, field{name: sf.Name, value: rv.Field(i).Interface()})
	}

	return out, nil
}

// isNested reports whether tree mode may descend into value.
func isNested(value any) bool {
	if _, ok := value.(Container); ok {
		return true
	}
	return shape.IsMapping(value)
}
