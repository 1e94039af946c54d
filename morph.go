// Package morph converts between nested documents and flat path-keyed
// mappings, and selects subsets of documents by key.
//
// Path keys combine ".name" and "[index]" segments:
//
//	{"a": {"b": 1, "c": [true]}}  <->  {"a.b": 1, "a.c[0]": true}
package morph

import (
	"github.com/jacoelho/morph/internal/coerce"
	"github.com/jacoelho/morph/internal/flat"
	"github.com/jacoelho/morph/internal/pathkey"
	"github.com/jacoelho/morph/internal/selector"
	"github.com/jacoelho/morph/internal/xform"
)

type (
	// Container is the result of Pick and Omit.
	Container = selector.Container
	// Factory builds the container Pick and Omit fill.
	Factory = selector.Factory
	// Record is a source exposing named fields.
	Record = selector.Record
	// Options configure Pick and Omit.
	Options = selector.Options
	// Mode selects how Pick and Omit match keys.
	Mode = selector.Mode

	// TransformFunc is called by Transform for every leaf and key.
	TransformFunc = xform.Func
	// TransformContext describes where a transformed value sits.
	TransformContext = xform.Context

	// ListOptions tune ToList.
	ListOptions = coerce.ListOptions
)

const (
	ModePlain  = selector.ModePlain
	ModePrefix = selector.ModePrefix
	ModeTree   = selector.ModeTree
)

const (
	PositionRoot    = xform.PositionRoot
	PositionElement = xform.PositionElement
	PositionKey     = xform.PositionKey
	PositionValue   = xform.PositionValue
)

var (
	ErrUnflattenableType             = flat.ErrUnflattenableType
	ErrNotAMapping                   = flat.ErrNotAMapping
	ErrConflictingScalarAndStructure = flat.ErrConflictingScalarAndStructure
	ErrConflictingListAndMapping     = flat.ErrConflictingListAndMapping
	ErrDuplicatePath                 = flat.ErrDuplicatePath
	ErrMalformedIndex                = pathkey.ErrMalformedIndex
	ErrMalformedKey                  = pathkey.ErrMalformedKey
	ErrInvalidOptionCombination      = selector.ErrInvalidOptionCombination
	ErrUnsupportedSource             = selector.ErrUnsupportedSource
	ErrKeyNotString                  = xform.ErrKeyNotString
	ErrKeyCollision                  = xform.ErrKeyCollision
	ErrInvalidBool                   = coerce.ErrInvalidBool
)

// Flatten collapses v into path keys. A mapping gives a map[string]any, a
// sequence gives a []any with nested sequences spliced in.
func Flatten(v any) (any, error) {
	return flat.Flatten(v)
}

// FlattenMapping is Flatten restricted to mapping-shaped input.
func FlattenMapping(v any) (map[string]any, error) {
	return flat.FlattenMapping(v)
}

// Unflatten rebuilds the nested mapping encoded by a flat mapping.
func Unflatten(v any) (map[string]any, error) {
	return flat.UnflattenValue(v)
}

// Pick keeps the given keys of source.
func Pick(source any, keys []string, opts Options) (Container, error) {
	return selector.Pick(source, keys, opts)
}

// Omit drops the given keys of source.
func Omit(source any, keys []string, opts Options) (Container, error) {
	return selector.Omit(source, keys, opts)
}

// ToMap converts a Pick or Omit result into plain maps.
func ToMap(c Container) map[string]any {
	return selector.ToMap(c)
}

// NewMap and NewOrdered are the built-in container factories.
var (
	NewMap     Factory = selector.NewMap
	NewOrdered Factory = selector.NewOrdered
)

// Transform rebuilds v, passing every leaf and mapping key through fn.
func Transform(v any, fn TransformFunc) (any, error) {
	return xform.Transform(v, fn)
}

// Stringify is a TransformFunc rendering leaves as strings.
func Stringify(value any, ctx TransformContext) (any, error) {
	return xform.Stringify(value, ctx)
}

// ToBool interprets v as a boolean, returning fallback for unknown strings.
func ToBool(v any, fallback bool) bool {
	return coerce.ToBool(v, fallback)
}

// ToList interprets v as a list.
func ToList(v any, opts ListOptions) ([]any, error) {
	return coerce.ToList(v, opts)
}
