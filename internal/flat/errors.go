package flat

import (
	"errors"

	"github.com/jacoelho/morph/internal/pathkey"
)

var (
	// ErrUnflattenableType indicates a flatten root that is neither a mapping
	// nor a sequence.
	ErrUnflattenableType = errors.New("only sequence- and mapping-shaped values can be flattened")

	// ErrNotAMapping indicates unflatten input that is not mapping-shaped.
	ErrNotAMapping = errors.New("only mapping-shaped values can be unflattened")

	// ErrConflictingScalarAndStructure indicates a prefix used both as a leaf
	// and as the parent of other keys.
	ErrConflictingScalarAndStructure = errors.New("conflicting scalar vs. structure")

	// ErrConflictingListAndMapping indicates a prefix with both ".name" and
	// "[n]" children.
	ErrConflictingListAndMapping = errors.New("conflicting structures (mapping vs. sequence)")

	// ErrDuplicatePath indicates two keys spelling the same path, such as
	// "a[1]" and "a[01]".
	ErrDuplicatePath = errors.New("duplicate path")

	// ErrMalformedIndex is re-exported from pathkey for callers of this package.
	ErrMalformedIndex = pathkey.ErrMalformedIndex

	// ErrMalformedKey is re-exported from pathkey for callers of this package.
	ErrMalformedKey = pathkey.ErrMalformedKey
)
