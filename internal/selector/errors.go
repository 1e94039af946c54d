package selector

import "errors"

var (
	// ErrInvalidOptionCombination indicates a prefix combined with a mode other
	// than ModePrefix.
	ErrInvalidOptionCombination = errors.New("invalid option combination")

	// ErrUnsupportedSource indicates a source that is neither mapping-shaped
	// nor a record.
	ErrUnsupportedSource = errors.New("unsupported source")
)
