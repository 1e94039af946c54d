package pathkey

import "errors"

var (
	// ErrMalformedIndex indicates a bracket segment without a closing "]" or
	// with an interior that is not a non-negative decimal integer.
	ErrMalformedIndex = errors.New("invalid list syntax")

	// ErrMalformedKey indicates text following a closing "]" that does not
	// start a new segment.
	ErrMalformedKey = errors.New("invalid path syntax")
)
