// Package number normalises the numeric scalars produced by the JSON, YAML and
// TOML decoders.
package number

import (
	"encoding/json"
)

// ToFloat64 converts supported numeric values to float64.
func ToFloat64(value any) (float64, bool) {
	switch current := value.(type) {
	case int:
		return float64(current), true
	case int8:
		return float64(current), true
	case int16:
		return float64(current), true
	case int32:
		return float64(current), true
	case int64:
		return float64(current), true
	case uint:
		return float64(current), true
	case uint8:
		return float64(current), true
	case uint16:
		return float64(current), true
	case uint32:
		return float64(current), true
	case uint64:
		return float64(current), true
	case float32:
		return float64(current), true
	case float64:
		return current, true
	case json.Number:
		parsed, err := current.Float64()
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// IsZero reports whether value is a number equal to zero. The second result
// is false when value is not numeric.
func IsZero(value any) (zero bool, ok bool) {
	switch current := value.(type) {
	case complex64:
		return current == 0, true
	case complex128:
		return current == 0, true
	case json.Number:
		parsed, err := current.Float64()
		if err != nil {
			return current.String() == "0", true
		}
		return parsed == 0, true
	}

	parsed, ok := ToFloat64(value)
	if !ok {
		return false, false
	}
	return parsed == 0, true
}
