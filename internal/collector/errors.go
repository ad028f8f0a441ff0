package collector

import "errors"

// Field names used in error reporting.
const (
	FieldSpeed    = "speed"
	FieldRPM      = "rpm"
	FieldIncline  = "incline"
	FieldThrottle = "throttle"
	FieldMode     = "mode"
)

// Each reading field fails with its own sentinel so callers can tell them apart
// with errors.Is.
var (
	ErrInvalidSpeed    = errors.New("invalid speed")
	ErrInvalidRPM      = errors.New("invalid engine rpm")
	ErrInvalidIncline  = errors.New("invalid incline angle")
	ErrInvalidThrottle = errors.New("invalid throttle")
	ErrInvalidMode     = errors.New("invalid mode")
)

var fieldErrors = []struct {
	field string
	err   error
}{
	{FieldSpeed, ErrInvalidSpeed},
	{FieldRPM, ErrInvalidRPM},
	{FieldIncline, ErrInvalidIncline},
	{FieldThrottle, ErrInvalidThrottle},
	{FieldMode, ErrInvalidMode},
}

// FieldOf returns the reading field err refers to, or "" if err is not a validation error.
func FieldOf(err error) string {
	for _, fe := range fieldErrors {
		if errors.Is(err, fe.err) {
			return fe.field
		}
	}
	return ""
}
