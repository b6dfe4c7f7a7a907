package statement

import "errors"

var (
	// ErrInvalidPeriod is returned when a record period is zero or inverted.
	ErrInvalidPeriod = errors.New("statement: invalid period")
	// ErrInvalidFlow is returned when the flow direction is unknown.
	ErrInvalidFlow = errors.New("statement: invalid flow")
)
