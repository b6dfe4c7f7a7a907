package balance

import "errors"

var (
	// ErrNoData is returned when a sheet is requested over an empty report
	// set without explicit date bounds. A zero sheet for an undefined
	// period would be misleading, so this is fatal.
	ErrNoData = errors.New("balance: no reports and no explicit period")
	// ErrPeriodMismatch is returned when merging sheets over different
	// periods.
	ErrPeriodMismatch = errors.New("balance: period mismatch")
	// ErrOverlappingContainers guards merges against double-counted
	// equipment.
	ErrOverlappingContainers = errors.New("balance: overlapping container ids")
)
