package report

import "errors"

var (
	// ErrDayMismatch is returned when merging reports for different days.
	ErrDayMismatch = errors.New("report: day mismatch")
	// ErrOverlappingContainers guards farm merges against double counting a
	// container reported by two sites.
	ErrOverlappingContainers = errors.New("report: overlapping container ids")
)
