// Package finance holds the monetary value types shared across the ledger:
// tagged amounts, data-source provenance and the precedence rules used when
// the same day is described by more than one source.
package finance

// Source identifies where a monetary figure came from. Figures from
// different sources are never summed directly; combining them goes through
// MergeAmount so that precedence stays explicit.
type Source string

const (
	SourceNone      Source = "NONE"
	SourceStatement Source = "STATEMENT"
	SourcePool      Source = "POOL"
	SourceSimulator Source = "SIMULATOR"
)

// IsValid checks the source against the closed set of known values.
func (s Source) IsValid() bool {
	switch s {
	case SourceNone, SourceStatement, SourcePool, SourceSimulator:
		return true
	default:
		return false
	}
}

// precedence ranks sources; higher wins. NONE always loses.
func (s Source) precedence() int {
	switch s {
	case SourceStatement:
		return 3
	case SourcePool:
		return 2
	case SourceSimulator:
		return 1
	default:
		return 0
	}
}

// ResolveSource returns the higher-precedence of two sources.
func ResolveSource(a, b Source) Source {
	if b.precedence() > a.precedence() {
		return b
	}
	return a
}

// Flow is the direction of a financial statement entry.
type Flow string

const (
	FlowIn  Flow = "IN"
	FlowOut Flow = "OUT"
)

// IsValid checks the flow against the closed set of known values.
func (f Flow) IsValid() bool {
	return f == FlowIn || f == FlowOut
}
