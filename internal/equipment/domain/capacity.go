package equipment

import (
	"time"

	"mining-ledger/internal/calendar"
)

// CapacitySegment is a maximal interval of [Start, End) over which the set
// of active containers, and hence the site capacity, is constant.
type CapacitySegment struct {
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Days        int       `json:"days"`
	HashrateTHs float64   `json:"hashrateTHs"`
	PowerW      float64   `json:"powerW"`
	ActiveUnits []Unit    `json:"activeUnits"`
}

// ContainerIDs lists the identifiers of the segment's active containers.
func (s CapacitySegment) ContainerIDs() []string {
	ids := make([]string, 0, len(s.ActiveUnits))
	for _, u := range s.ActiveUnits {
		ids = append(ids, u.ID)
	}
	return ids
}

// Contains reports whether t falls inside the half-open segment interval.
func (s CapacitySegment) Contains(t time.Time) bool {
	return !t.Before(s.Start) && t.Before(s.End)
}

// CapacityHistory segments [rangeStart, rangeEnd) into constant-capacity
// intervals. A cursor walks forward from rangeStart; at each step the active
// container set is computed and the cursor jumps to the nearest lifecycle
// boundary. The segments tile the window exactly: contiguous, non
// overlapping, no zero-length entries. A window with no equipment active at
// any point yields a single zero-capacity segment.
func CapacityHistory(units []Unit, rangeStart, rangeEnd time.Time) []CapacitySegment {
	if !rangeEnd.After(rangeStart) {
		return nil
	}

	var segments []CapacitySegment
	cursor := rangeStart
	for cursor.Before(rangeEnd) {
		var active []Unit
		var hashrate, power float64
		for _, u := range units {
			if u.ActiveAt(cursor) {
				active = append(active, u)
				hashrate += u.HashrateTHs()
				power += u.PowerW()
			}
		}

		next := rangeEnd
		for _, u := range units {
			if u.Start.After(cursor) && u.Start.Before(next) {
				next = u.Start
			}
			if u.End != nil && u.End.After(cursor) && u.End.Before(next) {
				next = *u.End
			}
		}

		if next.After(cursor) {
			segments = append(segments, CapacitySegment{
				Start:       cursor,
				End:         next,
				Days:        calendar.DaysBetween(cursor, next.Add(-time.Nanosecond)),
				HashrateTHs: hashrate,
				PowerW:      power,
				ActiveUnits: active,
			})
		}
		cursor = next
	}

	return segments
}

// SegmentAt finds the segment containing t, if any.
func SegmentAt(segments []CapacitySegment, t time.Time) (CapacitySegment, bool) {
	for _, s := range segments {
		if s.Contains(t) {
			return s, true
		}
	}
	return CapacitySegment{}, false
}
