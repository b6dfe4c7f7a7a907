// Package telemetry holds the normalized pool telemetry consumed by the
// reconciliation core. Provider-specific payloads (Antpool, Foundry, Luxor)
// are normalized into DayRecord rows before they reach this package.
package telemetry

import (
	"time"

	"github.com/shopspring/decimal"

	"mining-ledger/internal/calendar"
)

// DayRecord is one day of pool telemetry for a site.
type DayRecord struct {
	Day         time.Time       `json:"day"`
	Uptime      decimal.Decimal `json:"uptime"`
	HashrateTHs float64         `json:"hashrateTHs"`
	MinedBTC    decimal.Decimal `json:"mined"`
	FarmSlug    string          `json:"farmSlug"`
	SiteSlug    string          `json:"siteSlug"`
}

// DayKey returns the canonical day key for the record.
func (r DayRecord) DayKey() string {
	return calendar.DayKey(r.Day)
}

// History is a set of day records indexed by day key.
type History map[string]DayRecord

// NewHistory indexes records by day, keeping the last row per day.
func NewHistory(records []DayRecord) History {
	h := make(History, len(records))
	for _, r := range records {
		h[r.DayKey()] = r
	}
	return h
}

// Between filters the history to days in the half-open interval [start, end).
func (h History) Between(start, end time.Time) []DayRecord {
	var out []DayRecord
	for _, day := range calendar.Days(start, end) {
		if rec, ok := h[calendar.DayKey(day)]; ok {
			out = append(out, rec)
		}
	}
	return out
}
