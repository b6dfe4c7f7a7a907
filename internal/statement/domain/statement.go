// Package statement models financial statement ledger entries. One record
// covers a half-open date range [Start, End) and is split into per-day
// amounts by the prorator in the application layer.
package statement

import (
	"time"

	"github.com/shopspring/decimal"

	"mining-ledger/internal/calendar"
	"mining-ledger/internal/finance"
)

// Counterparty classifies who the money moved to or from. Unknown partners
// fall into the OTHER bucket on the matching side of the daily report.
type Counterparty string

const (
	CounterpartyElectricity Counterparty = "ELECTRICITY"
	CounterpartyCSM         Counterparty = "CSM"
	CounterpartyOperator    Counterparty = "OPERATOR"
	CounterpartyPool        Counterparty = "POOL"
	CounterpartyOther       Counterparty = "OTHER"
)

// IsValid checks the counterparty against the closed set of known values.
func (c Counterparty) IsValid() bool {
	switch c {
	case CounterpartyElectricity, CounterpartyCSM, CounterpartyOperator, CounterpartyPool, CounterpartyOther:
		return true
	default:
		return false
	}
}

// ParseCounterparty maps a raw partner identifier onto the closed set.
func ParseCounterparty(raw string) Counterparty {
	c := Counterparty(raw)
	if c.IsValid() {
		return c
	}
	return CounterpartyOther
}

// Record is one ledger entry covering [Start, End).
type Record struct {
	ID           string              `json:"id"`
	Start        time.Time           `json:"start"`
	End          time.Time           `json:"end"`
	Flow         finance.Flow        `json:"flow"`
	Counterparty Counterparty        `json:"counterparty"`
	BTC          decimal.Decimal     `json:"btc"`
	USD          decimal.NullDecimal `json:"usd,omitempty"`
	BTCPrice     decimal.Decimal     `json:"btcPrice"`
	FarmSlug     string              `json:"farmSlug"`
	SiteSlug     string              `json:"siteSlug"`
}

// Validate enforces the structural invariants of a record.
func (r Record) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return ErrInvalidPeriod
	}
	if !r.End.After(r.Start) {
		return ErrInvalidPeriod
	}
	if !r.Flow.IsValid() {
		return ErrInvalidFlow
	}
	return nil
}

// Days returns the inclusive day count covered by the record.
func (r Record) Days() int {
	return len(calendar.Days(r.Start, r.End))
}
