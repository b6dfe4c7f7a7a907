// Package application splits multi-day statement records into per-day
// amounts weighted by pool telemetry uptime.
package application

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"mining-ledger/internal/calendar"
	"mining-ledger/internal/finance"
	statement "mining-ledger/internal/statement/domain"
	telemetry "mining-ledger/internal/telemetry/domain"
)

// DefaultUptime is the surrogate uptime assumed when a statement period has
// no telemetry at all. Heuristic, not physically derived.
var DefaultUptime = decimal.NewFromFloat(0.9)

// DayAmount is the per-day share of a prorated statement record.
type DayAmount struct {
	Day          time.Time              `json:"day"`
	Amount       finance.Amount         `json:"amount"`
	Uptime       decimal.Decimal        `json:"uptime"`
	Counterparty statement.Counterparty `json:"counterparty"`
	Flow         finance.Flow           `json:"flow"`
}

// Prorator allocates statement amounts across the days they cover.
type Prorator struct {
	logger logrus.FieldLogger
}

// NewProrator constructs a Prorator. A nil logger falls back to the
// standard logrus logger.
func NewProrator(logger logrus.FieldLogger) *Prorator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Prorator{logger: logger}
}

// Prorate splits rec across every day of [rec.Start, rec.End), weighting by
// the uptime of matching telemetry days. The BTC total of the emitted days
// equals rec.BTC up to decimal rounding.
//
// Days without telemetry receive a zero amount tagged NONE, unless the whole
// period has no telemetry, in which case the amount is spread uniformly with
// DefaultUptime. A day-count mismatch between the period and the telemetry
// is logged and never aborts the proration.
func (p *Prorator) Prorate(rec statement.Record, history telemetry.History) (map[string]DayAmount, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	days := calendar.Days(rec.Start, rec.End)

	uptimeWeight := decimal.Zero
	daysInHistory := 0
	for _, day := range days {
		if t, ok := history[calendar.DayKey(day)]; ok {
			uptimeWeight = uptimeWeight.Add(t.Uptime)
			daysInHistory++
		}
	}

	if daysInHistory != len(days) {
		p.logger.WithFields(logrus.Fields{
			"statement":     rec.ID,
			"site":          rec.SiteSlug,
			"period_days":   len(days),
			"history_days":  daysInHistory,
			"uptime_weight": uptimeWeight,
		}).Warn("statement period not fully covered by telemetry, prorating best effort")
	}

	// Telemetry with only zero uptimes carries no usable weight; spread
	// uniformly in that case too.
	uniform := daysInHistory == 0 || uptimeWeight.IsZero()
	totalDays := decimal.NewFromInt(int64(len(days)))

	out := make(map[string]DayAmount, len(days))
	for _, day := range days {
		share := DayAmount{
			Day:          day,
			Counterparty: rec.Counterparty,
			Flow:         rec.Flow,
		}

		t, covered := history[calendar.DayKey(day)]
		switch {
		case uniform:
			share.Uptime = DefaultUptime
			share.Amount = finance.NewAmount(rec.BTC.Div(totalDays), finance.SourceStatement)
			if rec.USD.Valid {
				share.Amount = share.Amount.WithUSD(rec.USD.Decimal.Div(totalDays))
			}
		case covered:
			share.Uptime = t.Uptime
			share.Amount = finance.NewAmount(rec.BTC.Mul(t.Uptime).Div(uptimeWeight), finance.SourceStatement)
			if rec.USD.Valid {
				share.Amount = share.Amount.WithUSD(rec.USD.Decimal.Mul(t.Uptime).Div(uptimeWeight))
			}
		default:
			share.Amount = finance.ZeroAmount()
		}

		out[calendar.DayKey(day)] = share
	}

	return out, nil
}
