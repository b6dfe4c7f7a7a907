package application

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mining-ledger/internal/calendar"
	"mining-ledger/internal/finance"
	statement "mining-ledger/internal/statement/domain"
	telemetry "mining-ledger/internal/telemetry/domain"
)

var conservationEpsilon = decimal.New(1, -10)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(d int) time.Time {
	return time.Date(2023, 1, d, 0, 0, 0, 0, time.UTC)
}

func electricityRecord(btc string, startDay, endDay int) statement.Record {
	return statement.Record{
		ID:           "stmt-1",
		Start:        day(startDay),
		End:          day(endDay),
		Flow:         finance.FlowOut,
		Counterparty: statement.CounterpartyElectricity,
		BTC:          dec(btc),
		BTCPrice:     dec("30000"),
		FarmSlug:     "alpha",
		SiteSlug:     "alpha-1",
	}
}

func historyWithUptimes(uptimes []string) telemetry.History {
	records := make([]telemetry.DayRecord, 0, len(uptimes))
	for i, u := range uptimes {
		records = append(records, telemetry.DayRecord{
			Day:         day(i + 1),
			Uptime:      dec(u),
			HashrateTHs: 1000,
			MinedBTC:    dec("0.01"),
			SiteSlug:    "alpha-1",
		})
	}
	return telemetry.NewHistory(records)
}

func quietProrator() *Prorator {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return NewProrator(logger)
}

func TestProrateConservesTotal(t *testing.T) {
	// 10-day range, uptimes [1 1 1 1 1 1 .5 .5 .5 .5] => weight 8,
	// day 1 allocation = 1 * 1/8 = 0.125.
	rec := electricityRecord("1", 1, 11)
	history := historyWithUptimes([]string{"1", "1", "1", "1", "1", "1", "0.5", "0.5", "0.5", "0.5"})

	shares, err := quietProrator().Prorate(rec, history)
	require.NoError(t, err)
	require.Len(t, shares, 10)

	first := shares[calendar.DayKey(day(1))]
	assert.True(t, first.Amount.BTC.Equal(dec("0.125")), "got %s", first.Amount.BTC)
	assert.Equal(t, finance.SourceStatement, first.Amount.Source)
	assert.Equal(t, statement.CounterpartyElectricity, first.Counterparty)
	assert.Equal(t, finance.FlowOut, first.Flow)

	total := decimal.Zero
	for _, s := range shares {
		total = total.Add(s.Amount.BTC)
	}
	assert.True(t, total.Sub(rec.BTC).Abs().LessThan(conservationEpsilon),
		"total %s drifted from statement amount %s", total, rec.BTC)
}

func TestProrateUSDFollowsUptimeWeights(t *testing.T) {
	rec := electricityRecord("1", 1, 3)
	rec.USD = decimal.NullDecimal{Decimal: dec("300"), Valid: true}
	history := historyWithUptimes([]string{"1", "0.5"})

	shares, err := quietProrator().Prorate(rec, history)
	require.NoError(t, err)

	first := shares[calendar.DayKey(day(1))]
	require.True(t, first.Amount.USD.Valid)
	assert.True(t, first.Amount.USD.Decimal.Equal(dec("200")), "got %s", first.Amount.USD.Decimal)
}

func TestProrateUniformFallbackWithoutTelemetry(t *testing.T) {
	rec := electricityRecord("1", 1, 5)

	shares, err := quietProrator().Prorate(rec, telemetry.History{})
	require.NoError(t, err)
	require.Len(t, shares, 4)

	for _, s := range shares {
		assert.True(t, s.Amount.BTC.Equal(dec("0.25")), "got %s", s.Amount.BTC)
		assert.Equal(t, finance.SourceStatement, s.Amount.Source)
		assert.True(t, s.Uptime.Equal(DefaultUptime))
	}
}

func TestProratePartialTelemetryEmitsNoneDays(t *testing.T) {
	rec := electricityRecord("1", 1, 4)
	// Telemetry for days 1 and 2 only, day 3 uncovered.
	history := historyWithUptimes([]string{"1", "1"})

	shares, err := quietProrator().Prorate(rec, history)
	require.NoError(t, err)

	uncovered := shares[calendar.DayKey(day(3))]
	assert.Equal(t, finance.SourceNone, uncovered.Amount.Source)
	assert.True(t, uncovered.Amount.BTC.IsZero())

	covered := shares[calendar.DayKey(day(1))]
	assert.True(t, covered.Amount.BTC.Equal(dec("0.5")), "got %s", covered.Amount.BTC)
}

func TestProrateZeroUptimeWeightFallsBackToUniform(t *testing.T) {
	rec := electricityRecord("0.8", 1, 3)
	history := historyWithUptimes([]string{"0", "0"})

	shares, err := quietProrator().Prorate(rec, history)
	require.NoError(t, err)

	for _, s := range shares {
		assert.True(t, s.Amount.BTC.Equal(dec("0.4")), "got %s", s.Amount.BTC)
	}
}

func TestProrateRejectsInvalidRecord(t *testing.T) {
	rec := electricityRecord("1", 5, 5)
	_, err := quietProrator().Prorate(rec, telemetry.History{})
	assert.ErrorIs(t, err, statement.ErrInvalidPeriod)

	rec = electricityRecord("1", 1, 2)
	rec.Flow = "SIDEWAYS"
	_, err = quietProrator().Prorate(rec, telemetry.History{})
	assert.ErrorIs(t, err, statement.ErrInvalidFlow)
}
