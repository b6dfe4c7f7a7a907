package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mining-ledger/internal/finance"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func siteReport(containers []string, hashrate, hashrateMax float64) DailyReport {
	r := EmptyReport(time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC))
	r.ContainerIDs = containers
	r.HashrateTHs = hashrate
	r.HashrateTHsMax = hashrateMax
	r.Income.Pool = finance.NewAmount(dec("0.5"), finance.SourcePool)
	r.Expenses.Electricity = finance.NewAmount(dec("0.1"), finance.SourceStatement)
	r.Revenue = finance.NewAmount(dec("0.4"), finance.SourceStatement)
	return r
}

func TestMergeDayReportsSums(t *testing.T) {
	a := siteReport([]string{"ctr-1"}, 800, 1000)
	b := siteReport([]string{"ctr-2", "ctr-3"}, 600, 1000)

	merged, err := MergeDayReports(a, b)
	require.NoError(t, err)

	assert.True(t, merged.Income.Pool.BTC.Equal(dec("1")))
	assert.True(t, merged.Expenses.Electricity.BTC.Equal(dec("0.2")))
	assert.True(t, merged.Revenue.BTC.Equal(dec("0.8")))
	assert.Equal(t, []string{"ctr-1", "ctr-2", "ctr-3"}, merged.ContainerIDs)
	assert.InDelta(t, 1400.0, merged.HashrateTHs, 1e-9)

	// Farm uptime is hashrate-derived, not an average of site uptimes.
	assert.True(t, merged.Uptime.Equal(dec("0.7")), "got %s", merged.Uptime)
}

func TestMergeDayReportsRejectsSharedContainers(t *testing.T) {
	a := siteReport([]string{"ctr-1", "ctr-2"}, 800, 1000)
	b := siteReport([]string{"ctr-2"}, 600, 1000)

	_, err := MergeDayReports(a, b)
	assert.ErrorIs(t, err, ErrOverlappingContainers)
}

func TestMergeDayReportsRejectsDifferentDays(t *testing.T) {
	a := siteReport([]string{"ctr-1"}, 800, 1000)
	b := siteReport([]string{"ctr-2"}, 600, 1000)
	b.Day = b.Day.AddDate(0, 0, 1)

	_, err := MergeDayReports(a, b)
	assert.ErrorIs(t, err, ErrDayMismatch)
}

func TestMergeDayReportsZeroCapacity(t *testing.T) {
	a := EmptyReport(time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC))
	b := EmptyReport(time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC))

	merged, err := MergeDayReports(a, b)
	require.NoError(t, err)
	assert.True(t, merged.Uptime.IsZero())
}

func TestMergeDayReportsKeepsSourcePrecedence(t *testing.T) {
	a := siteReport([]string{"ctr-1"}, 800, 1000)
	b := siteReport([]string{"ctr-2"}, 600, 1000)
	// Site b only has a simulated electricity figure; the statement-backed
	// figure from site a must win unchanged.
	b.Expenses.Electricity = finance.NewAmount(dec("55"), finance.SourceSimulator)

	merged, err := MergeDayReports(a, b)
	require.NoError(t, err)
	assert.Equal(t, finance.SourceStatement, merged.Expenses.Electricity.Source)
	assert.True(t, merged.Expenses.Electricity.BTC.Equal(dec("0.1")))
}
