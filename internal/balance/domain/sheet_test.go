package balance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	equipment "mining-ledger/internal/equipment/domain"
	"mining-ledger/internal/finance"
	report "mining-ledger/internal/report/domain"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(d int) time.Time {
	return time.Date(2023, 5, d, 0, 0, 0, 0, time.UTC)
}

func dayPtr(d int) *time.Time {
	t := day(d)
	return &t
}

func dailyReport(d int, uptime string, hashrate float64, revenue string, containers ...string) report.DailyReport {
	r := report.EmptyReport(day(d))
	r.Uptime = dec(uptime)
	r.HashrateTHs = hashrate
	r.HashrateTHsMax = 1000
	r.ContainerIDs = containers
	r.Income.Pool = finance.NewAmount(dec(revenue), finance.SourcePool)
	r.Revenue = finance.NewAmount(dec(revenue), finance.SourceStatement)
	return r
}

func TestBuildSheetSumsAndAverages(t *testing.T) {
	reports := []report.DailyReport{
		dailyReport(1, "1", 1000, "0.3", "ctr-1"),
		dailyReport(2, "0.5", 500, "0.2", "ctr-1"),
		dailyReport(3, "0.75", 750, "0.1", "ctr-1", "ctr-2"),
	}

	sheet, err := BuildSheet(reports, day(1), day(3))
	require.NoError(t, err)

	assert.Equal(t, 3, sheet.Days)
	assert.True(t, sheet.Balance.Revenue.BTC.Equal(dec("0.6")), "got %s", sheet.Balance.Revenue.BTC)
	assert.True(t, sheet.Balance.Income.Pool.BTC.Equal(dec("0.6")))
	assert.True(t, sheet.Balance.Uptime.Equal(dec("0.75")), "got %s", sheet.Balance.Uptime)
	assert.InDelta(t, 750.0, sheet.Balance.HashrateTHs, 1e-9)
	assert.Equal(t, []string{"ctr-1", "ctr-2"}, sheet.ContainerIDs)
}

func TestBuildSheetDerivesPeriodFromReports(t *testing.T) {
	reports := []report.DailyReport{
		dailyReport(4, "1", 1000, "0.1"),
		dailyReport(2, "1", 1000, "0.1"),
	}

	sheet, err := BuildSheet(reports, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.True(t, sheet.Start.Equal(day(2)))
	assert.True(t, sheet.End.Equal(day(4)))
	assert.Equal(t, 3, sheet.Days)
}

func TestBuildSheetNoDataIsFatal(t *testing.T) {
	_, err := BuildSheet(nil, time.Time{}, time.Time{})
	assert.ErrorIs(t, err, ErrNoData)

	// Explicit bounds make an empty period legitimate.
	sheet, err := BuildSheet(nil, day(1), day(5))
	require.NoError(t, err)
	assert.Equal(t, 5, sheet.Days)
	assert.True(t, sheet.Balance.Revenue.BTC.IsZero())
}

func TestBuildSheetMixedSourcesSumAcrossDays(t *testing.T) {
	stmtDay := dailyReport(1, "1", 1000, "0.3")
	simDay := dailyReport(2, "1", 1000, "0")
	simDay.Revenue = finance.NewAmount(dec("0.2"), finance.SourceSimulator)

	sheet, err := BuildSheet([]report.DailyReport{stmtDay, simDay}, day(1), day(2))
	require.NoError(t, err)

	// Period totals accumulate across days whatever each day's source was.
	assert.True(t, sheet.Balance.Revenue.BTC.Equal(dec("0.5")), "got %s", sheet.Balance.Revenue.BTC)
	assert.Equal(t, finance.SourceStatement, sheet.Balance.Revenue.Source)
}

func TestBuildDetailedSheetSegments(t *testing.T) {
	site := equipment.Site{
		Slug: "alpha-1",
		Containers: []equipment.Unit{
			{ID: "ctr-1", Start: day(1), Units: 10, HashrateTHsPerUnit: 100, PowerWPerUnit: 3500},
			{ID: "ctr-2", Start: day(3), End: dayPtr(5), Units: 5, HashrateTHsPerUnit: 100, PowerWPerUnit: 3500},
		},
	}
	var reports []report.DailyReport
	for d := 1; d <= 6; d++ {
		reports = append(reports, dailyReport(d, "1", 1000, "0.1", "ctr-1"))
	}

	detailed, err := BuildDetailedSheet(site, reports, day(1), day(6))
	require.NoError(t, err)

	// Segments: [1,3) ctr-1, [3,5) ctr-1+ctr-2, [5,7) ctr-1.
	require.Len(t, detailed.Details, 3)
	assert.Equal(t, []string{"ctr-1"}, detailed.Details[0].ContainerIDs)
	assert.Equal(t, []string{"ctr-1", "ctr-2"}, detailed.Details[1].ContainerIDs)
	assert.Equal(t, 2, detailed.Details[0].Days)
	assert.Equal(t, 2, detailed.Details[1].Days)
	assert.Equal(t, 2, detailed.Details[2].Days)

	// Segment revenues partition the period revenue.
	total := decimal.Zero
	for _, d := range detailed.Details {
		total = total.Add(d.Balance.Revenue.BTC)
	}
	assert.True(t, total.Equal(detailed.Balance.Revenue.BTC))

	require.Len(t, detailed.Equipment, 2, "snapshot lists equipment active in the window")
}

func TestMergeSheets(t *testing.T) {
	a, err := BuildSheet([]report.DailyReport{dailyReport(1, "0.8", 800, "0.3", "ctr-1")}, day(1), day(1))
	require.NoError(t, err)
	b, err := BuildSheet([]report.DailyReport{dailyReport(1, "0.6", 600, "0.1", "ctr-2")}, day(1), day(1))
	require.NoError(t, err)

	merged, err := MergeSheets(a, b)
	require.NoError(t, err)

	assert.True(t, merged.Balance.Revenue.BTC.Equal(dec("0.4")))
	assert.Equal(t, []string{"ctr-1", "ctr-2"}, merged.ContainerIDs)
	// 1400 THs over 2000 THs max.
	assert.True(t, merged.Balance.Uptime.Equal(dec("0.7")), "got %s", merged.Balance.Uptime)
}

func TestMergeSheetsPreconditions(t *testing.T) {
	a, err := BuildSheet([]report.DailyReport{dailyReport(1, "1", 1000, "0.3", "ctr-1")}, day(1), day(1))
	require.NoError(t, err)

	short, err := BuildSheet([]report.DailyReport{dailyReport(1, "1", 1000, "0.3", "ctr-2")}, day(1), day(2))
	require.NoError(t, err)
	_, err = MergeSheets(a, short)
	assert.ErrorIs(t, err, ErrPeriodMismatch)

	shared, err := BuildSheet([]report.DailyReport{dailyReport(1, "1", 1000, "0.3", "ctr-1")}, day(1), day(1))
	require.NoError(t, err)
	_, err = MergeSheets(a, shared)
	assert.ErrorIs(t, err, ErrOverlappingContainers)
}
