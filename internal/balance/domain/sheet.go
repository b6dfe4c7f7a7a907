// Package balance aggregates daily mining reports into period balance
// sheets, per capacity segment and farm-wide.
package balance

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"mining-ledger/internal/calendar"
	equipment "mining-ledger/internal/equipment/domain"
	"mining-ledger/internal/finance"
	report "mining-ledger/internal/report/domain"
)

// Aggregate is the folded balance of a period: monetary fields are sums,
// uptime and hashrate are time-weighted averages over the folded days.
type Aggregate struct {
	Uptime         decimal.Decimal `json:"uptime"`
	HashrateTHs    float64         `json:"hashrateTHs"`
	HashrateTHsMax float64         `json:"hashrateTHsMax"`
	Expenses       report.Expenses `json:"expenses"`
	Income         report.Income   `json:"income"`
	Revenue        finance.Amount  `json:"revenue"`
}

// Sheet is one period's balance for a site, a capacity segment or a farm.
// Start and End are inclusive day bounds.
type Sheet struct {
	Start        time.Time        `json:"start"`
	End          time.Time        `json:"end"`
	Days         int              `json:"days"`
	ContainerIDs []string         `json:"containerIds"`
	Equipment    []equipment.Unit `json:"equipmentSnapshot,omitempty"`
	Balance      Aggregate        `json:"balance"`
}

// DetailedSheet adds the per-capacity-segment breakdown to a sheet.
type DetailedSheet struct {
	Sheet
	Details []Sheet `json:"details"`
}

// addAmount sums two period totals leg by leg. Unlike the same-day merge,
// period totals accumulate across days whatever each day's source was; the
// result keeps the highest-precedence source seen.
func addAmount(a, b finance.Amount) finance.Amount {
	sum := finance.NewAmount(a.BTC.Add(b.BTC), finance.ResolveSource(a.Source, b.Source))
	switch {
	case a.USD.Valid && b.USD.Valid:
		sum = sum.WithUSD(a.USD.Decimal.Add(b.USD.Decimal))
	case a.USD.Valid:
		sum = sum.WithUSD(a.USD.Decimal)
	case b.USD.Valid:
		sum = sum.WithUSD(b.USD.Decimal)
	}
	return sum
}

// BuildSheet folds daily reports into one period sheet. When start or end
// is zero the period is derived from the reports; an empty report set with
// no explicit bounds is ErrNoData.
func BuildSheet(reports []report.DailyReport, start, end time.Time) (Sheet, error) {
	if len(reports) == 0 && (start.IsZero() || end.IsZero()) {
		return Sheet{}, ErrNoData
	}

	sorted := make([]report.DailyReport, len(reports))
	copy(sorted, reports)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Day.Before(sorted[j].Day) })

	if start.IsZero() {
		start = sorted[0].Day
	}
	if end.IsZero() {
		end = sorted[len(sorted)-1].Day
	}
	start = calendar.StartOfUTCDay(start)
	end = calendar.StartOfUTCDay(end)

	sheet := Sheet{
		Start: start,
		End:   end,
		Days:  calendar.DaysBetween(start, end),
		Balance: Aggregate{
			Expenses: report.Expenses{
				Electricity: finance.ZeroAmount(),
				CSM:         finance.ZeroAmount(),
				Operator:    finance.ZeroAmount(),
				Other:       finance.ZeroAmount(),
			},
			Income: report.Income{
				Pool:  finance.ZeroAmount(),
				Other: finance.ZeroAmount(),
			},
			Revenue: finance.ZeroAmount(),
		},
	}

	containerIDs := map[string]struct{}{}
	uptimeSum := decimal.Zero
	var hashrateSum, hashrateMaxSum float64
	elapsed := 0
	for _, r := range sorted {
		elapsed++
		uptimeSum = uptimeSum.Add(r.Uptime)
		hashrateSum += r.HashrateTHs
		hashrateMaxSum += r.HashrateTHsMax

		// Incremental fold: the averages stay correct after every day, so
		// partially folded sheets can be merged without a final pass.
		days := decimal.NewFromInt(int64(elapsed))
		sheet.Balance.Uptime = uptimeSum.Div(days)
		sheet.Balance.HashrateTHs = hashrateSum / float64(elapsed)
		sheet.Balance.HashrateTHsMax = hashrateMaxSum / float64(elapsed)

		sheet.Balance.Expenses.Electricity = addAmount(sheet.Balance.Expenses.Electricity, r.Expenses.Electricity)
		sheet.Balance.Expenses.CSM = addAmount(sheet.Balance.Expenses.CSM, r.Expenses.CSM)
		sheet.Balance.Expenses.Operator = addAmount(sheet.Balance.Expenses.Operator, r.Expenses.Operator)
		sheet.Balance.Expenses.Other = addAmount(sheet.Balance.Expenses.Other, r.Expenses.Other)
		sheet.Balance.Income.Pool = addAmount(sheet.Balance.Income.Pool, r.Income.Pool)
		sheet.Balance.Income.Other = addAmount(sheet.Balance.Income.Other, r.Income.Other)
		sheet.Balance.Revenue = addAmount(sheet.Balance.Revenue, r.Revenue)

		for _, id := range r.ContainerIDs {
			containerIDs[id] = struct{}{}
		}
	}

	sheet.ContainerIDs = sortedIDs(containerIDs)
	return sheet, nil
}

// BuildDetailedSheet builds the period sheet plus one sub-sheet per
// capacity segment, each tagged with the segment's active containers.
func BuildDetailedSheet(site equipment.Site, reports []report.DailyReport, start, end time.Time) (DetailedSheet, error) {
	main, err := BuildSheet(reports, start, end)
	if err != nil {
		return DetailedSheet{}, err
	}

	windowEnd := main.End.AddDate(0, 0, 1)
	for _, u := range site.Containers {
		if u.Start.Before(windowEnd) && (u.End == nil || u.End.After(main.Start)) {
			main.Equipment = append(main.Equipment, u)
		}
	}

	detailed := DetailedSheet{Sheet: main}
	for _, segment := range equipment.CapacityHistory(site.Containers, main.Start, windowEnd) {
		var segReports []report.DailyReport
		for _, r := range reports {
			if segment.Contains(r.Day) {
				segReports = append(segReports, r)
			}
		}
		if len(segReports) == 0 {
			continue
		}

		sub, err := BuildSheet(segReports, segment.Start, segment.End.AddDate(0, 0, -1))
		if err != nil {
			return DetailedSheet{}, err
		}
		sub.ContainerIDs = segment.ContainerIDs()
		sort.Strings(sub.ContainerIDs)
		sub.Equipment = segment.ActiveUnits
		detailed.Details = append(detailed.Details, sub)
	}

	return detailed, nil
}

// MergeSheets combines per-site sheets into a farm sheet. The periods must
// be identical and the container sets disjoint; farm uptime is recomputed
// from the hashrate totals like the daily farm merge.
func MergeSheets(a, b Sheet) (Sheet, error) {
	if !a.Start.Equal(b.Start) || !a.End.Equal(b.End) {
		return Sheet{}, ErrPeriodMismatch
	}
	for _, id := range b.ContainerIDs {
		for _, other := range a.ContainerIDs {
			if id == other {
				return Sheet{}, ErrOverlappingContainers
			}
		}
	}

	merged := Sheet{
		Start:     a.Start,
		End:       a.End,
		Days:      a.Days,
		Equipment: append(append([]equipment.Unit{}, a.Equipment...), b.Equipment...),
		Balance: Aggregate{
			HashrateTHs:    a.Balance.HashrateTHs + b.Balance.HashrateTHs,
			HashrateTHsMax: a.Balance.HashrateTHsMax + b.Balance.HashrateTHsMax,
			Expenses: report.Expenses{
				Electricity: addAmount(a.Balance.Expenses.Electricity, b.Balance.Expenses.Electricity),
				CSM:         addAmount(a.Balance.Expenses.CSM, b.Balance.Expenses.CSM),
				Operator:    addAmount(a.Balance.Expenses.Operator, b.Balance.Expenses.Operator),
				Other:       addAmount(a.Balance.Expenses.Other, b.Balance.Expenses.Other),
			},
			Income: report.Income{
				Pool:  addAmount(a.Balance.Income.Pool, b.Balance.Income.Pool),
				Other: addAmount(a.Balance.Income.Other, b.Balance.Income.Other),
			},
			Revenue: addAmount(a.Balance.Revenue, b.Balance.Revenue),
		},
	}

	if merged.Balance.HashrateTHsMax > 0 {
		merged.Balance.Uptime = decimal.NewFromFloat(merged.Balance.HashrateTHs / merged.Balance.HashrateTHsMax)
	} else {
		merged.Balance.Uptime = decimal.Zero
	}

	ids := append(append([]string{}, a.ContainerIDs...), b.ContainerIDs...)
	sort.Strings(ids)
	merged.ContainerIDs = ids
	return merged, nil
}

func sortedIDs(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
