package report

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"mining-ledger/internal/finance"
)

// MergeDayReports combines two sites' reports for the same day into one
// farm-level report. The inputs must not share container ids; a shared id
// means the same equipment would be counted twice and is fatal. Farm uptime
// is recomputed as total hashrate over total maximum hashrate, not averaged.
func MergeDayReports(a, b DailyReport) (DailyReport, error) {
	if !a.Day.Equal(b.Day) {
		return DailyReport{}, fmt.Errorf("%w: %s vs %s", ErrDayMismatch,
			a.Day.Format("2006-01-02"), b.Day.Format("2006-01-02"))
	}
	if id, overlap := overlappingID(a.ContainerIDs, b.ContainerIDs); overlap {
		return DailyReport{}, fmt.Errorf("%w: %s", ErrOverlappingContainers, id)
	}

	merged := DailyReport{
		Day:            a.Day,
		HashrateTHs:    a.HashrateTHs + b.HashrateTHs,
		HashrateTHsMax: a.HashrateTHsMax + b.HashrateTHsMax,
		ContainerIDs:   unionIDs(a.ContainerIDs, b.ContainerIDs),
		Expenses: Expenses{
			Electricity: finance.MergeAmount(a.Expenses.Electricity, b.Expenses.Electricity),
			CSM:         finance.MergeAmount(a.Expenses.CSM, b.Expenses.CSM),
			Operator:    finance.MergeAmount(a.Expenses.Operator, b.Expenses.Operator),
			Other:       finance.MergeAmount(a.Expenses.Other, b.Expenses.Other),
		},
		Income: Income{
			Pool:  finance.MergeAmount(a.Income.Pool, b.Income.Pool),
			Other: finance.MergeAmount(a.Income.Other, b.Income.Other),
		},
		Revenue: finance.MergeAmount(a.Revenue, b.Revenue),
	}

	if merged.HashrateTHsMax > 0 {
		merged.Uptime = decimal.NewFromFloat(merged.HashrateTHs / merged.HashrateTHsMax)
	} else {
		merged.Uptime = decimal.Zero
	}
	return merged, nil
}

func overlappingID(a, b []string) (string, bool) {
	seen := make(map[string]struct{}, len(a))
	for _, id := range a {
		seen[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := seen[id]; ok {
			return id, true
		}
	}
	return "", false
}

func unionIDs(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	sort.Strings(out)
	return out
}
