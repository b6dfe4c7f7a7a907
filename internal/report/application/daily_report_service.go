// Package application assembles the canonical daily mining reports for a
// site by reconciling prorated statements, pool telemetry and simulated
// costs under the source precedence rules.
package application

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"mining-ledger/internal/calendar"
	equipment "mining-ledger/internal/equipment/domain"
	"mining-ledger/internal/finance"
	report "mining-ledger/internal/report/domain"
	"mining-ledger/internal/simulation"
	stmtapp "mining-ledger/internal/statement/application"
	statement "mining-ledger/internal/statement/domain"
	telemetry "mining-ledger/internal/telemetry/domain"
)

// SiteInput carries everything needed to reconcile one site over a window.
// The window is inclusive on both ends at day granularity.
type SiteInput struct {
	Site       equipment.Site
	Statements []statement.Record
	History    []telemetry.DayRecord
	Start      time.Time
	End        time.Time
	BTCPrice   decimal.Decimal
}

// DailyReportService builds per-day reconciled reports.
type DailyReportService struct {
	prorator *stmtapp.Prorator
	logger   logrus.FieldLogger
}

// NewDailyReportService constructs the service. A nil logger falls back to
// the standard logrus logger.
func NewDailyReportService(logger logrus.FieldLogger) *DailyReportService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &DailyReportService{
		prorator: stmtapp.NewProrator(logger),
		logger:   logger,
	}
}

// resolvedDay accumulates precedence-resolved statement amounts for a day.
type resolvedDay struct {
	expenses report.Expenses
	income   report.Income
	uptime   decimal.Decimal
	tagged   bool
}

func newResolvedDay() *resolvedDay {
	return &resolvedDay{
		expenses: report.Expenses{
			Electricity: finance.ZeroAmount(),
			CSM:         finance.ZeroAmount(),
			Operator:    finance.ZeroAmount(),
			Other:       finance.ZeroAmount(),
		},
		income: report.Income{
			Pool:  finance.ZeroAmount(),
			Other: finance.ZeroAmount(),
		},
	}
}

// absorb merges one prorated share into the day's counterparty buckets.
// The bucket side follows the flow direction; within a side the
// counterparty picks the field, unknown partners land in OTHER.
func (d *resolvedDay) absorb(share stmtapp.DayAmount) {
	if share.Flow == finance.FlowOut {
		switch share.Counterparty {
		case statement.CounterpartyElectricity:
			d.expenses.Electricity = finance.MergeAmount(d.expenses.Electricity, share.Amount)
		case statement.CounterpartyCSM:
			d.expenses.CSM = finance.MergeAmount(d.expenses.CSM, share.Amount)
		case statement.CounterpartyOperator:
			d.expenses.Operator = finance.MergeAmount(d.expenses.Operator, share.Amount)
		default:
			d.expenses.Other = finance.MergeAmount(d.expenses.Other, share.Amount)
		}
	} else {
		switch share.Counterparty {
		case statement.CounterpartyPool:
			d.income.Pool = finance.MergeAmount(d.income.Pool, share.Amount)
		default:
			d.income.Other = finance.MergeAmount(d.income.Other, share.Amount)
		}
	}

	if share.Amount.Source == finance.SourceStatement {
		d.tagged = true
		if d.uptime.IsZero() {
			d.uptime = share.Uptime
		}
	}
}

// BuildSiteReports reconciles the site's window into one report per day,
// sorted by day and filtered to [Start, End] inclusive. Per day:
// statement-backed amounts win, telemetry-only days are simulated, days
// with neither yield an all-zero report.
func (s *DailyReportService) BuildSiteReports(in SiteInput) ([]report.DailyReport, error) {
	startDay := calendar.StartOfUTCDay(in.Start)
	endDay := calendar.StartOfUTCDay(in.End)
	if startDay.After(endDay) {
		return nil, nil
	}
	windowEnd := endDay.AddDate(0, 0, 1)

	history := telemetry.NewHistory(in.History)

	resolved := make(map[string]*resolvedDay)
	for _, rec := range in.Statements {
		shares, err := s.prorator.Prorate(rec, history)
		if err != nil {
			return nil, err
		}
		for key, share := range shares {
			day, ok := resolved[key]
			if !ok {
				day = newResolvedDay()
				resolved[key] = day
			}
			day.absorb(share)
		}
	}

	segments := equipment.CapacityHistory(in.Site.Containers, startDay, windowEnd)

	reports := make([]report.DailyReport, 0, calendar.DaysBetween(startDay, endDay))
	for _, day := range calendar.Days(startDay, windowEnd) {
		segment, _ := equipment.SegmentAt(segments, day)
		tel, hasTelemetry := history[calendar.DayKey(day)]
		res, hasResolved := resolved[calendar.DayKey(day)]

		var daily report.DailyReport
		switch {
		case hasResolved && res.tagged:
			daily = s.statementReport(day, res, tel, hasTelemetry)
		case hasTelemetry:
			simulated, err := s.simulatedReport(in.Site, segment, tel, in.BTCPrice)
			if err != nil {
				return nil, err
			}
			daily = simulated
		default:
			daily = report.EmptyReport(day)
		}

		daily.HashrateTHsMax = segment.HashrateTHs
		daily.ContainerIDs = segment.ContainerIDs()
		reports = append(reports, daily)
	}

	return reports, nil
}

// statementReport builds the day from precedence-resolved statement
// amounts. Pool telemetry still fills the income gap for buckets no
// statement covered; the resolver guarantees a statement figure is never
// displaced by it.
func (s *DailyReportService) statementReport(day time.Time, res *resolvedDay, tel telemetry.DayRecord, hasTelemetry bool) report.DailyReport {
	daily := report.EmptyReport(day)
	daily.Expenses = res.expenses
	daily.Income = res.income
	daily.Uptime = res.uptime

	if hasTelemetry {
		mined := finance.NewAmount(tel.MinedBTC, finance.SourcePool)
		daily.Income.Pool = finance.MergeAmount(daily.Income.Pool, mined)
		daily.Uptime = tel.Uptime
		daily.HashrateTHs = tel.HashrateTHs
	}

	net := daily.Income.TotalBTC().Sub(daily.Expenses.TotalBTC())
	daily.Revenue = finance.NewAmount(net, finance.SourceStatement)
	incomeUSD := daily.Income.TotalUSD()
	expenseUSD := daily.Expenses.TotalUSD()
	if incomeUSD.Valid || expenseUSD.Valid {
		daily.Revenue = daily.Revenue.WithUSD(incomeUSD.Decimal.Sub(expenseUSD.Decimal))
	}
	return daily
}

// simulatedReport derives the day's costs from the contract and the active
// capacity, tagging everything SIMULATOR except raw pool income.
func (s *DailyReportService) simulatedReport(site equipment.Site, segment equipment.CapacitySegment, tel telemetry.DayRecord, btcPrice decimal.Decimal) (report.DailyReport, error) {
	result, err := simulation.SimulateDay(site, segment, tel, btcPrice)
	if err != nil {
		return report.DailyReport{}, err
	}

	daily := report.EmptyReport(tel.Day)
	daily.Uptime = tel.Uptime
	daily.HashrateTHs = tel.HashrateTHs

	daily.Expenses.Electricity = finance.NewAmount(result.Cost.Provider.ElectricityBTC, finance.SourceSimulator).
		WithUSD(result.Cost.Provider.ElectricityUSD)
	daily.Expenses.CSM = finance.NewAmount(result.Cost.CSM.TotalBTC, finance.SourceSimulator).
		WithUSD(result.Cost.CSM.TotalBTC.Mul(btcPrice))
	daily.Expenses.Operator = finance.NewAmount(result.Cost.Operator.TotalBTC, finance.SourceSimulator).
		WithUSD(result.Cost.Operator.TotalBTC.Mul(btcPrice))

	daily.Income.Pool = finance.NewAmount(tel.MinedBTC, finance.SourcePool).
		WithUSD(tel.MinedBTC.Mul(btcPrice))

	daily.Revenue = finance.NewAmount(result.Revenue.NetBTC, finance.SourceSimulator).
		WithUSD(result.Revenue.NetUSD)
	return daily, nil
}
