// Package application orchestrates farm-wide reconciliation: one
// computation per site, fanned out concurrently, merged into farm-level
// reports and a farm balance sheet. A failing site never aborts the farm;
// the result is marked partial and carries the site's error message.
package application

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	balance "mining-ledger/internal/balance/domain"
	equipment "mining-ledger/internal/equipment/domain"
	"mining-ledger/internal/observability/metrics"
	reportapp "mining-ledger/internal/report/application"
	report "mining-ledger/internal/report/domain"
	statement "mining-ledger/internal/statement/domain"
	telemetry "mining-ledger/internal/telemetry/domain"
)

// SiteData is everything a data provider supplies for one site.
type SiteData struct {
	Site       equipment.Site
	Statements []statement.Record
	History    []telemetry.DayRecord
}

// DataProvider is the boundary to the fetching layer. Implementations load
// already-validated rows; the orchestrator never fetches on its own.
type DataProvider interface {
	Farm(ctx context.Context, farmSlug string) (equipment.Farm, error)
	SiteData(ctx context.Context, farmSlug, siteSlug string) (SiteData, error)
}

// SiteResult is one site's reconciled output.
type SiteResult struct {
	SiteSlug string                `json:"siteSlug"`
	Reports  []report.DailyReport  `json:"reports"`
	Sheet    balance.DetailedSheet `json:"sheet"`
}

// FarmResult is the merged farm output. Partial is set when at least one
// site failed; Errors carries the per-site messages.
type FarmResult struct {
	FarmSlug string               `json:"farmSlug"`
	Start    time.Time            `json:"start"`
	End      time.Time            `json:"end"`
	Sites    []SiteResult         `json:"sites"`
	Reports  []report.DailyReport `json:"reports"`
	Sheet    balance.Sheet        `json:"sheet"`
	Partial  bool                 `json:"partial"`
	Errors   map[string]string    `json:"errors,omitempty"`
}

// Orchestrator runs the reconciliation pipeline per farm.
type Orchestrator struct {
	provider DataProvider
	reports  *reportapp.DailyReportService
	logger   logrus.FieldLogger
}

// NewOrchestrator constructs an Orchestrator.
func NewOrchestrator(provider DataProvider, logger logrus.FieldLogger) (*Orchestrator, error) {
	if provider == nil {
		return nil, errors.New("farm: nil data provider")
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Orchestrator{
		provider: provider,
		reports:  reportapp.NewDailyReportService(logger),
		logger:   logger,
	}, nil
}

// ComputeFarm reconciles every site of the farm over [start, end] and
// merges the per-site outputs. Site computations run concurrently; they
// share no state beyond the provider.
func (o *Orchestrator) ComputeFarm(ctx context.Context, farmSlug string, start, end time.Time, btcPrice decimal.Decimal) (FarmResult, error) {
	began := time.Now()

	farm, err := o.provider.Farm(ctx, farmSlug)
	if err != nil {
		metrics.ObserveReconcile(metrics.ResultError, time.Since(began).Seconds())
		return FarmResult{}, err
	}

	result := FarmResult{
		FarmSlug: farmSlug,
		Start:    start,
		End:      end,
		Errors:   map[string]string{},
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, site := range farm.Sites {
		wg.Add(1)
		go func(site equipment.Site) {
			defer wg.Done()

			siteResult, err := o.computeSite(ctx, farmSlug, site, start, end, btcPrice)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				o.logger.WithFields(logrus.Fields{
					"farm": farmSlug,
					"site": site.Slug,
				}).WithError(err).Error("site reconciliation failed")
				metrics.IncSiteFailure(farmSlug)
				result.Partial = true
				result.Errors[site.Slug] = err.Error()
				return
			}
			result.Sites = append(result.Sites, siteResult)
		}(site)
	}
	wg.Wait()

	sort.Slice(result.Sites, func(i, j int) bool {
		return result.Sites[i].SiteSlug < result.Sites[j].SiteSlug
	})

	if err := o.mergeFarm(&result); err != nil {
		metrics.ObserveReconcile(metrics.ResultError, time.Since(began).Seconds())
		return FarmResult{}, err
	}

	if result.Partial {
		metrics.IncPartialFarm()
	}
	metrics.ObserveReconcile(metrics.ResultSuccess, time.Since(began).Seconds())
	return result, nil
}

func (o *Orchestrator) computeSite(ctx context.Context, farmSlug string, site equipment.Site, start, end time.Time, btcPrice decimal.Decimal) (SiteResult, error) {
	data, err := o.provider.SiteData(ctx, farmSlug, site.Slug)
	if err != nil {
		return SiteResult{}, err
	}

	reports, err := o.reports.BuildSiteReports(reportapp.SiteInput{
		Site:       data.Site,
		Statements: data.Statements,
		History:    data.History,
		Start:      start,
		End:        end,
		BTCPrice:   btcPrice,
	})
	if err != nil {
		return SiteResult{}, err
	}

	sheet, err := balance.BuildDetailedSheet(data.Site, reports, start, end)
	if err != nil {
		return SiteResult{}, err
	}

	return SiteResult{SiteSlug: site.Slug, Reports: reports, Sheet: sheet}, nil
}

// mergeFarm folds the successful per-site outputs into farm-level daily
// reports and one farm sheet. Merge precondition violations (shared
// container ids, mismatched periods) are fatal for the whole farm: they
// mean the input graph is inconsistent, not that one site failed.
func (o *Orchestrator) mergeFarm(result *FarmResult) error {
	byDay := map[string]report.DailyReport{}
	var dayOrder []string
	merged := false

	for _, site := range result.Sites {
		for _, daily := range site.Reports {
			key := daily.Day.Format(time.RFC3339)
			existing, ok := byDay[key]
			if !ok {
				byDay[key] = daily
				dayOrder = append(dayOrder, key)
				continue
			}
			combined, err := report.MergeDayReports(existing, daily)
			if err != nil {
				return err
			}
			byDay[key] = combined
		}

		if !merged {
			result.Sheet = site.Sheet.Sheet
			merged = true
			continue
		}
		sheet, err := balance.MergeSheets(result.Sheet, site.Sheet.Sheet)
		if err != nil {
			return err
		}
		result.Sheet = sheet
	}

	sort.Strings(dayOrder)
	for _, key := range dayOrder {
		result.Reports = append(result.Reports, byDay[key])
	}
	return nil
}
