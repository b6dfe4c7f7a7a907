package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	balance "mining-ledger/internal/balance/domain"
	balanceexport "mining-ledger/internal/balance/interfaces"
	"mining-ledger/internal/calendar"
	farmapp "mining-ledger/internal/farm/application"
	"mining-ledger/internal/farm/infrastructure/file"
	"mining-ledger/internal/observability/metrics"
)

func main() {
	var (
		scenarioPath = flag.String("scenario", "scenario.yaml", "path to the scenario YAML file")
		farmSlug     = flag.String("farm", "", "farm slug to reconcile")
		startArg     = flag.String("start", "", "first day of the period (YYYY-MM-DD)")
		endArg       = flag.String("end", "", "last day of the period (YYYY-MM-DD)")
		btcPriceArg  = flag.Float64("btc-price", 0, "BTC price in USD used for simulated days")
		xlsxPath     = flag.String("xlsx", "", "write the balance sheet as XLSX to this path")
		pdfPath      = flag.String("pdf", "", "write the balance sheet as PDF to this path")
		metricsAddr  = flag.String("metrics-addr", "", "serve Prometheus metrics on this address (optional)")
		logLevelArg  = flag.String("log-level", "info", "log level (debug, info, warn, error)")
	)
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(*logLevelArg); err == nil {
		logger.SetLevel(level)
	}

	if *farmSlug == "" {
		logger.Fatal("-farm is required")
	}
	start, err := parseDay(*startArg)
	if err != nil {
		logger.WithError(err).Fatal("invalid -start")
	}
	end, err := parseDay(*endArg)
	if err != nil {
		logger.WithError(err).Fatal("invalid -end")
	}
	if end.Before(start) {
		logger.Fatal("-end must not be before -start")
	}
	if *btcPriceArg <= 0 {
		logger.Fatal("-btc-price must be positive")
	}

	metrics.Init()
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			logger.WithField("addr", *metricsAddr).Info("metrics listening")
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				logger.WithError(err).Error("metrics server stopped")
			}
		}()
	}

	provider, err := file.NewProvider(*scenarioPath)
	if err != nil {
		logger.WithError(err).Fatal("load scenario")
	}

	orchestrator, err := farmapp.NewOrchestrator(provider, logger)
	if err != nil {
		logger.WithError(err).Fatal("build orchestrator")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := orchestrator.ComputeFarm(ctx, *farmSlug, start, end, decimal.NewFromFloat(*btcPriceArg))
	if err != nil {
		logger.WithError(err).Fatal("compute farm")
	}
	if result.Partial {
		logger.WithField("errors", result.Errors).Warn("farm result is partial")
	}

	// The farm sheet has no segment breakdown of its own; exports take the
	// detailed form, so wrap it with empty details.
	farmSheet := balance.DetailedSheet{Sheet: result.Sheet}

	if *xlsxPath != "" {
		data, err := balanceexport.BuildBalanceSheetXLSX(farmSheet, "Balance sheet: "+result.FarmSlug)
		if err != nil {
			logger.WithError(err).Fatal("build xlsx")
		}
		if err := os.WriteFile(*xlsxPath, data, 0o644); err != nil {
			logger.WithError(err).Fatal("write xlsx")
		}
		logger.WithField("path", *xlsxPath).Info("xlsx written")
	}
	if *pdfPath != "" {
		data, err := balanceexport.BuildBalanceSheetPDF(farmSheet, "Balance sheet: "+result.FarmSlug)
		if err != nil {
			logger.WithError(err).Fatal("build pdf")
		}
		if err := os.WriteFile(*pdfPath, data, 0o644); err != nil {
			logger.WithError(err).Fatal("write pdf")
		}
		logger.WithField("path", *pdfPath).Info("pdf written")
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		logger.WithError(err).Fatal("encode result")
	}
}

func parseDay(value string) (time.Time, error) {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, err
	}
	return calendar.StartOfUTCDay(parsed), nil
}
