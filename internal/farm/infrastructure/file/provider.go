// Package file loads a farm scenario from a YAML document and serves it
// through the orchestrator's DataProvider boundary. It backs the CLI and
// tests; production deployments plug a gateway-backed provider in instead.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	equipment "mining-ledger/internal/equipment/domain"
	farmapp "mining-ledger/internal/farm/application"
	"mining-ledger/internal/finance"
	statement "mining-ledger/internal/statement/domain"
	telemetry "mining-ledger/internal/telemetry/domain"
)

var (
	// ErrFarmNotFound is returned for unknown farm slugs.
	ErrFarmNotFound = errors.New("scenario: farm not found")
	// ErrSiteNotFound is returned for unknown site slugs.
	ErrSiteNotFound = errors.New("scenario: site not found")
)

const dayLayout = "2006-01-02"

type scenarioDoc struct {
	Farms []farmDoc `yaml:"farms"`
}

type farmDoc struct {
	Slug  string    `yaml:"slug"`
	Name  string    `yaml:"name"`
	Sites []siteDoc `yaml:"sites"`
}

type siteDoc struct {
	Slug          string         `yaml:"slug"`
	Name          string         `yaml:"name"`
	Provider      string         `yaml:"provider"`
	Contract      contractDoc    `yaml:"contract"`
	Containers    []containerDoc `yaml:"containers"`
	Statements    []statementDoc `yaml:"statements"`
	MiningHistory []historyDoc   `yaml:"mining_history"`
}

type contractDoc struct {
	ElectricityPriceUsdPerKwh float64 `yaml:"electricity_price_usd_per_kwh"`
	CSM                       feeDoc  `yaml:"csm"`
	Operator                  feeDoc  `yaml:"operator"`
}

type feeDoc struct {
	TaxRate                 float64 `yaml:"tax_rate"`
	ProfitShareRate         float64 `yaml:"profit_share_rate"`
	PowerSurchargeUsdPerKwh float64 `yaml:"power_surcharge_usd_per_kwh"`
}

type containerDoc struct {
	ID                 string  `yaml:"id"`
	Units              int     `yaml:"units"`
	HashrateTHsPerUnit float64 `yaml:"hashrate_ths_per_unit"`
	PowerWPerUnit      float64 `yaml:"power_w_per_unit"`
	CostUSD            float64 `yaml:"cost_usd"`
	Start              string  `yaml:"start"`
	End                string  `yaml:"end"`
}

type statementDoc struct {
	ID           string   `yaml:"id"`
	Start        string   `yaml:"start"`
	End          string   `yaml:"end"`
	Flow         string   `yaml:"flow"`
	Counterparty string   `yaml:"counterparty"`
	BTC          float64  `yaml:"btc"`
	USD          *float64 `yaml:"usd"`
	BTCPrice     float64  `yaml:"btc_price"`
}

type historyDoc struct {
	Day         string  `yaml:"day"`
	Uptime      float64 `yaml:"uptime"`
	HashrateTHs float64 `yaml:"hashrate_ths"`
	Mined       float64 `yaml:"mined"`
}

// Provider serves scenario data loaded from one YAML file.
type Provider struct {
	farms map[string]equipment.Farm
	data  map[string]farmapp.SiteData
}

// NewProvider parses the scenario at path.
func NewProvider(path string) (*Provider, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: read %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse builds a Provider from raw YAML.
func Parse(raw []byte) (*Provider, error) {
	var doc scenarioDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("scenario: parse: %w", err)
	}

	p := &Provider{
		farms: map[string]equipment.Farm{},
		data:  map[string]farmapp.SiteData{},
	}
	for _, f := range doc.Farms {
		farm := equipment.Farm{Slug: f.Slug, Name: f.Name}
		for _, s := range f.Sites {
			site, data, err := buildSite(f.Slug, s)
			if err != nil {
				return nil, err
			}
			farm.Sites = append(farm.Sites, site)
			p.data[siteKey(f.Slug, s.Slug)] = data
		}
		p.farms[f.Slug] = farm
	}
	return p, nil
}

// Farm implements farmapp.DataProvider.
func (p *Provider) Farm(_ context.Context, farmSlug string) (equipment.Farm, error) {
	farm, ok := p.farms[farmSlug]
	if !ok {
		return equipment.Farm{}, fmt.Errorf("%w: %s", ErrFarmNotFound, farmSlug)
	}
	return farm, nil
}

// SiteData implements farmapp.DataProvider.
func (p *Provider) SiteData(_ context.Context, farmSlug, siteSlug string) (farmapp.SiteData, error) {
	data, ok := p.data[siteKey(farmSlug, siteSlug)]
	if !ok {
		return farmapp.SiteData{}, fmt.Errorf("%w: %s/%s", ErrSiteNotFound, farmSlug, siteSlug)
	}
	return data, nil
}

func buildSite(farmSlug string, doc siteDoc) (equipment.Site, farmapp.SiteData, error) {
	site := equipment.Site{
		Slug:     doc.Slug,
		Name:     doc.Name,
		Provider: equipment.Provider(doc.Provider),
		Contract: equipment.Contract{
			ElectricityPriceUsdPerKwh: decimal.NewFromFloat(doc.Contract.ElectricityPriceUsdPerKwh),
			CSM:                       buildFeeTerms(doc.Contract.CSM),
			Operator:                  buildFeeTerms(doc.Contract.Operator),
		},
	}

	for _, c := range doc.Containers {
		start, err := parseDay(c.Start)
		if err != nil {
			return equipment.Site{}, farmapp.SiteData{}, fmt.Errorf("scenario: container %s: %w", c.ID, err)
		}
		unit := equipment.Unit{
			ID:                 c.ID,
			Start:              start,
			Units:              c.Units,
			HashrateTHsPerUnit: c.HashrateTHsPerUnit,
			PowerWPerUnit:      c.PowerWPerUnit,
			CostUSD:            decimal.NewFromFloat(c.CostUSD),
		}
		if c.End != "" {
			end, err := parseDay(c.End)
			if err != nil {
				return equipment.Site{}, farmapp.SiteData{}, fmt.Errorf("scenario: container %s: %w", c.ID, err)
			}
			unit.End = &end
		}
		site.Containers = append(site.Containers, unit)
	}

	data := farmapp.SiteData{Site: site}
	for _, s := range doc.Statements {
		rec, err := buildStatement(farmSlug, doc.Slug, s)
		if err != nil {
			return equipment.Site{}, farmapp.SiteData{}, err
		}
		data.Statements = append(data.Statements, rec)
	}
	for _, h := range doc.MiningHistory {
		day, err := parseDay(h.Day)
		if err != nil {
			return equipment.Site{}, farmapp.SiteData{}, fmt.Errorf("scenario: history for %s: %w", doc.Slug, err)
		}
		data.History = append(data.History, telemetry.DayRecord{
			Day:         day,
			Uptime:      decimal.NewFromFloat(h.Uptime),
			HashrateTHs: h.HashrateTHs,
			MinedBTC:    decimal.NewFromFloat(h.Mined),
			FarmSlug:    farmSlug,
			SiteSlug:    doc.Slug,
		})
	}
	return site, data, nil
}

func buildStatement(farmSlug, siteSlug string, doc statementDoc) (statement.Record, error) {
	start, err := parseDay(doc.Start)
	if err != nil {
		return statement.Record{}, fmt.Errorf("scenario: statement %s: %w", doc.ID, err)
	}
	end, err := parseDay(doc.End)
	if err != nil {
		return statement.Record{}, fmt.Errorf("scenario: statement %s: %w", doc.ID, err)
	}

	rec := statement.Record{
		ID:           doc.ID,
		Start:        start,
		End:          end,
		Flow:         finance.Flow(doc.Flow),
		Counterparty: statement.ParseCounterparty(doc.Counterparty),
		BTC:          decimal.NewFromFloat(doc.BTC),
		BTCPrice:     decimal.NewFromFloat(doc.BTCPrice),
		FarmSlug:     farmSlug,
		SiteSlug:     siteSlug,
	}
	if doc.USD != nil {
		rec.USD = decimal.NullDecimal{Decimal: decimal.NewFromFloat(*doc.USD), Valid: true}
	}
	if err := rec.Validate(); err != nil {
		return statement.Record{}, fmt.Errorf("scenario: statement %s: %w", doc.ID, err)
	}
	return rec, nil
}

func buildFeeTerms(doc feeDoc) equipment.FeeTerms {
	return equipment.FeeTerms{
		TaxRate:                 decimal.NewFromFloat(doc.TaxRate),
		ProfitShareRate:         decimal.NewFromFloat(doc.ProfitShareRate),
		PowerSurchargeUsdPerKwh: decimal.NewFromFloat(doc.PowerSurchargeUsdPerKwh),
	}
}

func parseDay(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errors.New("empty date")
	}
	if t, err := time.Parse(dayLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q", raw)
	}
	return t, nil
}

func siteKey(farmSlug, siteSlug string) string {
	return farmSlug + "/" + siteSlug
}
