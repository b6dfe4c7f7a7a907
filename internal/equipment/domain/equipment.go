// Package equipment models the mining fleet: containers with a lifecycle,
// the contracts governing their fees, and the farm/site graph they hang off.
package equipment

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Provider identifies the pool a site mines with.
type Provider string

const (
	ProviderAntpool Provider = "antpool"
	ProviderFoundry Provider = "foundry"
	ProviderLuxor   Provider = "luxor"
)

// IsValid checks the provider against the closed set of known pools.
func (p Provider) IsValid() bool {
	switch p {
	case ProviderAntpool, ProviderFoundry, ProviderLuxor:
		return true
	default:
		return false
	}
}

// Unit is a container of identical ASICs with a half-open lifecycle
// [Start, End). A nil End means the container is still active.
type Unit struct {
	ID                 string          `json:"id"`
	Start              time.Time       `json:"start"`
	End                *time.Time      `json:"end,omitempty"`
	Units              int             `json:"units"`
	HashrateTHsPerUnit float64         `json:"hashrateTHsPerUnit"`
	PowerWPerUnit      float64         `json:"powerWPerUnit"`
	CostUSD            decimal.Decimal `json:"cost"`
}

// ActiveAt reports whether the container is live at t.
func (u Unit) ActiveAt(t time.Time) bool {
	if t.Before(u.Start) {
		return false
	}
	return u.End == nil || t.Before(*u.End)
}

// HashrateTHs is the aggregate hashrate of the container.
func (u Unit) HashrateTHs() float64 {
	return float64(u.Units) * u.HashrateTHsPerUnit
}

// PowerW is the aggregate power draw of the container.
func (u Unit) PowerW() float64 {
	return float64(u.Units) * u.PowerWPerUnit
}

// FeeTerms are one fee-charging party's contract terms.
type FeeTerms struct {
	TaxRate                 decimal.Decimal `json:"taxRate"`
	ProfitShareRate         decimal.Decimal `json:"profitShareRate"`
	PowerSurchargeUsdPerKwh decimal.Decimal `json:"powerSurchargeUsdPerKwh"`
}

// Contract carries the site's electricity price and the CSM and operator
// fee terms.
type Contract struct {
	ElectricityPriceUsdPerKwh decimal.Decimal `json:"electricityPrice"`
	CSM                       FeeTerms        `json:"csm"`
	Operator                  FeeTerms        `json:"operator"`
}

// Site is one mining location with its fleet and contract.
type Site struct {
	Slug       string   `json:"slug"`
	Name       string   `json:"name"`
	Provider   Provider `json:"provider"`
	Contract   Contract `json:"contract"`
	Containers []Unit   `json:"containers"`
}

// ContainerIDs lists the site's container identifiers, sorted.
func (s Site) ContainerIDs() []string {
	ids := make([]string, 0, len(s.Containers))
	for _, c := range s.Containers {
		ids = append(ids, c.ID)
	}
	sort.Strings(ids)
	return ids
}

// Farm groups the sites reconciled together.
type Farm struct {
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Sites []Site `json:"sites"`
}

// Site looks a site up by slug.
func (f Farm) Site(slug string) (Site, bool) {
	for _, s := range f.Sites {
		if s.Slug == slug {
			return s, true
		}
	}
	return Site{}, false
}
