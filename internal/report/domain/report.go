// Package report defines the canonical per-site per-day reconciled record
// and the farm-level merge across sites.
package report

import (
	"time"

	"github.com/shopspring/decimal"

	"mining-ledger/internal/finance"
)

// Expenses are the cost side of a daily report, one tagged amount per
// counterparty bucket.
type Expenses struct {
	Electricity finance.Amount `json:"electricity"`
	CSM         finance.Amount `json:"csm"`
	Operator    finance.Amount `json:"operator"`
	Other       finance.Amount `json:"other"`
}

// TotalBTC sums the expense legs.
func (e Expenses) TotalBTC() decimal.Decimal {
	return e.Electricity.BTC.Add(e.CSM.BTC).Add(e.Operator.BTC).Add(e.Other.BTC)
}

// TotalUSD sums the expense USD legs; valid when at least one leg carries
// one.
func (e Expenses) TotalUSD() decimal.NullDecimal {
	return sumUSD(e.Electricity, e.CSM, e.Operator, e.Other)
}

// Income is the income side of a daily report.
type Income struct {
	Pool  finance.Amount `json:"pool"`
	Other finance.Amount `json:"other"`
}

// TotalBTC sums the income legs.
func (i Income) TotalBTC() decimal.Decimal {
	return i.Pool.BTC.Add(i.Other.BTC)
}

// TotalUSD sums the income USD legs; valid when at least one leg carries
// one.
func (i Income) TotalUSD() decimal.NullDecimal {
	return sumUSD(i.Pool, i.Other)
}

func sumUSD(amounts ...finance.Amount) decimal.NullDecimal {
	var sum decimal.NullDecimal
	for _, a := range amounts {
		if a.USD.Valid {
			sum.Decimal = sum.Decimal.Add(a.USD.Decimal)
			sum.Valid = true
		}
	}
	return sum
}

// DailyReport is the canonical reconciled record for one site and one UTC
// calendar day.
type DailyReport struct {
	Day            time.Time       `json:"day"`
	Uptime         decimal.Decimal `json:"uptime"`
	HashrateTHs    float64         `json:"hashrateTHs"`
	HashrateTHsMax float64         `json:"hashrateTHsMax"`
	ContainerIDs   []string        `json:"containerIds"`
	Expenses       Expenses        `json:"expenses"`
	Income         Income          `json:"income"`
	Revenue        finance.Amount  `json:"revenue"`
}

// EmptyReport is the all-zero record emitted for days with neither
// statements nor telemetry.
func EmptyReport(day time.Time) DailyReport {
	return DailyReport{
		Day: day,
		Expenses: Expenses{
			Electricity: finance.ZeroAmount(),
			CSM:         finance.ZeroAmount(),
			Operator:    finance.ZeroAmount(),
			Other:       finance.ZeroAmount(),
		},
		Income: Income{
			Pool:  finance.ZeroAmount(),
			Other: finance.ZeroAmount(),
		},
		Revenue: finance.ZeroAmount(),
	}
}
