// Package simulation implements the revenue waterfall used when no
// financial statement covers a mining day: electricity, taxes, profit
// sharing and depreciation applied to gross mining income in a fixed,
// non-reorderable stage order.
package simulation

import (
	"github.com/shopspring/decimal"

	equipment "mining-ledger/internal/equipment/domain"
	telemetry "mining-ledger/internal/telemetry/domain"
)

var (
	hoursPerDay  = decimal.NewFromInt(24)
	wattsPerKilo = decimal.NewFromInt(1000)
	decimalOne   = decimal.NewFromInt(1)
)

// Inputs are the parameters of one waterfall run.
type Inputs struct {
	MinedBTC           decimal.Decimal
	ElectricityCostUSD decimal.Decimal
	// ElectricityCostBTC, when set, is used directly as the cost basis and
	// takes precedence over the USD figure.
	ElectricityCostBTC       decimal.NullDecimal
	BTCPrice                 decimal.Decimal
	CSM                      equipment.FeeTerms
	Operator                 equipment.FeeTerms
	ProviderPowerUsdPerKwh   decimal.Decimal
	EquipmentDepreciationUSD decimal.Decimal
	OtherIncomeBTC           decimal.Decimal
	OtherCostBTC             decimal.Decimal
}

// ElectricityCost is the total power cost and its reporting-only split
// between the CSM, the operator and the electricity provider. The split is
// proportional to each party's per-kWh rate and does not feed back into the
// waterfall.
type ElectricityCost struct {
	BTC              decimal.Decimal `json:"btc"`
	USD              decimal.Decimal `json:"usd"`
	CSMShareUSD      decimal.Decimal `json:"csmShareUsd"`
	OperatorShareUSD decimal.Decimal `json:"operatorShareUsd"`
	ProviderShareUSD decimal.Decimal `json:"providerShareUsd"`
}

// PartyCost is one fee-charging party's total take for the simulated period.
type PartyCost struct {
	ElectricityUSD decimal.Decimal `json:"electricityUsd"`
	ElectricityBTC decimal.Decimal `json:"electricityBtc"`
	TaxBTC         decimal.Decimal `json:"taxBtc"`
	ProfitShareBTC decimal.Decimal `json:"profitShareBtc"`
	TotalBTC       decimal.Decimal `json:"totalBtc"`
}

// CostBreakdown groups every deduction of the waterfall.
type CostBreakdown struct {
	Electricity     ElectricityCost `json:"electricity"`
	TaxesBTC        decimal.Decimal `json:"taxesBtc"`
	ProfitShareBTC  decimal.Decimal `json:"profitShareBtc"`
	DepreciationUSD decimal.Decimal `json:"depreciationUsd"`
	CSM             PartyCost       `json:"csm"`
	Operator        PartyCost       `json:"operator"`
	Provider        PartyCost       `json:"provider"`
}

// IncomeBreakdown groups the income side of the waterfall.
type IncomeBreakdown struct {
	MinedBTC decimal.Decimal `json:"minedBtc"`
	OtherBTC decimal.Decimal `json:"otherBtc"`
	// GrossBTC is mined income net of electricity and other cost, the base
	// that taxes apply to.
	GrossBTC decimal.Decimal `json:"grossBtc"`
}

// RevenueBreakdown carries the waterfall outcomes stage by stage.
type RevenueBreakdown struct {
	AfterTaxBTC decimal.Decimal `json:"afterTaxBtc"`
	GrossBTC    decimal.Decimal `json:"grossBtc"`
	GrossUSD    decimal.Decimal `json:"grossUsd"`
	NetBTC      decimal.Decimal `json:"netBtc"`
	NetUSD      decimal.Decimal `json:"netUsd"`
}

// Result is the nested cost/income/revenue breakdown of one run.
type Result struct {
	Cost    CostBreakdown    `json:"cost"`
	Income  IncomeBreakdown  `json:"income"`
	Revenue RevenueBreakdown `json:"revenue"`
}

// Simulate runs the waterfall. Stage order is fixed and each stage's base
// is the prior stage's result:
//
//	1. electricity cost (USD basis converted at BTCPrice unless a BTC basis
//	   is supplied)
//	2. gross income = mined - electricity + other income - other cost
//	3. taxes on gross income (CSM + operator tax rates)
//	4. profit share on after-tax income (CSM + operator rates)
//	5. gross revenue = after profit share, reported in BTC and USD
//	6. net revenue = gross revenue USD - depreciation, converted back
func Simulate(in Inputs) (Result, error) {
	if !in.BTCPrice.IsPositive() {
		return Result{}, ErrInvalidBTCPrice
	}

	var elecBTC, elecUSD decimal.Decimal
	if in.ElectricityCostBTC.Valid {
		elecBTC = in.ElectricityCostBTC.Decimal
		elecUSD = elecBTC.Mul(in.BTCPrice)
	} else {
		elecUSD = in.ElectricityCostUSD
		elecBTC = elecUSD.Div(in.BTCPrice)
	}

	grossIncome := in.MinedBTC.Sub(elecBTC).Add(in.OtherIncomeBTC).Sub(in.OtherCostBTC)

	csmTax := grossIncome.Mul(in.CSM.TaxRate)
	opTax := grossIncome.Mul(in.Operator.TaxRate)
	taxes := csmTax.Add(opTax)
	afterTax := grossIncome.Sub(taxes)

	csmShare := afterTax.Mul(in.CSM.ProfitShareRate)
	opShare := afterTax.Mul(in.Operator.ProfitShareRate)
	profitShare := csmShare.Add(opShare)
	afterProfitShare := afterTax.Sub(profitShare)

	grossRevenueBTC := afterProfitShare
	grossRevenueUSD := grossRevenueBTC.Mul(in.BTCPrice)
	netRevenueUSD := grossRevenueUSD.Sub(in.EquipmentDepreciationUSD)
	netRevenueBTC := netRevenueUSD.Div(in.BTCPrice)

	elec := splitElectricity(elecBTC, elecUSD, in)

	result := Result{
		Cost: CostBreakdown{
			Electricity:     elec,
			TaxesBTC:        taxes,
			ProfitShareBTC:  profitShare,
			DepreciationUSD: in.EquipmentDepreciationUSD,
			CSM:             partyCost(elec.CSMShareUSD, csmTax, csmShare, in.BTCPrice),
			Operator:        partyCost(elec.OperatorShareUSD, opTax, opShare, in.BTCPrice),
			Provider:        partyCost(elec.ProviderShareUSD, decimal.Zero, decimal.Zero, in.BTCPrice),
		},
		Income: IncomeBreakdown{
			MinedBTC: in.MinedBTC,
			OtherBTC: in.OtherIncomeBTC,
			GrossBTC: grossIncome,
		},
		Revenue: RevenueBreakdown{
			AfterTaxBTC: afterTax,
			GrossBTC:    grossRevenueBTC,
			GrossUSD:    grossRevenueUSD,
			NetBTC:      netRevenueBTC,
			NetUSD:      netRevenueUSD,
		},
	}
	return result, nil
}

// splitElectricity apportions the power cost between CSM, operator and
// provider proportionally to their per-kWh rates. When no party carries a
// rate the provider keeps the full cost.
func splitElectricity(elecBTC, elecUSD decimal.Decimal, in Inputs) ElectricityCost {
	out := ElectricityCost{BTC: elecBTC, USD: elecUSD}

	totalRate := in.CSM.PowerSurchargeUsdPerKwh.
		Add(in.Operator.PowerSurchargeUsdPerKwh).
		Add(in.ProviderPowerUsdPerKwh)
	if !totalRate.IsPositive() {
		out.ProviderShareUSD = elecUSD
		return out
	}

	out.CSMShareUSD = elecUSD.Mul(in.CSM.PowerSurchargeUsdPerKwh).Div(totalRate)
	out.OperatorShareUSD = elecUSD.Mul(in.Operator.PowerSurchargeUsdPerKwh).Div(totalRate)
	out.ProviderShareUSD = elecUSD.Sub(out.CSMShareUSD).Sub(out.OperatorShareUSD)
	return out
}

func partyCost(elecUSD, taxBTC, shareBTC, btcPrice decimal.Decimal) PartyCost {
	elecBTC := elecUSD.Div(btcPrice)
	return PartyCost{
		ElectricityUSD: elecUSD,
		ElectricityBTC: elecBTC,
		TaxBTC:         taxBTC,
		ProfitShareBTC: shareBTC,
		TotalBTC:       elecBTC.Add(taxBTC).Add(shareBTC),
	}
}

// SimulateDay derives one telemetry day's cost structure from the site
// contract and the capacity active that day. Mined income is taken net of
// the pool provider fee; depreciation is left to period-level aggregation.
func SimulateDay(site equipment.Site, segment equipment.CapacitySegment, t telemetry.DayRecord, btcPrice decimal.Decimal) (Result, error) {
	poolFee, err := PoolFeeRate(site.Provider)
	if err != nil {
		return Result{}, err
	}

	kwh := decimal.NewFromFloat(segment.PowerW).
		Div(wattsPerKilo).
		Mul(hoursPerDay).
		Mul(t.Uptime)

	ratePerKwh := site.Contract.ElectricityPriceUsdPerKwh.
		Add(site.Contract.CSM.PowerSurchargeUsdPerKwh).
		Add(site.Contract.Operator.PowerSurchargeUsdPerKwh)

	in := Inputs{
		MinedBTC:               t.MinedBTC.Mul(decimalOne.Sub(poolFee)),
		ElectricityCostUSD:     kwh.Mul(ratePerKwh),
		BTCPrice:               btcPrice,
		CSM:                    site.Contract.CSM,
		Operator:               site.Contract.Operator,
		ProviderPowerUsdPerKwh: site.Contract.ElectricityPriceUsdPerKwh,
	}
	return Simulate(in)
}
