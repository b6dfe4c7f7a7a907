package simulation

import (
	"fmt"

	"github.com/shopspring/decimal"

	equipment "mining-ledger/internal/equipment/domain"
)

// Pool fee rates deducted from mined income when simulating pool payouts.
var poolFeeRates = map[equipment.Provider]decimal.Decimal{
	equipment.ProviderAntpool: decimal.NewFromFloat(0.04),
	equipment.ProviderFoundry: decimal.NewFromFloat(0.025),
	equipment.ProviderLuxor:   decimal.NewFromFloat(0.025),
}

// PoolFeeRate dispatches on the pool provider. Unknown providers are a
// fatal condition for the site being simulated.
func PoolFeeRate(provider equipment.Provider) (decimal.Decimal, error) {
	rate, ok := poolFeeRates[provider]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnsupportedProvider, provider)
	}
	return rate, nil
}
