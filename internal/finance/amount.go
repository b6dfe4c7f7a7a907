package finance

import "github.com/shopspring/decimal"

// Amount is a monetary figure tagged with its provenance. The USD leg is
// optional: statements sometimes carry only the BTC amount.
type Amount struct {
	BTC    decimal.Decimal     `json:"btc"`
	USD    decimal.NullDecimal `json:"usd,omitempty"`
	Source Source              `json:"source"`
}

// ZeroAmount returns an untagged zero figure.
func ZeroAmount() Amount {
	return Amount{BTC: decimal.Zero, Source: SourceNone}
}

// NewAmount builds a BTC-only amount for a source.
func NewAmount(btc decimal.Decimal, source Source) Amount {
	return Amount{BTC: btc, Source: source}
}

// WithUSD attaches a USD leg to the amount.
func (a Amount) WithUSD(usd decimal.Decimal) Amount {
	a.USD = decimal.NullDecimal{Decimal: usd, Valid: true}
	return a
}

// IsZero reports whether both legs are zero.
func (a Amount) IsZero() bool {
	return a.BTC.IsZero() && (!a.USD.Valid || a.USD.Decimal.IsZero())
}

// add sums two amounts leg by leg, keeping the receiver's source. The USD
// leg survives when at least one operand carries one.
func (a Amount) add(b Amount) Amount {
	sum := Amount{BTC: a.BTC.Add(b.BTC), Source: a.Source}
	switch {
	case a.USD.Valid && b.USD.Valid:
		sum.USD = decimal.NullDecimal{Decimal: a.USD.Decimal.Add(b.USD.Decimal), Valid: true}
	case a.USD.Valid:
		sum.USD = a.USD
	case b.USD.Valid:
		sum.USD = b.USD
	}
	return sum
}

// MergeAmount combines two figures for the same counterparty and day.
// Equal sources sum; unequal sources resolve by precedence and the winner
// is returned unchanged. A statement-derived figure is never diluted by a
// simulator estimate for the same day.
func MergeAmount(a, b Amount) Amount {
	if a.Source == b.Source {
		return a.add(b)
	}
	if ResolveSource(a.Source, b.Source) == a.Source {
		return a
	}
	return b
}

// MergeAmounts folds a set of figures through MergeAmount.
func MergeAmounts(amounts ...Amount) Amount {
	merged := ZeroAmount()
	for _, a := range amounts {
		merged = MergeAmount(merged, a)
	}
	return merged
}
