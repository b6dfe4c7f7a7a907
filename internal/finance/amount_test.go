package finance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestResolveSource(t *testing.T) {
	cases := []struct {
		a, b, want Source
	}{
		{SourceStatement, SourcePool, SourceStatement},
		{SourcePool, SourceStatement, SourceStatement},
		{SourcePool, SourceSimulator, SourcePool},
		{SourceSimulator, SourceNone, SourceSimulator},
		{SourceNone, SourceNone, SourceNone},
		{SourceNone, SourceStatement, SourceStatement},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ResolveSource(tc.a, tc.b), "%s vs %s", tc.a, tc.b)
	}
}

func TestMergeAmountNoneAlwaysLoses(t *testing.T) {
	x := NewAmount(dec("0.5"), SourcePool).WithUSD(dec("12000"))
	merged := MergeAmount(ZeroAmount(), x)
	assert.Equal(t, x, merged)

	merged = MergeAmount(x, ZeroAmount())
	assert.Equal(t, x, merged)
}

func TestMergeAmountHigherPrecedenceUnchanged(t *testing.T) {
	stmt := NewAmount(dec("1.25"), SourceStatement).WithUSD(dec("30000"))
	pool := NewAmount(dec("999"), SourcePool)

	merged := MergeAmount(stmt, pool)
	assert.Equal(t, stmt, merged, "statement figure must win unchanged")

	merged = MergeAmount(pool, stmt)
	assert.Equal(t, stmt, merged)

	sim := NewAmount(dec("0.1"), SourceSimulator)
	assert.Equal(t, pool, MergeAmount(sim, pool))
}

func TestMergeAmountSameSourceSums(t *testing.T) {
	a := NewAmount(dec("0.3"), SourceStatement).WithUSD(dec("100"))
	b := NewAmount(dec("0.2"), SourceStatement)

	merged := MergeAmount(a, b)
	assert.Equal(t, SourceStatement, merged.Source)
	assert.True(t, merged.BTC.Equal(dec("0.5")))
	// The single USD leg survives the sum.
	assert.True(t, merged.USD.Valid)
	assert.True(t, merged.USD.Decimal.Equal(dec("100")))

	both := MergeAmount(a, a)
	assert.True(t, both.USD.Decimal.Equal(dec("200")))
}

func TestMergeAmountsFold(t *testing.T) {
	merged := MergeAmounts(
		NewAmount(dec("0.1"), SourceSimulator),
		NewAmount(dec("0.2"), SourceStatement),
		NewAmount(dec("0.3"), SourceStatement),
		NewAmount(dec("5"), SourcePool),
	)
	assert.Equal(t, SourceStatement, merged.Source)
	assert.True(t, merged.BTC.Equal(dec("0.5")), "got %s", merged.BTC)
}

func TestSourceAndFlowValidity(t *testing.T) {
	assert.True(t, SourceStatement.IsValid())
	assert.False(t, Source("GUESS").IsValid())
	assert.True(t, FlowIn.IsValid())
	assert.False(t, Flow("SIDEWAYS").IsValid())
}
