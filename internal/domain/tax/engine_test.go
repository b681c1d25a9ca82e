package tax_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"takehome/internal/domain/tax"
)

func TestComputeMarginalBracket(t *testing.T) {
	table, err := tax.NewBracketTable(federalBrackets())
	require.NoError(t, err)

	result, err := tax.Compute(60000, table, 13850)
	require.NoError(t, err)

	assert.Equal(t, 60000.0, result.GrossIncome)
	assert.Equal(t, 46150.0, result.TaxableIncome)
	assert.Equal(t, 22.0, result.Bracket.Rate)
	assert.InDelta(t, 5460.50, result.TaxAmount, 1e-9)
	assert.InDelta(t, 54539.50, result.TakehomePay, 1e-9)
}

func TestComputeBoundaryResolvesToLowerBracket(t *testing.T) {
	table, err := tax.NewBracketTable(federalBrackets())
	require.NoError(t, err)

	tests := []struct {
		name    string
		taxable float64
		rate    float64
		tax     float64
	}{
		{name: "bottom of table", taxable: 0, rate: 10, tax: 0},
		{name: "first boundary", taxable: 11000, rate: 10, tax: 1100},
		{name: "just past first boundary", taxable: 11000.01, rate: 12, tax: 1100.0012},
		{name: "second boundary", taxable: 44725, rate: 12, tax: 5147},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tax.Compute(tt.taxable, table, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.rate, result.Bracket.Rate)
			assert.InDelta(t, tt.tax, result.TaxAmount, 1e-6)
		})
	}
}

func TestComputeNegativeTaxableIncomeFails(t *testing.T) {
	table, err := tax.NewBracketTable(federalBrackets())
	require.NoError(t, err)

	_, err = tax.Compute(10000, table, 13850)
	assert.ErrorIs(t, err, tax.ErrNoBracket)
}

func TestComputeEmptyTableFails(t *testing.T) {
	_, err := tax.Compute(50000, tax.BracketTable{}, 0)
	assert.ErrorIs(t, err, tax.ErrNoBracket)
}

func TestComputeRejectsInvalidIncome(t *testing.T) {
	table, err := tax.NewBracketTable(federalBrackets())
	require.NoError(t, err)

	for _, income := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := tax.Compute(income, table, 0)
		assert.ErrorIs(t, err, tax.ErrInvalidArgument, "income %v", income)
	}
	_, err = tax.Compute(1000, table, -5)
	assert.ErrorIs(t, err, tax.ErrInvalidArgument)
}

func TestComputeIsMonotonicInIncome(t *testing.T) {
	table, err := tax.NewBracketTable(georgiaBrackets())
	require.NoError(t, err)

	previous := -1.0
	for income := 5400.0; income <= 250000; income += 137.5 {
		result, err := tax.Compute(income, table, 5400)
		require.NoError(t, err)
		require.GreaterOrEqual(t, result.TaxAmount, previous, "income %v", income)
		previous = result.TaxAmount
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	tables := mustTables(t, tax.Federal, 2023, federalBrackets(), 13850)

	first, err := tax.ComputeFor(87654.32, tables)
	require.NoError(t, err)
	second, err := tax.ComputeFor(87654.32, tables)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputeForRequiresSingleDeduction(t *testing.T) {
	tables, err := tax.NewTables(tax.Federal, 2023, federalBrackets(), map[tax.FilingStatus]float64{
		tax.FilingStatusMarriedJoint: 27700,
	})
	require.NoError(t, err)

	_, err = tax.ComputeFor(60000, tables)
	assert.ErrorIs(t, err, tax.ErrMissingDeduction)
}
