package tax_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"takehome/internal/domain/tax"
)

func ptr(v float64) *float64 { return &v }

func federalBrackets() []tax.Bracket {
	return []tax.Bracket{
		{Rate: 10, IncomeMin: 0, IncomeMax: ptr(11000), TotalTaxPriorBrackets: 0},
		{Rate: 12, IncomeMin: 11000, IncomeMax: ptr(44725), TotalTaxPriorBrackets: 1100},
		{Rate: 22, IncomeMin: 44725, IncomeMax: nil, TotalTaxPriorBrackets: 5147},
	}
}

func georgiaBrackets() []tax.Bracket {
	return []tax.Bracket{
		{Rate: 1, IncomeMin: 0, IncomeMax: ptr(750), TotalTaxPriorBrackets: 0},
		{Rate: 2, IncomeMin: 750, IncomeMax: ptr(2250), TotalTaxPriorBrackets: 7.5},
		{Rate: 3, IncomeMin: 2250, IncomeMax: ptr(3750), TotalTaxPriorBrackets: 37.5},
		{Rate: 4, IncomeMin: 3750, IncomeMax: ptr(5250), TotalTaxPriorBrackets: 82.5},
		{Rate: 5, IncomeMin: 5250, IncomeMax: ptr(7000), TotalTaxPriorBrackets: 142.5},
		{Rate: 5.75, IncomeMin: 7000, IncomeMax: nil, TotalTaxPriorBrackets: 230},
	}
}

func mustTables(t *testing.T, j tax.Jurisdiction, year int, brackets []tax.Bracket, single float64) tax.Tables {
	t.Helper()
	tables, err := tax.NewTables(j, year, brackets, map[tax.FilingStatus]float64{tax.FilingStatusSingle: single})
	require.NoError(t, err)
	return tables
}

func testRegistry(t *testing.T) *tax.Registry {
	t.Helper()
	registry, err := tax.NewRegistry(2023,
		mustTables(t, tax.Federal, 2023, federalBrackets(), 13850),
		mustTables(t, "GA", 2023, georgiaBrackets(), 5400),
	)
	require.NoError(t, err)
	return registry
}
