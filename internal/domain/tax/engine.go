package tax

import (
	"fmt"
	"math"
)

// Compute applies a flat deduction and taxes the remainder marginally against brackets.
// Taxable income is not floored at zero: a deduction larger than the income leaves no
// matching bracket and fails with ErrNoBracket.
func Compute(grossIncome float64, brackets BracketTable, deduction float64) (Result, error) {
	if math.IsNaN(grossIncome) || math.IsInf(grossIncome, 0) || grossIncome < 0 {
		return Result{}, fmt.Errorf("%w: income must be a non-negative number", ErrInvalidArgument)
	}
	if math.IsNaN(deduction) || deduction < 0 {
		return Result{}, fmt.Errorf("%w: deduction must be non-negative", ErrInvalidArgument)
	}

	taxable := grossIncome - deduction
	bracket, ok := brackets.Lookup(taxable)
	if !ok {
		return Result{}, fmt.Errorf("%w: taxable income %.2f", ErrNoBracket, taxable)
	}

	tax := (taxable-bracket.IncomeMin)*(bracket.Rate/100) + bracket.TotalTaxPriorBrackets
	return Result{
		GrossIncome:   grossIncome,
		TaxableIncome: taxable,
		TaxAmount:     tax,
		TakehomePay:   grossIncome - tax,
		Deduction:     deduction,
		Bracket:       bracket,
	}, nil
}

// ComputeFor runs Compute with the single filer deduction of tables.
func ComputeFor(grossIncome float64, tables Tables) (Result, error) {
	deduction, ok := tables.Deductions.Amount(FilingStatusSingle)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s %d has no %s deduction", ErrMissingDeduction, tables.Jurisdiction, tables.Year, FilingStatusSingle)
	}
	result, err := Compute(grossIncome, tables.Brackets, deduction)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", tables.Jurisdiction, err)
	}
	return result, nil
}
