package tax

import (
	"fmt"
	"math"
	"sort"
)

// priorTaxTolerance absorbs the cent rounding applied when source files are generated.
const priorTaxTolerance = 0.01

// BracketTable is an ordered, validated set of brackets for one jurisdiction.
// The zero value is an empty table that matches no income.
type BracketTable struct {
	brackets []Bracket
}

// NewBracketTable sorts a copy of brackets by IncomeMin and checks the table invariants.
func NewBracketTable(brackets []Bracket) (BracketTable, error) {
	if len(brackets) == 0 {
		return BracketTable{}, fmt.Errorf("%w: no brackets", ErrInvalidTable)
	}
	sorted := make([]Bracket, len(brackets))
	for i, b := range brackets {
		if b.IncomeMax != nil {
			upper := *b.IncomeMax
			b.IncomeMax = &upper
		}
		sorted[i] = b
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].IncomeMin < sorted[j].IncomeMin })

	if err := validateBrackets(sorted); err != nil {
		return BracketTable{}, err
	}
	return BracketTable{brackets: sorted}, nil
}

func validateBrackets(brackets []Bracket) error {
	var expectedPrior float64
	for i, b := range brackets {
		if b.IncomeMin < 0 || math.IsNaN(b.IncomeMin) {
			return fmt.Errorf("%w: bracket %d has negative income_min", ErrInvalidTable, i)
		}
		if b.Rate < 0 || math.IsNaN(b.Rate) {
			return fmt.Errorf("%w: bracket %d has negative rate", ErrInvalidTable, i)
		}
		last := i == len(brackets)-1
		if b.IncomeMax == nil && !last {
			return fmt.Errorf("%w: unbounded bracket %d is not the highest", ErrInvalidTable, i)
		}
		if b.IncomeMax != nil && *b.IncomeMax <= b.IncomeMin {
			return fmt.Errorf("%w: bracket %d has income_max <= income_min", ErrInvalidTable, i)
		}
		if !last {
			next := brackets[i+1]
			if *b.IncomeMax != next.IncomeMin {
				return fmt.Errorf("%w: bracket %d ends at %v but bracket %d starts at %v", ErrInvalidTable, i, *b.IncomeMax, i+1, next.IncomeMin)
			}
			if next.Rate < b.Rate {
				return fmt.Errorf("%w: rate decreases from bracket %d to %d", ErrInvalidTable, i, i+1)
			}
		}
		if math.Abs(b.TotalTaxPriorBrackets-expectedPrior) > priorTaxTolerance {
			return fmt.Errorf("%w: bracket %d prior tax %v, expected %v", ErrInvalidTable, i, b.TotalTaxPriorBrackets, expectedPrior)
		}
		if b.IncomeMax != nil {
			expectedPrior += (*b.IncomeMax - b.IncomeMin) * b.Rate / 100
		}
	}
	return nil
}

// Lookup returns the first bracket, scanning upward, whose inclusive range holds income.
// An income equal to a shared boundary therefore resolves to the lower bracket.
func (t BracketTable) Lookup(income float64) (Bracket, bool) {
	for _, b := range t.brackets {
		if b.Contains(income) {
			return b, true
		}
	}
	return Bracket{}, false
}

// Brackets returns a copy of the table's brackets in ascending order.
func (t BracketTable) Brackets() []Bracket {
	out := make([]Bracket, len(t.brackets))
	copy(out, t.brackets)
	return out
}

func (t BracketTable) Len() int { return len(t.brackets) }

// PriorTaxTotals computes the cumulative tax of all lower brackets for each bracket of an
// ascending, contiguous list, rounded to cents.
func PriorTaxTotals(brackets []Bracket) []float64 {
	totals := make([]float64, len(brackets))
	var running float64
	for i, b := range brackets {
		totals[i] = math.Round(running*100) / 100
		if b.IncomeMax == nil {
			break
		}
		running += (*b.IncomeMax - b.IncomeMin) * b.Rate / 100
	}
	return totals
}

type DeductionTable struct {
	amounts map[FilingStatus]float64
}

func NewDeductionTable(amounts map[FilingStatus]float64) (DeductionTable, error) {
	copied := make(map[FilingStatus]float64, len(amounts))
	for status, amount := range amounts {
		if amount < 0 || math.IsNaN(amount) {
			return DeductionTable{}, fmt.Errorf("%w: negative deduction for %s", ErrInvalidTable, status)
		}
		copied[status] = amount
	}
	return DeductionTable{amounts: copied}, nil
}

func (d DeductionTable) Amount(status FilingStatus) (float64, bool) {
	amount, ok := d.amounts[status]
	return amount, ok
}

func (d DeductionTable) Amounts() map[FilingStatus]float64 {
	out := make(map[FilingStatus]float64, len(d.amounts))
	for k, v := range d.amounts {
		out[k] = v
	}
	return out
}

// NewTables validates raw records for one jurisdiction and year.
func NewTables(jurisdiction Jurisdiction, year int, brackets []Bracket, deductions map[FilingStatus]float64) (Tables, error) {
	bt, err := NewBracketTable(brackets)
	if err != nil {
		return Tables{}, fmt.Errorf("%s %d brackets: %w", jurisdiction, year, err)
	}
	dt, err := NewDeductionTable(deductions)
	if err != nil {
		return Tables{}, fmt.Errorf("%s %d deductions: %w", jurisdiction, year, err)
	}
	return Tables{Jurisdiction: jurisdiction, Year: year, Brackets: bt, Deductions: dt}, nil
}
