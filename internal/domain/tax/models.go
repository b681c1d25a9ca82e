package tax

type Bracket struct {
	Rate                  float64  `json:"rate"`
	IncomeMin             float64  `json:"incomeMin"`
	IncomeMax             *float64 `json:"incomeMax"`
	TotalTaxPriorBrackets float64  `json:"totalTaxPriorBrackets"`
}

func (b Bracket) Unbounded() bool { return b.IncomeMax == nil }

// Contains reports whether income falls in [IncomeMin, IncomeMax], both ends inclusive.
func (b Bracket) Contains(income float64) bool {
	if income < b.IncomeMin {
		return false
	}
	return b.IncomeMax == nil || income <= *b.IncomeMax
}

type Tables struct {
	Jurisdiction Jurisdiction
	Year         int
	Brackets     BracketTable
	Deductions   DeductionTable
}

type Result struct {
	GrossIncome   float64 `json:"income"`
	TaxableIncome float64 `json:"taxableIncome"`
	TaxAmount     float64 `json:"taxAmount"`
	TakehomePay   float64 `json:"takehomePay"`
	Deduction     float64 `json:"deduction"`
	Bracket       Bracket `json:"bracket"`
}

type CombinedResult struct {
	Year                 int          `json:"year"`
	State                Jurisdiction `json:"state"`
	GrossIncome          float64      `json:"income"`
	FederalTaxableIncome float64      `json:"federalTaxableIncome"`
	StateTaxableIncome   float64      `json:"stateTaxableIncome"`
	FederalTax           float64      `json:"federalTax"`
	StateTax             float64      `json:"stateTax"`
	TakehomePay          float64      `json:"takehomePay"`
}

type RentData struct {
	AvgRent  map[Bedrooms]float64 `json:"avgRentForBedrooms"`
	Location string               `json:"location"`
}

type RentAdjustedResult struct {
	Combined             CombinedResult `json:"combined"`
	Bedrooms             Bedrooms       `json:"bedrooms"`
	Occupants            int            `json:"occupants"`
	Location             string         `json:"location,omitempty"`
	MonthlySalary        float64        `json:"monthlySalary"`
	MonthlyRentPerPerson float64        `json:"monthlyRentPerPerson"`
	MonthlyTakehome      float64        `json:"monthlyTakehome"`
}

type MonthlyRequest struct {
	GrossIncome float64
	State       string
	City        string
	Bedrooms    string
	Occupants   int
	Year        int
}
