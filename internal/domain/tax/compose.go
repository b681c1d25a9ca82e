package tax

// Calculator composes independent federal and state computations over one registry snapshot.
type Calculator struct {
	registry *Registry
	year     int
}

func NewCalculator(registry *Registry, year int) *Calculator {
	return &Calculator{registry: registry, year: registry.resolveYear(year)}
}

func (c *Calculator) Year() int { return c.year }

func (c *Calculator) ComputeFederal(grossIncome float64) (Result, error) {
	tables, err := c.registry.Tables(c.year, Federal)
	if err != nil {
		return Result{}, err
	}
	return ComputeFor(grossIncome, tables)
}

func (c *Calculator) ComputeState(grossIncome float64, state string) (Result, error) {
	tables, err := c.stateTables(state)
	if err != nil {
		return Result{}, err
	}
	return ComputeFor(grossIncome, tables)
}

// ComputeFederalAndState taxes grossIncome once per jurisdiction and nets both taxes out of
// the income. The first failing leg aborts the whole computation.
func (c *Calculator) ComputeFederalAndState(grossIncome float64, state string) (CombinedResult, error) {
	federalTables, err := c.registry.Tables(c.year, Federal)
	if err != nil {
		return CombinedResult{}, err
	}
	stateTables, err := c.stateTables(state)
	if err != nil {
		return CombinedResult{}, err
	}

	federal, err := ComputeFor(grossIncome, federalTables)
	if err != nil {
		return CombinedResult{}, err
	}
	st, err := ComputeFor(grossIncome, stateTables)
	if err != nil {
		return CombinedResult{}, err
	}

	return CombinedResult{
		Year:                 c.year,
		State:                stateTables.Jurisdiction,
		GrossIncome:          grossIncome,
		FederalTaxableIncome: federal.TaxableIncome,
		StateTaxableIncome:   st.TaxableIncome,
		FederalTax:           federal.TaxAmount,
		StateTax:             st.TaxAmount,
		TakehomePay:          grossIncome - federal.TaxAmount - st.TaxAmount,
	}, nil
}

func (c *Calculator) stateTables(state string) (Tables, error) {
	code, err := ParseState(state)
	if err != nil {
		return Tables{}, err
	}
	return c.registry.Tables(c.year, code)
}
