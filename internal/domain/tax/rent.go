package tax

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

//go:generate mockgen -destination=../../mocks/mock_rent_provider.go -package=mocks takehome/internal/domain/tax RentProvider

// RentProvider returns average monthly rents by bedroom category for a city.
type RentProvider interface {
	FetchAverageRent(ctx context.Context, state Jurisdiction, city string) (RentData, error)
}

func validateOccupants(occupants int) error {
	if occupants <= 0 {
		return fmt.Errorf("%w: occupants must be a positive integer, got %d", ErrInvalidArgument, occupants)
	}
	return nil
}

// AdjustForRent splits the rent for bedrooms across occupants and subtracts one share from the
// monthly take-home. Only the monthly salary is rounded to cents.
func AdjustForRent(combined CombinedResult, rent RentData, bedrooms Bedrooms, occupants int) (RentAdjustedResult, error) {
	if err := validateOccupants(occupants); err != nil {
		return RentAdjustedResult{}, err
	}
	avg, ok := rent.AvgRent[bedrooms]
	if !ok {
		return RentAdjustedResult{}, fmt.Errorf("%w: no average rent for %s bedrooms in %q", ErrRentUnavailable, bedrooms, rent.Location)
	}

	monthlySalary := roundCents(combined.TakehomePay / 12)
	rentPerPerson := avg / float64(occupants)
	return RentAdjustedResult{
		Combined:             combined,
		Bedrooms:             bedrooms,
		Occupants:            occupants,
		Location:             rent.Location,
		MonthlySalary:        monthlySalary,
		MonthlyRentPerPerson: rentPerPerson,
		MonthlyTakehome:      monthlySalary - rentPerPerson,
	}, nil
}

func roundCents(value float64) float64 {
	rounded, _ := decimal.NewFromFloat(value).Round(2).Float64()
	return rounded
}
