package tax

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const defaultRentTimeout = 10 * time.Second

type Service struct {
	registry    atomic.Pointer[Registry]
	rent        RentProvider
	rentTimeout time.Duration
	logger      *zap.Logger
}

type Option func(*Service)

func WithRentTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.rentTimeout = d
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewService(registry *Registry, rent RentProvider, opts ...Option) *Service {
	s := &Service{rent: rent, rentTimeout: defaultRentTimeout, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	s.registry.Store(registry)
	return s
}

// Registry returns the current snapshot. Callers must not assume two calls return the same one.
func (s *Service) Registry() *Registry {
	return s.registry.Load()
}

// Reload builds a new snapshot for year from store and swaps it in. In-flight requests keep
// the snapshot they started with.
func (s *Service) Reload(ctx context.Context, store StoreAPI, year int) error {
	registry, err := LoadRegistry(ctx, store, year)
	if err != nil {
		return fmt.Errorf("reload tax tables: %w", err)
	}
	s.registry.Store(registry)
	s.logger.Info("tax tables reloaded",
		zap.Int("year", year),
		zap.Int("jurisdictions", len(registry.Jurisdictions(year))),
	)
	return nil
}

func (s *Service) calculator(year int) *Calculator {
	return NewCalculator(s.Registry(), year)
}

func (s *Service) Federal(grossIncome float64, year int) (Result, error) {
	result, err := s.calculator(year).ComputeFederal(grossIncome)
	if err != nil {
		return Result{}, err
	}
	s.logResult(Federal, result)
	return result, nil
}

func (s *Service) State(grossIncome float64, state string, year int) (Result, error) {
	result, err := s.calculator(year).ComputeState(grossIncome, state)
	if err != nil {
		return Result{}, err
	}
	s.logResult(Jurisdiction(strings.ToUpper(state)), result)
	return result, nil
}

func (s *Service) Combined(grossIncome float64, state string, year int) (CombinedResult, error) {
	return s.calculator(year).ComputeFederalAndState(grossIncome, state)
}

func (s *Service) Brackets(year int, jurisdiction Jurisdiction) ([]Bracket, error) {
	tables, err := s.Registry().Tables(year, jurisdiction)
	if err != nil {
		return nil, err
	}
	return tables.Brackets.Brackets(), nil
}

func (s *Service) Jurisdictions(year int) []Jurisdiction {
	return s.Registry().Jurisdictions(year)
}

// FetchRent asks the provider for rents under the configured timeout. Any provider failure is
// reported as ErrRentUnavailable.
func (s *Service) FetchRent(ctx context.Context, state, city string) (RentData, error) {
	code, err := ParseState(state)
	if err != nil {
		return RentData{}, err
	}
	city = strings.TrimSpace(city)
	if city == "" {
		return RentData{}, fmt.Errorf("%w: city is required", ErrInvalidArgument)
	}
	if s.rent == nil {
		return RentData{}, fmt.Errorf("%w: no rent provider configured", ErrRentUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, s.rentTimeout)
	defer cancel()

	data, err := s.rent.FetchAverageRent(ctx, code, city)
	if err != nil {
		s.logger.Warn("rent fetch failed", zap.String("state", string(code)), zap.String("city", city), zap.Error(err))
		return RentData{}, fmt.Errorf("%w: %w", ErrRentUnavailable, err)
	}
	return data, nil
}

// ComputeMonthlyTakehome validates the request, computes combined tax, then fetches rent.
// Argument errors are reported before any network call is made.
func (s *Service) ComputeMonthlyTakehome(ctx context.Context, req MonthlyRequest) (RentAdjustedResult, error) {
	if err := validateOccupants(req.Occupants); err != nil {
		return RentAdjustedResult{}, err
	}
	bedrooms, err := ParseBedrooms(req.Bedrooms)
	if err != nil {
		return RentAdjustedResult{}, err
	}
	if strings.TrimSpace(req.City) == "" {
		return RentAdjustedResult{}, fmt.Errorf("%w: city is required", ErrInvalidArgument)
	}

	combined, err := s.Combined(req.GrossIncome, req.State, req.Year)
	if err != nil {
		return RentAdjustedResult{}, err
	}

	rent, err := s.FetchRent(ctx, req.State, req.City)
	if err != nil {
		return RentAdjustedResult{}, err
	}
	return AdjustForRent(combined, rent, bedrooms, req.Occupants)
}

func (s *Service) logResult(j Jurisdiction, result Result) {
	s.logger.Debug("tax computed",
		zap.String("jurisdiction", string(j)),
		zap.Float64("deduction", result.Deduction),
		zap.Float64("taxableIncome", result.TaxableIncome),
		zap.Float64("bracketRate", result.Bracket.Rate),
		zap.Float64("priorBracketTax", result.Bracket.TotalTaxPriorBrackets),
		zap.Float64("tax", result.TaxAmount),
	)
}
