package tax

import "context"

type StoreAPI interface {
	LoadBrackets(ctx context.Context, year int, jurisdiction Jurisdiction) ([]Bracket, error)
	LoadDeductions(ctx context.Context, year int, jurisdiction Jurisdiction) (map[FilingStatus]float64, error)
	ListJurisdictions(ctx context.Context, year int) ([]Jurisdiction, error)
	ListYears(ctx context.Context) ([]int, error)
	ReplaceTables(ctx context.Context, tables Tables) error
}
