package tax

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// Registry is an immutable snapshot of every loaded table, keyed by year and jurisdiction.
type Registry struct {
	defaultYear int
	tables      map[int]map[Jurisdiction]Tables
}

// NewRegistry indexes tables. A duplicate year/jurisdiction pair is rejected.
func NewRegistry(defaultYear int, tables ...Tables) (*Registry, error) {
	r := &Registry{defaultYear: defaultYear, tables: map[int]map[Jurisdiction]Tables{}}
	for _, t := range tables {
		byJurisdiction, ok := r.tables[t.Year]
		if !ok {
			byJurisdiction = map[Jurisdiction]Tables{}
			r.tables[t.Year] = byJurisdiction
		}
		if _, dup := byJurisdiction[t.Jurisdiction]; dup {
			return nil, fmt.Errorf("%w: duplicate tables for %s %d", ErrInvalidTable, t.Jurisdiction, t.Year)
		}
		byJurisdiction[t.Jurisdiction] = t
	}
	return r, nil
}

// LoadRegistry reads every jurisdiction stored for year and validates it.
func LoadRegistry(ctx context.Context, store StoreAPI, year int) (*Registry, error) {
	jurisdictions, err := store.ListJurisdictions(ctx, year)
	if err != nil {
		return nil, err
	}
	if len(jurisdictions) == 0 {
		return nil, fmt.Errorf("%w: no jurisdictions for %d", ErrDataNotFound, year)
	}

	loaded := make([]Tables, 0, len(jurisdictions))
	for _, j := range jurisdictions {
		brackets, err := store.LoadBrackets(ctx, year, j)
		if err != nil {
			return nil, err
		}
		deductions, err := store.LoadDeductions(ctx, year, j)
		if err != nil && !errors.Is(err, ErrDataNotFound) {
			return nil, err
		}
		t, err := NewTables(j, year, brackets, deductions)
		if err != nil {
			return nil, err
		}
		loaded = append(loaded, t)
	}
	return NewRegistry(year, loaded...)
}

func (r *Registry) DefaultYear() int { return r.defaultYear }

func (r *Registry) resolveYear(year int) int {
	if year == 0 {
		return r.defaultYear
	}
	return year
}

// Tables returns the tables for a jurisdiction. Year 0 selects the default year.
func (r *Registry) Tables(year int, jurisdiction Jurisdiction) (Tables, error) {
	year = r.resolveYear(year)
	byJurisdiction, ok := r.tables[year]
	if !ok {
		return Tables{}, fmt.Errorf("%w: no tables for %d", ErrDataNotFound, year)
	}
	t, ok := byJurisdiction[jurisdiction]
	if !ok {
		if jurisdiction.IsFederal() {
			return Tables{}, fmt.Errorf("%w: no federal tables for %d", ErrDataNotFound, year)
		}
		return Tables{}, fmt.Errorf("%w: no tables loaded for %s in %d", ErrUnknownJurisdiction, jurisdiction, year)
	}
	return t, nil
}

func (r *Registry) Years() []int {
	years := make([]int, 0, len(r.tables))
	for y := range r.tables {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Jurisdictions lists the loaded jurisdictions for year, federal first then states by code.
func (r *Registry) Jurisdictions(year int) []Jurisdiction {
	byJurisdiction := r.tables[r.resolveYear(year)]
	out := make([]Jurisdiction, 0, len(byJurisdiction))
	for j := range byJurisdiction {
		out = append(out, j)
	}
	sort.Slice(out, func(i, k int) bool {
		if out[i].IsFederal() != out[k].IsFederal() {
			return out[i].IsFederal()
		}
		return out[i] < out[k]
	})
	return out
}
