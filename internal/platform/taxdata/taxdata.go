// Package taxdata reads per-year bracket and deduction files and imports them into a store.
//
// A data directory holds one sub-directory per tax year. Inside it, Fed_Tax.json carries the
// federal tables and <ST>_Tax.json the tables of state ST:
//
//	{
//	  "tax_brackets": [
//	    {"rate": 10, "income_min": 0, "income_max": 11000, "total_tax_prior_brackets": 0},
//	    ...
//	  ],
//	  "standard_deduction": {"single": 13850, "married_filing_jointly": 27700}
//	}
package taxdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"takehome/internal/domain/tax"
)

const (
	federalFile = "Fed_Tax.json"
	fileSuffix  = "_Tax.json"
)

type File struct {
	TaxBrackets       []FileBracket      `json:"tax_brackets"`
	StandardDeduction map[string]float64 `json:"standard_deduction"`
}

type FileBracket struct {
	Rate                  float64  `json:"rate"`
	IncomeMin             float64  `json:"income_min"`
	IncomeMax             *float64 `json:"income_max"`
	TotalTaxPriorBrackets *float64 `json:"total_tax_prior_brackets,omitempty"`
}

// Decode parses a tax file. Brackets without a prior total get one computed.
func Decode(data []byte) (File, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return File{}, err
	}
	if len(f.TaxBrackets) == 0 {
		return File{}, errors.New("tax_brackets is empty")
	}
	missing := false
	for _, b := range f.TaxBrackets {
		if b.TotalTaxPriorBrackets == nil {
			missing = true
			break
		}
	}
	if missing {
		f.TaxBrackets = RecomputePriorTax(f.TaxBrackets)
	}
	return f, nil
}

// RecomputePriorTax returns brackets sorted by income_min with every prior total recomputed.
func RecomputePriorTax(brackets []FileBracket) []FileBracket {
	out := make([]FileBracket, len(brackets))
	copy(out, brackets)
	sort.SliceStable(out, func(i, j int) bool { return out[i].IncomeMin < out[j].IncomeMin })

	totals := tax.PriorTaxTotals(toBrackets(out))
	for i := range out {
		total := totals[i]
		out[i].TotalTaxPriorBrackets = &total
	}
	return out
}

func toBrackets(in []FileBracket) []tax.Bracket {
	out := make([]tax.Bracket, len(in))
	for i, b := range in {
		out[i] = tax.Bracket{Rate: b.Rate, IncomeMin: b.IncomeMin, IncomeMax: b.IncomeMax}
		if b.TotalTaxPriorBrackets != nil {
			out[i].TotalTaxPriorBrackets = *b.TotalTaxPriorBrackets
		}
	}
	return out
}

// Tables validates the file contents for one jurisdiction and year.
func (f File) Tables(jurisdiction tax.Jurisdiction, year int) (tax.Tables, error) {
	deductions := make(map[tax.FilingStatus]float64, len(f.StandardDeduction))
	for status, amount := range f.StandardDeduction {
		deductions[tax.FilingStatus(strings.ToLower(strings.TrimSpace(status)))] = amount
	}
	return tax.NewTables(jurisdiction, year, toBrackets(f.TaxBrackets), deductions)
}

// LoadFile reads one tax file.
func LoadFile(path string, jurisdiction tax.Jurisdiction, year int) (tax.Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return tax.Tables{}, fmt.Errorf("%w: %s", tax.ErrDataNotFound, path)
		}
		return tax.Tables{}, err
	}
	f, err := Decode(data)
	if err != nil {
		return tax.Tables{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return f.Tables(jurisdiction, year)
}

// JurisdictionFromFilename maps Fed_Tax.json to federal and GA_Tax.json to GA.
func JurisdictionFromFilename(name string) (tax.Jurisdiction, bool) {
	if name == federalFile {
		return tax.Federal, true
	}
	if !strings.HasSuffix(name, fileSuffix) {
		return "", false
	}
	j, err := tax.ParseState(strings.TrimSuffix(name, fileSuffix))
	if err != nil {
		return "", false
	}
	return j, true
}

// LoadDir reads every tax file of root/<year>. The federal file is required; unrecognised
// files are skipped.
func LoadDir(root string, year int) ([]tax.Tables, error) {
	dir := filepath.Join(root, strconv.Itoa(year))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: no data directory for %d", tax.ErrDataNotFound, year)
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var out []tax.Tables
	haveFederal := false
	for _, name := range names {
		j, ok := JurisdictionFromFilename(name)
		if !ok {
			continue
		}
		tables, err := LoadFile(filepath.Join(dir, name), j, year)
		if err != nil {
			return nil, err
		}
		if j.IsFederal() {
			haveFederal = true
		}
		out = append(out, tables)
	}
	if !haveFederal {
		return nil, fmt.Errorf("%w: %s missing for %d", tax.ErrDataNotFound, federalFile, year)
	}
	return out, nil
}

// Import writes each jurisdiction's tables through store, replacing what was there.
func Import(ctx context.Context, store tax.StoreAPI, tables []tax.Tables) error {
	for _, t := range tables {
		if err := store.ReplaceTables(ctx, t); err != nil {
			return fmt.Errorf("import %s %d: %w", t.Jurisdiction, t.Year, err)
		}
	}
	return nil
}

// ImportDir loads root/<year> and imports it, returning the imported jurisdictions.
func ImportDir(ctx context.Context, store tax.StoreAPI, root string, year int) ([]tax.Jurisdiction, error) {
	tables, err := LoadDir(root, year)
	if err != nil {
		return nil, err
	}
	if err := Import(ctx, store, tables); err != nil {
		return nil, err
	}
	out := make([]tax.Jurisdiction, len(tables))
	for i, t := range tables {
		out[i] = t.Jurisdiction
	}
	return out, nil
}
