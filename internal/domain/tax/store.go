package tax

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store reads and writes tax tables in Postgres.
type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

var _ StoreAPI = (*Store)(nil)

func (s *Store) LoadBrackets(ctx context.Context, year int, jurisdiction Jurisdiction) ([]Bracket, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT rate, income_min, income_max, total_tax_prior_brackets
    FROM tax_brackets
    WHERE tax_year = $1 AND jurisdiction = $2
    ORDER BY income_min
  `, year, string(jurisdiction))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var brackets []Bracket
	for rows.Next() {
		var b Bracket
		if err := rows.Scan(&b.Rate, &b.IncomeMin, &b.IncomeMax, &b.TotalTaxPriorBrackets); err != nil {
			return nil, err
		}
		brackets = append(brackets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(brackets) == 0 {
		return nil, fmt.Errorf("%w: brackets for %s %d", ErrDataNotFound, jurisdiction, year)
	}
	return brackets, nil
}

func (s *Store) LoadDeductions(ctx context.Context, year int, jurisdiction Jurisdiction) (map[FilingStatus]float64, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT filing_status, amount
    FROM standard_deductions
    WHERE tax_year = $1 AND jurisdiction = $2
  `, year, string(jurisdiction))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	deductions := map[FilingStatus]float64{}
	for rows.Next() {
		var status string
		var amount float64
		if err := rows.Scan(&status, &amount); err != nil {
			return nil, err
		}
		deductions[FilingStatus(status)] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(deductions) == 0 {
		return nil, fmt.Errorf("%w: deductions for %s %d", ErrDataNotFound, jurisdiction, year)
	}
	return deductions, nil
}

func (s *Store) ListJurisdictions(ctx context.Context, year int) ([]Jurisdiction, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT DISTINCT jurisdiction
    FROM tax_brackets
    WHERE tax_year = $1
    ORDER BY jurisdiction
  `, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Jurisdiction
	for rows.Next() {
		var j string
		if err := rows.Scan(&j); err != nil {
			return nil, err
		}
		out = append(out, Jurisdiction(j))
	}
	return out, rows.Err()
}

func (s *Store) ListYears(ctx context.Context) ([]int, error) {
	rows, err := s.DB.Query(ctx, `SELECT DISTINCT tax_year FROM tax_brackets ORDER BY tax_year`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, err
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

// ReplaceTables swaps the stored rows for one jurisdiction and year in a single transaction.
func (s *Store) ReplaceTables(ctx context.Context, tables Tables) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	j := string(tables.Jurisdiction)
	if _, err := tx.Exec(ctx, "DELETE FROM tax_brackets WHERE tax_year = $1 AND jurisdiction = $2", tables.Year, j); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, "DELETE FROM standard_deductions WHERE tax_year = $1 AND jurisdiction = $2", tables.Year, j); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, b := range tables.Brackets.Brackets() {
		batch.Queue(`
      INSERT INTO tax_brackets (jurisdiction, tax_year, rate, income_min, income_max, total_tax_prior_brackets)
      VALUES ($1,$2,$3,$4,$5,$6)
    `, j, tables.Year, b.Rate, b.IncomeMin, b.IncomeMax, b.TotalTaxPriorBrackets)
	}
	for status, amount := range tables.Deductions.Amounts() {
		batch.Queue(`
      INSERT INTO standard_deductions (jurisdiction, tax_year, filing_status, amount)
      VALUES ($1,$2,$3,$4)
    `, j, tables.Year, string(status), amount)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert %s %d tables: %w", j, tables.Year, err)
	}

	return tx.Commit(ctx)
}
