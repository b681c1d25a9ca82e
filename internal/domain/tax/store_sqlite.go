package tax

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // register sqlite driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS tax_brackets (
    id                       INTEGER PRIMARY KEY AUTOINCREMENT,
    jurisdiction             TEXT    NOT NULL,
    tax_year                 INTEGER NOT NULL,
    rate                     REAL    NOT NULL,
    income_min               REAL    NOT NULL,
    income_max               REAL,
    total_tax_prior_brackets REAL    NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_tax_brackets_lookup ON tax_brackets(tax_year, jurisdiction);

CREATE TABLE IF NOT EXISTS standard_deductions (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    jurisdiction  TEXT    NOT NULL,
    tax_year      INTEGER NOT NULL,
    filing_status TEXT    NOT NULL,
    amount        REAL    NOT NULL,
    UNIQUE (tax_year, jurisdiction, filing_status)
);
`

// SQLiteStore keeps tax tables in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

var _ StoreAPI = (*SQLiteStore)(nil)

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) LoadBrackets(ctx context.Context, year int, jurisdiction Jurisdiction) ([]Bracket, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rate, income_min, income_max, total_tax_prior_brackets
		FROM tax_brackets
		WHERE tax_year = ? AND jurisdiction = ?
		ORDER BY income_min`, year, string(jurisdiction))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var brackets []Bracket
	for rows.Next() {
		var b Bracket
		var upper sql.NullFloat64
		if err := rows.Scan(&b.Rate, &b.IncomeMin, &upper, &b.TotalTaxPriorBrackets); err != nil {
			return nil, err
		}
		if upper.Valid {
			v := upper.Float64
			b.IncomeMax = &v
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

func (s *SQLiteStore) LoadDeductions(ctx context.Context, year int, jurisdiction Jurisdiction) (map[FilingStatus]float64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT filing_status, amount
		FROM standard_deductions
		WHERE tax_year = ? AND jurisdiction = ?`, year, string(jurisdiction))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

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

func (s *SQLiteStore) ListJurisdictions(ctx context.Context, year int) ([]Jurisdiction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT jurisdiction FROM tax_brackets WHERE tax_year = ? ORDER BY jurisdiction`, year)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

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

func (s *SQLiteStore) ListYears(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT tax_year FROM tax_brackets ORDER BY tax_year`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

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

func (s *SQLiteStore) ReplaceTables(ctx context.Context, tables Tables) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	j := string(tables.Jurisdiction)
	if _, err := tx.ExecContext(ctx, `DELETE FROM tax_brackets WHERE tax_year = ? AND jurisdiction = ?`, tables.Year, j); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM standard_deductions WHERE tax_year = ? AND jurisdiction = ?`, tables.Year, j); err != nil {
		return err
	}

	insertBracket, err := tx.PrepareContext(ctx, `
		INSERT INTO tax_brackets (jurisdiction, tax_year, rate, income_min, income_max, total_tax_prior_brackets)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = insertBracket.Close() }()
	for _, b := range tables.Brackets.Brackets() {
		var upper sql.NullFloat64
		if b.IncomeMax != nil {
			upper = sql.NullFloat64{Float64: *b.IncomeMax, Valid: true}
		}
		if _, err := insertBracket.ExecContext(ctx, j, tables.Year, b.Rate, b.IncomeMin, upper, b.TotalTaxPriorBrackets); err != nil {
			return fmt.Errorf("insert bracket: %w", err)
		}
	}

	for status, amount := range tables.Deductions.Amounts() {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO standard_deductions (jurisdiction, tax_year, filing_status, amount)
			VALUES (?, ?, ?, ?)`, j, tables.Year, string(status), amount); err != nil {
			return fmt.Errorf("insert deduction: %w", err)
		}
	}

	return tx.Commit()
}
