package tax_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"takehome/internal/domain/tax"
)

func openTestStore(t *testing.T) *tax.SQLiteStore {
	t.Helper()
	store, err := tax.OpenSQLite(filepath.Join(t.TempDir(), "nested", "data.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	federal, err := tax.NewTables(tax.Federal, 2023, federalBrackets(), map[tax.FilingStatus]float64{
		tax.FilingStatusSingle:       13850,
		tax.FilingStatusMarriedJoint: 27700,
	})
	require.NoError(t, err)
	require.NoError(t, store.ReplaceTables(ctx, federal))
	require.NoError(t, store.ReplaceTables(ctx, mustTables(t, "GA", 2023, georgiaBrackets(), 5400)))

	brackets, err := store.LoadBrackets(ctx, 2023, tax.Federal)
	require.NoError(t, err)
	assert.Equal(t, federalBrackets(), brackets)

	deductions, err := store.LoadDeductions(ctx, 2023, tax.Federal)
	require.NoError(t, err)
	assert.Equal(t, map[tax.FilingStatus]float64{
		tax.FilingStatusSingle:       13850,
		tax.FilingStatusMarriedJoint: 27700,
	}, deductions)

	jurisdictions, err := store.ListJurisdictions(ctx, 2023)
	require.NoError(t, err)
	assert.ElementsMatch(t, []tax.Jurisdiction{tax.Federal, "GA"}, jurisdictions)

	years, err := store.ListYears(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{2023}, years)
}

func TestSQLiteStoreReplaceIsNotAdditive(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	tables := mustTables(t, "GA", 2023, georgiaBrackets(), 5400)
	require.NoError(t, store.ReplaceTables(ctx, tables))
	require.NoError(t, store.ReplaceTables(ctx, tables))

	brackets, err := store.LoadBrackets(ctx, 2023, "GA")
	require.NoError(t, err)
	assert.Len(t, brackets, len(georgiaBrackets()))
}

func TestSQLiteStoreMissingData(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	_, err := store.LoadBrackets(ctx, 2023, "GA")
	assert.ErrorIs(t, err, tax.ErrDataNotFound)
	_, err = store.LoadDeductions(ctx, 2023, "GA")
	assert.ErrorIs(t, err, tax.ErrDataNotFound)

	_, err = tax.LoadRegistry(ctx, store, 2023)
	assert.ErrorIs(t, err, tax.ErrDataNotFound)
}

func TestLoadRegistryFromStore(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	require.NoError(t, store.ReplaceTables(ctx, mustTables(t, tax.Federal, 2023, federalBrackets(), 13850)))
	require.NoError(t, store.ReplaceTables(ctx, mustTables(t, "GA", 2023, georgiaBrackets(), 5400)))

	registry, err := tax.LoadRegistry(ctx, store, 2023)
	require.NoError(t, err)

	result, err := tax.NewCalculator(registry, 0).ComputeFederalAndState(60000, "GA")
	require.NoError(t, err)
	assert.InDelta(t, 51572.50, result.TakehomePay, 1e-9)
}
