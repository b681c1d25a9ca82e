package db

import (
	"context"

	"go.uber.org/zap"

	"takehome/internal/domain/tax"
	"takehome/internal/platform/config"
	"takehome/internal/platform/taxdata"
)

// Seed imports the configured tax year from disk when the store has no tables for it yet.
func Seed(ctx context.Context, store tax.StoreAPI, cfg config.Config, logger *zap.Logger) error {
	existing, err := store.ListJurisdictions(ctx, cfg.TaxYear)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Debug("tax tables already seeded", zap.Int("year", cfg.TaxYear), zap.Int("jurisdictions", len(existing)))
		return nil
	}

	imported, err := taxdata.ImportDir(ctx, store, cfg.TaxDataDir, cfg.TaxYear)
	if err != nil {
		return err
	}
	logger.Info("tax tables seeded",
		zap.Int("year", cfg.TaxYear),
		zap.String("dir", cfg.TaxDataDir),
		zap.Int("jurisdictions", len(imported)),
	)
	return nil
}
