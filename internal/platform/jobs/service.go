// Package jobs runs background maintenance for the tax service.
package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"takehome/internal/domain/tax"
)

const JobTaxReload = "tax_reload"

// Reloader swaps in freshly loaded tax tables.
type Reloader interface {
	Reload(ctx context.Context, store tax.StoreAPI, year int) error
}

type Service struct {
	store    tax.StoreAPI
	target   Reloader
	year     int
	interval time.Duration
	logger   *zap.Logger
}

func New(store tax.StoreAPI, target Reloader, year int, interval time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, target: target, year: year, interval: interval, logger: logger}
}

// Start reloads the tables every interval until ctx is done. A zero interval disables it.
func (s *Service) Start(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	go s.scheduleReloads(ctx)
}

// RunNow performs one reload synchronously.
func (s *Service) RunNow(ctx context.Context) error {
	start := time.Now()
	err := s.target.Reload(ctx, s.store, s.year)
	if err != nil {
		s.logger.Error("job failed", zap.String("jobType", JobTaxReload), zap.Int("year", s.year), zap.Error(err))
		return err
	}
	s.logger.Debug("job completed", zap.String("jobType", JobTaxReload), zap.Duration("duration", time.Since(start)))
	return nil
}

func (s *Service) scheduleReloads(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// a failed reload keeps the previous snapshot serving
			_ = s.RunNow(ctx)
		}
	}
}
