package report

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/inventra/inventra/internal/ledger"
)

// TurnoverSource computes turnover rows for a window. Satisfied by
// *ledger.Engine.
type TurnoverSource interface {
	ComputeTurnover(from, to time.Time) []ledger.TurnoverRow
}

// Service answers turnover queries, deduplicating concurrent recomputes of
// the same window and caching the result.
type Service struct {
	source TurnoverSource
	cache  *Cache
	logger *slog.Logger
	group  singleflight.Group
}

// NewService wires the reporting service.
func NewService(source TurnoverSource, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{source: source, cache: cache, logger: logger}
}

// Turnover returns rows for [from, to], serving from cache when possible.
func (s *Service) Turnover(ctx context.Context, from, to time.Time) ([]ledger.TurnoverRow, error) {
	key := s.cache.Key(from, to)
	if rows, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		return rows, nil
	} else if err != nil {
		s.logger.Warn("turnover cache read", slog.Any("error", err))
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		rows := s.source.ComputeTurnover(from, to)
		if err := s.cache.Set(ctx, key, rows); err != nil {
			s.logger.Warn("turnover cache write", slog.Any("error", err))
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]ledger.TurnoverRow), nil
}

// Invalidate drops every cached window. Callers invoke it after a mutating
// intent so turnover reads reflect the write immediately instead of after
// the TTL.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.InvalidateAll(ctx)
}

// Warm recomputes and caches the trailing window ending today. Used by the
// background worker.
func (s *Service) Warm(ctx context.Context, days int) error {
	if days <= 0 {
		days = 30
	}
	to := time.Now().UTC().Truncate(24 * time.Hour)
	from := to.AddDate(0, 0, -days)
	key := s.cache.Key(from, to)
	rows := s.source.ComputeTurnover(from, to)
	if err := s.cache.Set(ctx, key, rows); err != nil {
		return err
	}
	s.logger.Info("turnover cache warmed", slog.Int("days", days), slog.Int("rows", len(rows)))
	return nil
}
