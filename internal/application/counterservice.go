package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/hitcounter/internal/domain/model"
	"github.com/ericfisherdev/hitcounter/internal/domain/port/driven"
)

// CounterService records hits in the counter table. It holds no state between
// calls; every Record acquires its own connection from the injected pool.
type CounterService struct {
	pool   driven.ConnPool
	logger *slog.Logger
}

// NewCounterService creates a CounterService backed by the given pool.
func NewCounterService(pool driven.ConnPool, logger *slog.Logger) *CounterService {
	return &CounterService{
		pool:   pool,
		logger: logger,
	}
}

// Record appends one row to the counter table and returns the resulting row
// count. The connection is released on every path once acquired. No row is
// written when acquisition fails.
func (s *CounterService) Record(ctx context.Context) (count model.Count, err error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer func() {
		if releaseErr := conn.Release(); releaseErr != nil {
			s.logger.Error("failed to release connection", "error", releaseErr)
			if err == nil {
				err = fmt.Errorf("release connection: %w", releaseErr)
				count = 0
			}
		}
	}()

	hit, err := conn.InsertHit(ctx)
	if err != nil {
		return 0, fmt.Errorf("insert hit: %w", err)
	}

	count, err = conn.CountHits(ctx)
	if err != nil {
		return 0, fmt.Errorf("count hits: %w", err)
	}

	s.logger.Debug("hit recorded", "id", hit.ID, "ts", hit.TS, "count", count)
	return count, nil
}
