package python

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Slots bounds how many interpreter processes run at the same time, across
// syntax checks and executions.
type Slots struct {
	sem    *semaphore.Weighted
	size   int64
	inUse  atomic.Int64
	logger *slog.Logger
}

// NewSlots creates a limiter with room for size concurrent processes.
func NewSlots(size int64, logger *slog.Logger) *Slots {
	return &Slots{
		sem:    semaphore.NewWeighted(size),
		size:   size,
		logger: logger,
	}
}

// Acquire blocks until a slot is free or ctx is done. The returned release
// function is idempotent.
func (s *Slots) Acquire(ctx context.Context) (func(), error) {
	if !s.sem.TryAcquire(1) {
		s.logger.Debug("waiting for execution slot", slog.Int64("size", s.size))
		if err := s.sem.Acquire(ctx, 1); err != nil {
			return nil, fmt.Errorf("python: waiting for execution slot: %w", err)
		}
	}
	s.inUse.Add(1)

	var once atomic.Bool
	return func() {
		if once.CompareAndSwap(false, true) {
			s.inUse.Add(-1)
			s.sem.Release(1)
		}
	}, nil
}

// InUse reports the number of processes currently holding a slot.
func (s *Slots) InUse() int64 {
	return s.inUse.Load()
}

// Size reports the configured capacity.
func (s *Slots) Size() int64 {
	return s.size
}
