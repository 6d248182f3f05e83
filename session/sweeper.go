package session

import (
	"context"
	"errors"
	"time"

	"docqa/store"

	"go.uber.org/zap"
)

// Sweeper periodically deletes the collections of expired sessions. A
// registry entry is only evicted once its collection is confirmed gone; a
// transient delete failure leaves the entry in place so the next tick
// retries it instead of orphaning the collection.
type Sweeper struct {
	registry *Registry
	store    store.VectorStore
	interval time.Duration
	ttl      time.Duration
	logger   *zap.Logger
}

func NewSweeper(registry *Registry, st store.VectorStore, interval, ttl time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		registry: registry,
		store:    st,
		interval: interval,
		ttl:      ttl,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info("session sweeper started",
		zap.Duration("interval", s.interval),
		zap.Duration("ttl", s.ttl))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("session sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	expired := s.registry.Expired(s.ttl, time.Now())
	if len(expired) == 0 {
		return
	}
	s.logger.Info("sweeping expired sessions", zap.Int("count", len(expired)))

	for _, id := range expired {
		err := s.store.DeleteCollection(ctx, id)
		if err != nil && !errors.Is(err, store.ErrCollectionNotFound) {
			// Keep the entry registered; the next tick retries.
			s.logger.Warn("failed to delete expired collection",
				zap.String("session_id", id.String()),
				zap.Error(err))
			continue
		}
		if errors.Is(err, store.ErrCollectionNotFound) {
			s.logger.Warn("expired collection already absent",
				zap.String("session_id", id.String()))
		}
		s.registry.Remove(id)
	}
}
