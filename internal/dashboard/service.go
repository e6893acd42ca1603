package dashboard

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKey = "wallet:dashboard:metrics"

// Service serves dashboard metrics through a Redis read-through cache. It
// implements ledger.Invalidator so every committed wallet mutation drops the
// cached snapshot.
type Service struct {
	source Source
	cache  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds a dashboard service. A nil cache disables caching and
// every read goes to the source.
func NewService(source Source, cache *redis.Client, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{source: source, cache: cache, ttl: ttl, logger: logger, now: time.Now}
}

// Metrics returns the current dashboard snapshot, preferring the cached copy.
// Cache failures degrade to a direct source read.
func (s *Service) Metrics(ctx context.Context) (Metrics, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var m Metrics
			if err := json.Unmarshal([]byte(cached), &m); err == nil {
				return m, nil
			}
			s.logger.Warn("discarding undecodable dashboard cache entry", "error", err)
		} else if err != redis.Nil {
			s.logger.Warn("dashboard cache read failed", "error", err)
		}
	}

	m, err := s.source.Collect(ctx, s.now().UTC())
	if err != nil {
		return Metrics{}, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(m); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.ttl).Err(); err != nil {
				s.logger.Warn("dashboard cache write failed", "error", err)
			}
		}
	}
	return m, nil
}

// Invalidate drops the cached snapshot. The ledger calls this after every
// committed mutation so the next dashboard read recomputes.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cacheKey).Err(); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", "error", err)
	}
}
