package core

// janitor.go expires stored runs in the background.
//
// Runs hold both datasets' rows and every result in memory, so they are
// dropped once their TTL passes. Lookups already treat expired runs as
// missing; the janitor reclaims the memory.

import (
	"context"
	"log/slog"
	"time"
)

// DefaultJanitorInterval is how often expired runs are swept when no interval is given.
const DefaultJanitorInterval = time.Minute

// StartJanitor sweeps expired runs every interval until ctx is cancelled.
// It blocks, so callers run it in its own goroutine.
func (s *Service) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultJanitorInterval
	}
	slog.Info("run janitor started",
		"interval", interval.String(),
		"run_ttl", s.opts.RunTTL.String(),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("run janitor stopped")
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// sweep performs one expiry pass.
func (s *Service) sweep() {
	start := time.Now()
	expired := s.ExpireRuns()
	if expired == 0 {
		slog.Debug("run janitor found nothing to expire", "runs_active", s.RunCount())
		return
	}
	slog.Info("expired reconciliation runs",
		"runs_expired", expired,
		"runs_active", s.RunCount(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
