package store

import (
	"context"
	"log/slog"
	"time"
)

const sweepInterval = 15 * time.Minute

// StartSessionSweeper runs a background goroutine that periodically removes
// planning sessions idle longer than ttl. It exits when ctx is canceled.
func StartSessionSweeper(ctx context.Context, repo Repository, ttl time.Duration) {
	ticker := time.NewTicker(sweepInterval)
	go func() {
		defer ticker.Stop()
		slog.Info("Session sweeper started", "interval", sweepInterval, "ttl", ttl)

		for {
			select {
			case <-ticker.C:
				deleted, err := repo.CleanupExpiredSessions(ctx, ttl)
				if err != nil {
					slog.Error("Session sweeper failed", "error", err)
					continue
				}
				if deleted > 0 {
					slog.Info("Session sweeper removed expired sessions", "count", deleted)
				}
			case <-ctx.Done():
				slog.Info("Session sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}
