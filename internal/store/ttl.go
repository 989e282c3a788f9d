package store

import (
	"context"
	"log/slog"
	"time"
)

const ttlWorkerInterval = 5 * time.Minute

// CleanupCallback is called after the TTL worker removes checkpoints.
type CleanupCallback func(deleted int64)

// StartTTLWorker runs a background goroutine that periodically removes
// checkpoints idle for longer than ttl.
func StartTTLWorker(ctx context.Context, s CheckpointStore, ttl time.Duration, onCleanup CleanupCallback) {
	startTTLWorker(ctx, s, ttl, ttlWorkerInterval, onCleanup)
}

func startTTLWorker(ctx context.Context, s CheckpointStore, ttl, interval time.Duration, onCleanup CleanupCallback) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		slog.Info("TTL worker started", "interval", interval, "ttl", ttl)

		for {
			select {
			case <-ticker.C:
				sweepExpired(ctx, s, ttl, onCleanup)
			case <-ctx.Done():
				slog.Info("TTL worker shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func sweepExpired(ctx context.Context, s CheckpointStore, ttl time.Duration, onCleanup CleanupCallback) {
	deleted, err := s.CleanupExpired(ctx, ttl)
	if err != nil {
		if ctx.Err() != nil {
			slog.Debug("TTL worker: context canceled during cleanup", "error", err)
			return
		}
		slog.Error("TTL worker failed to clean up checkpoints", "error", err)
		return
	}
	if deleted == 0 {
		return
	}

	slog.Info("TTL worker removed expired checkpoints", "count", deleted)
	if onCleanup != nil {
		onCleanup(deleted)
	}
}
