package app

import (
	"context"
	"time"
)

// PingWithRetry exposes pingWithRetry to the external test package.
func PingWithRetry(ctx context.Context, db Pinger, attempts int, delay time.Duration) error {
	return pingWithRetry(ctx, db, attempts, delay)
}
