// Package workload holds the bodies run by spawned child processes.
package workload

import (
	"context"
	"time"
)

// DefaultDuration is how long the placeholder workload runs
const DefaultDuration = 30 * time.Second

// Workload is the body of a spawned process. A nil return means the
// process should exit with success status.
type Workload func(ctx context.Context) error

// Sleep returns a workload that blocks for d, or until ctx is done
func Sleep(d time.Duration) Workload {
	return func(ctx context.Context) error {
		if d <= 0 {
			return nil
		}

		timer := time.NewTimer(d)
		defer timer.Stop()

		select {
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
