package supervisor

import (
	"context"
	"syscall"

	"procsup/modules/core/processes"
)

// Spawner creates a new child process running the placeholder workload
// and returns its pid. The child is independent of the caller from then on.
type Spawner interface {
	Spawn(ctx context.Context) (int, error)
}

// ProcessControl wraps the OS signal and reap primitives
type ProcessControl interface {
	// Signal delivers sig to pid. Any pid is accepted, not only children.
	Signal(pid int, sig syscall.Signal) error
	// Reap collects the exit status of pid without blocking
	Reap(pid int) (processes.ReapOutcome, error)
}

// PidChecker answers whether a pid currently corresponds to a live process
type PidChecker interface {
	Exists(ctx context.Context, pid int) (bool, error)
}

// KillResult describes the outcome of a successful kill
type KillResult struct {
	PID int
	// Reap is the outcome of the last reap attempt
	Reap processes.ReapOutcome
	// Cleaned is true when the exit status was collected
	Cleaned bool
	// Owned is true when the pid was tracked by the supervisor
	Owned bool
}
