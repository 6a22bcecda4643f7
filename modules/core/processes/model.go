package processes

import (
	"time"

	"github.com/google/uuid"
)

// LifecycleState represents the lifecycle state of a tracked process
type LifecycleState string

const (
	StateRunning     LifecycleState = "running"
	StateReapPending LifecycleState = "reap_pending"
	StateReaped      LifecycleState = "reaped"
)

// ProcessHandle represents one child process created by the supervisor
type ProcessHandle struct {
	ID        string         `json:"id"`
	PID       int            `json:"pid"`
	State     LifecycleState `json:"state"`
	CreatedAt time.Time      `json:"created_at"`
}

// newHandle creates a running handle for pid. The ID distinguishes a pid
// reused by the OS from the handle that previously held it.
func newHandle(pid int) *ProcessHandle {
	return &ProcessHandle{
		ID:        uuid.NewString(),
		PID:       pid,
		State:     StateRunning,
		CreatedAt: time.Now(),
	}
}

// IsRunning returns true if no termination signal has been sent yet
func (h ProcessHandle) IsRunning() bool {
	return h.State == StateRunning
}

// Uptime returns how long ago the handle was created
func (h ProcessHandle) Uptime() time.Duration {
	return time.Since(h.CreatedAt).Round(time.Second)
}

// ReapOutcome is the result of a non-blocking reap attempt
type ReapOutcome int

const (
	// ReapConfirmedExited means the exit status was collected
	ReapConfirmedExited ReapOutcome = iota
	// ReapStillAlive means the process has not terminated yet
	ReapStillAlive
	// ReapNotReapable means the pid cannot be reaped by this process (not a child, already reaped)
	ReapNotReapable
)

func (o ReapOutcome) String() string {
	switch o {
	case ReapConfirmedExited:
		return "confirmed_exited"
	case ReapStillAlive:
		return "still_alive"
	case ReapNotReapable:
		return "not_reapable"
	default:
		return "unknown"
	}
}
