package supervisor

import (
	"context"
	"errors"
	"strconv"
	"syscall"
	"time"

	"procsup/modules/core/processes"
	"procsup/modules/platform/eventbus"
	"procsup/modules/platform/logger"
)

const eventSource = "supervisor"

// DefaultGracePeriod is the wait between the two reap attempts of a kill
const DefaultGracePeriod = 10 * time.Millisecond

// Manager supervises child processes and keeps the process table in sync with the OS
type Manager struct {
	table       *processes.Table
	spawner     Spawner
	control     ProcessControl
	checker     PidChecker
	bus         *eventbus.Bus
	log         *logger.Logger
	gracePeriod time.Duration
	sleep       func(time.Duration)
}

// Option configures a Manager
type Option func(*Manager)

// WithEventBus publishes lifecycle events to bus
func WithEventBus(bus *eventbus.Bus) Option {
	return func(m *Manager) { m.bus = bus }
}

// WithLogger sets the logger used for defects and debug tracing
func WithLogger(l *logger.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithGracePeriod sets the wait between the two reap attempts of a kill
func WithGracePeriod(d time.Duration) Option {
	return func(m *Manager) { m.gracePeriod = d }
}

// withSleep replaces time.Sleep in tests
func withSleep(fn func(time.Duration)) Option {
	return func(m *Manager) { m.sleep = fn }
}

// NewManager creates a new process manager operating on table
func NewManager(table *processes.Table, spawner Spawner, control ProcessControl, checker PidChecker, opts ...Option) *Manager {
	m := &Manager{
		table:       table,
		spawner:     spawner,
		control:     control,
		checker:     checker,
		gracePeriod: DefaultGracePeriod,
		sleep:       time.Sleep,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = logger.GetGlobalLogger()
	}
	return m
}

// Table returns the process table the manager mutates
func (m *Manager) Table() *processes.Table {
	return m.table
}

// Create spawns a child running the placeholder workload and tracks its pid
func (m *Manager) Create(ctx context.Context) (int, error) {
	pid, err := m.spawner.Spawn(ctx)
	if err != nil {
		m.emit(eventbus.NewEvent(eventbus.EventSpawnFailed).WithData("error", err.Error()))
		return 0, &processes.SpawnError{Err: err}
	}

	handle, err := m.table.Insert(pid)
	if err != nil {
		// The OS never hands out a live pid twice; reaching this is a bug.
		// The new child cannot be tracked, so it must not outlive the call.
		m.log.Error("process table invariant violated: %v", err)
		m.discard(pid)
		return 0, err
	}

	m.log.Debug("spawned child %d (handle %s)", pid, handle.ID)
	m.emit(eventbus.NewEvent(eventbus.EventProcessCreated).
		WithData("pid", pid).
		WithData("handle", handle.ID))

	return pid, nil
}

// List returns the tracked processes that are still alive, in creation
// order. Entries whose process is gone are pruned from the table.
func (m *Manager) List(ctx context.Context) []processes.ProcessHandle {
	live, pruned := m.table.ListAlive(func(h processes.ProcessHandle) bool {
		return m.isAlive(ctx, h.PID)
	})

	for _, h := range pruned {
		m.log.Debug("pruned exited child %d after %s", h.PID, h.Uptime())
		m.emit(eventbus.NewEvent(eventbus.EventProcessPruned).
			WithData("pid", h.PID).
			WithData("handle", h.ID).
			WithData("uptime", h.Uptime().String()))
	}

	return live
}

// isAlive is the liveness predicate used when listing. A child that exited
// on its own stays a zombie until reaped and would still look alive to the
// OS, so a non-blocking reap comes first.
func (m *Manager) isAlive(ctx context.Context, pid int) bool {
	outcome, err := m.control.Reap(pid)
	switch outcome {
	case processes.ReapConfirmedExited:
		return false
	case processes.ReapStillAlive:
		return true
	}

	m.log.Debug("reap of %d not possible (%v), checking existence", pid, err)
	exists, err := m.checker.Exists(ctx, pid)
	if err != nil {
		// keep tracking; the next list checks again
		m.log.Warn("liveness check for %d failed: %v", pid, err)
		return true
	}
	return exists
}

// ParsePID parses a kill argument as a signed decimal pid
func ParsePID(arg string) (int, error) {
	n, err := strconv.ParseInt(arg, 10, 32)
	if err != nil {
		return 0, &processes.ParseError{Input: arg, Err: err}
	}
	// 0 and negative values address process groups in kill(2)
	if n <= 0 {
		return 0, &processes.ParseError{Input: arg, Err: processes.ErrInvalidPID}
	}
	return int(n), nil
}

// Kill parses arg and kills the pid it names. A malformed arg fails before
// any syscall is made.
func (m *Manager) Kill(ctx context.Context, arg string) (KillResult, error) {
	pid, err := ParsePID(arg)
	if err != nil {
		return KillResult{}, err
	}
	return m.KillPID(ctx, pid)
}

// KillPID sends SIGKILL to pid and makes a best-effort attempt to reap it.
// Any pid is accepted. Success is decided by signal delivery alone: reaping
// fails for processes that are not our children, and that is not an error.
func (m *Manager) KillPID(ctx context.Context, pid int) (KillResult, error) {
	if err := m.control.Signal(pid, syscall.SIGKILL); err != nil {
		m.emit(eventbus.NewEvent(eventbus.EventSignalFailed).
			WithData("pid", pid).
			WithData("error", err.Error()))
		return KillResult{}, &processes.SignalError{PID: pid, Err: err}
	}

	result := KillResult{PID: pid}
	if err := m.table.MarkReapPending(pid); err == nil {
		result.Owned = true
	} else {
		var notFound *processes.NotFoundError
		if !errors.As(err, &notFound) {
			m.log.Error("marking %d reap pending: %v", pid, err)
		}
	}

	m.emit(eventbus.NewEvent(eventbus.EventProcessSignaled).
		WithData("pid", pid).
		WithData("signal", syscall.SIGKILL.String()).
		WithData("owned", result.Owned))

	outcome, err := m.control.Reap(pid)
	switch outcome {
	case processes.ReapConfirmedExited:
		result.Cleaned = true
	case processes.ReapStillAlive:
		// signal delivery and termination are not synchronous
		m.sleep(m.gracePeriod)
		outcome, err = m.control.Reap(pid)
	case processes.ReapNotReapable:
		m.log.Debug("pid %d cannot be reaped by this process: %v", pid, err)
	}
	result.Reap = outcome

	if outcome == processes.ReapConfirmedExited {
		event := eventbus.NewEvent(eventbus.EventProcessReaped).
			WithData("pid", pid).
			WithData("owned", result.Owned)
		if h, ok := m.table.Remove(pid); ok {
			m.log.Debug("reaped child %d after %s", pid, h.Uptime())
			event.WithData("uptime", h.Uptime().String())
		}
		m.emit(event)
	}

	return result, nil
}

// discard kills and reaps a child that could not be tracked
func (m *Manager) discard(pid int) {
	if err := m.control.Signal(pid, syscall.SIGKILL); err != nil {
		m.log.Error("killing untracked child %d: %v", pid, err)
		return
	}
	if outcome, _ := m.control.Reap(pid); outcome == processes.ReapStillAlive {
		m.sleep(m.gracePeriod)
		_, _ = m.control.Reap(pid)
	}
}

func (m *Manager) emit(event *eventbus.Event) {
	if m.bus != nil {
		m.bus.Publish(event.WithSource(eventSource))
	}
}
