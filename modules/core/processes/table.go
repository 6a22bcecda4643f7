package processes

import (
	"sync"
)

// LivenessFunc reports whether the process behind a handle still exists
type LivenessFunc func(h ProcessHandle) bool

// Table is the registry of child processes owned by the supervisor.
// Entries keep insertion order so listings are deterministic.
type Table struct {
	mu      sync.Mutex
	handles map[int]*ProcessHandle
	order   []int
}

// NewTable creates an empty process table
func NewTable() *Table {
	return &Table{
		handles: make(map[int]*ProcessHandle),
	}
}

// Insert tracks a newly spawned pid in the running state
func (t *Table) Insert(pid int) (ProcessHandle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.handles[pid]; ok {
		if existing.IsRunning() {
			return ProcessHandle{}, &DuplicateError{PID: pid}
		}
		// The OS handed out a pid we were still holding as pending:
		// the old process is gone, so the stale handle is replaced.
		t.dropLocked(pid)
	}

	h := newHandle(pid)
	t.handles[pid] = h
	t.order = append(t.order, pid)
	return *h, nil
}

// MarkReapPending records that a termination signal was sent to pid
func (t *Table) MarkReapPending(pid int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, ok := t.handles[pid]
	if !ok {
		return &NotFoundError{PID: pid}
	}
	if h.IsRunning() {
		h.State = StateReapPending
	}
	return nil
}

// Remove deletes pid from the table. The returned copy is in the reaped state.
func (t *Table) Remove(pid int) (ProcessHandle, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, ok := t.handles[pid]
	if !ok {
		return ProcessHandle{}, false
	}
	t.dropLocked(pid)

	removed := *h
	removed.State = StateReaped
	return removed, true
}

// Get returns a copy of the handle for pid
func (t *Table) Get(pid int) (ProcessHandle, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, ok := t.handles[pid]
	if !ok {
		return ProcessHandle{}, false
	}
	return *h, true
}

// Len returns the number of tracked entries
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.order)
}

// Snapshot returns all tracked handles in insertion order without consulting the OS
func (t *Table) Snapshot() []ProcessHandle {
	t.mu.Lock()
	defer t.mu.Unlock()

	result := make([]ProcessHandle, 0, len(t.order))
	for _, pid := range t.order {
		result = append(result, *t.handles[pid])
	}
	return result
}

// ListAlive returns the handles for which alive reports true, in insertion
// order. Handles reported dead are removed from the table and returned as pruned.
func (t *Table) ListAlive(alive LivenessFunc) (live []ProcessHandle, pruned []ProcessHandle) {
	// The predicate talks to the OS, so it runs without the lock held.
	for _, h := range t.Snapshot() {
		if alive(h) {
			live = append(live, h)
			continue
		}
		if removed, ok := t.removeIfSame(h); ok {
			pruned = append(pruned, removed)
		}
	}
	return live, pruned
}

// removeIfSame removes h unless its pid now belongs to a different handle
func (t *Table) removeIfSame(h ProcessHandle) (ProcessHandle, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	current, ok := t.handles[h.PID]
	if !ok || current.ID != h.ID {
		return ProcessHandle{}, false
	}
	t.dropLocked(h.PID)

	removed := *current
	removed.State = StateReaped
	return removed, true
}

func (t *Table) dropLocked(pid int) {
	delete(t.handles, pid)
	for i, p := range t.order {
		if p == pid {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}
