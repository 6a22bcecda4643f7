package system

import (
	"context"
	"sort"

	"github.com/shirou/gopsutil/v3/process"
)

// ProcessInfo is one entry of the system-wide process listing
type ProcessInfo struct {
	PID  int32  `json:"pid"`
	Name string `json:"name"`
}

// ListProcesses returns every process visible to the OS, ordered by pid
func ListProcesses(ctx context.Context) ([]ProcessInfo, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]ProcessInfo, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil || name == "" {
			// process may have exited between enumeration and lookup
			name = "unknown"
		}
		result = append(result, ProcessInfo{PID: p.Pid, Name: name})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].PID < result[j].PID
	})

	return result, nil
}

// PidChecker answers whether a pid currently corresponds to a live process
type PidChecker struct{}

// NewPidChecker creates a new pid checker
func NewPidChecker() *PidChecker {
	return &PidChecker{}
}

// Exists reports whether pid names a process that has not terminated.
// Zombies (exited, not yet reaped) count as terminated.
func (p *PidChecker) Exists(ctx context.Context, pid int) (bool, error) {
	if pid <= 0 {
		return false, nil
	}

	exists, err := process.PidExistsWithContext(ctx, int32(pid))
	if err != nil || !exists {
		return false, err
	}

	proc, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		if err == process.ErrorProcessNotRunning {
			return false, nil
		}
		return false, err
	}

	status, err := proc.StatusWithContext(ctx)
	if err != nil {
		// the pid exists; an unreadable status is not evidence of exit
		return true, nil
	}
	for _, s := range status {
		if s == process.Zombie {
			return false, nil
		}
	}
	return true, nil
}
