//go:build !windows

package supervisor

import (
	"errors"
	"syscall"

	"golang.org/x/sys/unix"

	"procsup/modules/core/processes"
)

// unixControl implements ProcessControl with kill(2) and wait4(2)
type unixControl struct{}

// NewProcessControl returns the platform ProcessControl
func NewProcessControl() ProcessControl {
	return unixControl{}
}

// Signal sends a signal to a process on Unix
func (unixControl) Signal(pid int, sig syscall.Signal) error {
	return unix.Kill(pid, sig)
}

// Reap performs a WNOHANG wait on pid
func (unixControl) Reap(pid int) (processes.ReapOutcome, error) {
	var status unix.WaitStatus
	for {
		wpid, err := unix.Wait4(pid, &status, unix.WNOHANG, nil)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			// ECHILD: not our child, or already reaped
			return processes.ReapNotReapable, err
		}
		if wpid == 0 {
			return processes.ReapStillAlive, nil
		}
		return processes.ReapConfirmedExited, nil
	}
}
