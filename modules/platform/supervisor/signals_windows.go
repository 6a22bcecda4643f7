//go:build windows

package supervisor

import (
	"errors"
	"syscall"

	"procsup/modules/core/processes"
)

var errUnsupported = errors.New("signals and reaping are not supported on windows")

// windowsControl reports every operation as unsupported
type windowsControl struct{}

// NewProcessControl returns the platform ProcessControl
func NewProcessControl() ProcessControl {
	return windowsControl{}
}

func (windowsControl) Signal(pid int, sig syscall.Signal) error {
	return errUnsupported
}

func (windowsControl) Reap(pid int) (processes.ReapOutcome, error) {
	return processes.ReapNotReapable, errUnsupported
}
