package supervisor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// WorkloadCommand is the hidden subcommand a re-executed child runs
const WorkloadCommand = "workload"

// ExecSpawner starts children by executing a binary. By default it
// re-executes the current program into its workload subcommand.
type ExecSpawner struct {
	Path string
	Args []string
	Env  []string
}

// NewWorkloadSpawner returns a spawner that re-executes the running binary
// with the workload subcommand for the given duration
func NewWorkloadSpawner(duration time.Duration) (*ExecSpawner, error) {
	self, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to locate executable: %w", err)
	}

	return &ExecSpawner{
		Path: self,
		Args: []string{WorkloadCommand, "--duration", duration.String()},
	}, nil
}

// Spawn starts the child and hands ownership of its pid to the caller.
// Stdio is left nil so the child gets the null device.
func (s *ExecSpawner) Spawn(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	// Not CommandContext: the child must outlive the request that created it.
	cmd := exec.Command(s.Path, s.Args...)
	if len(s.Env) > 0 {
		cmd.Env = append(os.Environ(), s.Env...)
	}

	if err := cmd.Start(); err != nil {
		return 0, err
	}

	pid := cmd.Process.Pid

	// The supervisor reaps with wait4 itself; drop os/exec's bookkeeping.
	_ = cmd.Process.Release()

	return pid, nil
}
