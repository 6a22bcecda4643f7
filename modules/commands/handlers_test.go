package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procsup/modules/core/processes"
	"procsup/modules/platform/config"
	"procsup/modules/platform/eventbus"
	"procsup/modules/platform/logger"
	"procsup/modules/platform/supervisor"
	"procsup/modules/platform/system"
)

// fakeProcs plays the OS for the supervisor: a killed child exits at once
type fakeProcs struct {
	mu       sync.Mutex
	nextPID  int
	spawnErr error
	children map[int]bool
	exited   map[int]bool
	foreign  map[int]bool
}

func newFakeProcs() *fakeProcs {
	return &fakeProcs{
		nextPID:  2000,
		children: make(map[int]bool),
		exited:   make(map[int]bool),
		foreign:  map[int]bool{1: true},
	}
}

func (f *fakeProcs) Spawn(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.spawnErr != nil {
		return 0, f.spawnErr
	}
	f.nextPID++
	f.children[f.nextPID] = true
	return f.nextPID, nil
}

func (f *fakeProcs) Signal(pid int, sig syscall.Signal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.children[pid] {
		f.exited[pid] = true
		return nil
	}
	if f.foreign[pid] {
		return nil
	}
	return syscall.ESRCH
}

func (f *fakeProcs) Reap(pid int) (processes.ReapOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.children[pid] {
		return processes.ReapNotReapable, syscall.ECHILD
	}
	if !f.exited[pid] {
		return processes.ReapStillAlive, nil
	}
	delete(f.children, pid)
	delete(f.exited, pid)
	return processes.ReapConfirmedExited, nil
}

func (f *fakeProcs) Exists(ctx context.Context, pid int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return (f.children[pid] && !f.exited[pid]) || f.foreign[pid], nil
}

func (f *fakeProcs) exit(pid int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exited[pid] = true
}

func quietLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.NewLogger(logger.Options{Level: logger.ERROR, Format: "json", Console: io.Discard})
	require.NoError(t, err)
	return l
}

func newTestApp(t *testing.T, fake *fakeProcs) (*AppContext, *bytes.Buffer) {
	t.Helper()
	bus := eventbus.NewBus()
	manager := supervisor.NewManager(processes.NewTable(), fake, fake, fake,
		supervisor.WithEventBus(bus),
		supervisor.WithGracePeriod(0),
	)

	var out bytes.Buffer
	app := newAppContext(config.DefaultConfig(), manager, bus, quietLogger(t), &out)
	app.listSystem = func(ctx context.Context) ([]system.ProcessInfo, error) {
		return []system.ProcessInfo{{PID: 1, Name: "init"}, {PID: 77, Name: "sshd"}}, nil
	}
	t.Cleanup(app.Close)
	return app, &out
}

// run executes a command line the way the shell does and returns its output
func run(t *testing.T, app *AppContext, out *bytes.Buffer, line string) string {
	t.Helper()
	out.Reset()
	shell := NewShell(app, strings.NewReader(""), out)
	shell.executeCommand(context.Background(), line)
	return out.String()
}

func TestCreateAndListCommands(t *testing.T) {
	app, out := newTestApp(t, newFakeProcs())

	assert.Equal(t, "No tracked processes\n", run(t, app, out, "list"))
	assert.Equal(t, "Created process with PID 2001\n", run(t, app, out, "create"))
	assert.Equal(t, "Created process with PID 2002\n", run(t, app, out, "create"))
	assert.Equal(t, "Tracked processes:\n- PID 2001 [alive]\n- PID 2002 [alive]\n", run(t, app, out, "list"))
	assert.Equal(t, run(t, app, out, "list"), run(t, app, out, "ls"))
}

func TestCreateFailureReport(t *testing.T) {
	fake := newFakeProcs()
	fake.spawnErr = syscall.EAGAIN
	app, out := newTestApp(t, fake)

	assert.Equal(t, "Fork failed: resource temporarily unavailable\n", run(t, app, out, "create"))
	assert.Equal(t, 0, app.Table.Len())
}

func TestKillOwnedChildReport(t *testing.T) {
	app, out := newTestApp(t, newFakeProcs())
	run(t, app, out, "create")

	assert.Equal(t, "Sent SIGKILL to process 2001\nProcess 2001 killed and cleaned up\n", run(t, app, out, "kill 2001"))
	assert.Equal(t, "No tracked processes\n", run(t, app, out, "list"))
}

func TestKillForeignProcessReport(t *testing.T) {
	app, out := newTestApp(t, newFakeProcs())

	assert.Equal(t, "Sent SIGKILL to process 1\nProcess 1 killed\n", run(t, app, out, "kill 1"))
}

func TestKillFailureReports(t *testing.T) {
	app, out := newTestApp(t, newFakeProcs())
	run(t, app, out, "create")

	tests := []struct {
		line     string
		expected string
	}{
		{"kill 999999", "Failed to kill process 999999: no such process\n"},
		{"kill abc", "Invalid PID: abc\n"},
		{"kill -1", "Invalid PID: -1\n"},
		{"kill", "Usage: kill <pid>\n"},
		{"kill 1 2", "Usage: kill <pid>\n"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.expected, run(t, app, out, tt.line))
		})
	}

	// nothing above touched the tracked child
	assert.Equal(t, "Tracked processes:\n- PID 2001 [alive]\n", run(t, app, out, "list"))
}

func TestListDropsSelfExitedChild(t *testing.T) {
	fake := newFakeProcs()
	app, out := newTestApp(t, fake)
	run(t, app, out, "create")
	run(t, app, out, "create")

	fake.exit(2001)

	assert.Equal(t, "Tracked processes:\n- PID 2002 [alive]\n", run(t, app, out, "list"))
}

func TestPsCommand(t *testing.T) {
	app, out := newTestApp(t, newFakeProcs())

	assert.Equal(t, "All system processes:\n- PID 1 [init]\n- PID 77 [sshd]\n", run(t, app, out, "ps"))

	app.listSystem = func(ctx context.Context) ([]system.ProcessInfo, error) {
		return nil, errors.New("proc unavailable")
	}
	assert.Equal(t, "Error: failed to list system processes: proc unavailable\n", run(t, app, out, "ps"))
}

func TestEventsCommand(t *testing.T) {
	app, out := newTestApp(t, newFakeProcs())
	assert.Equal(t, "No events recorded\n", run(t, app, out, "events"))

	run(t, app, out, "create")
	run(t, app, out, "kill 2001")

	report := run(t, app, out, "events")
	assert.True(t, strings.HasPrefix(report, "Recent events:\n"))
	assert.Contains(t, report, "process.created")
	assert.Contains(t, report, "process.signaled")
	assert.Contains(t, report, "process.reaped")
	assert.Contains(t, report, "pid=2001")

	limited := run(t, app, out, "events 1")
	assert.Equal(t, 2, strings.Count(limited, "\n"))
	assert.Contains(t, limited, "process.reaped")

	filtered := run(t, app, out, "events created")
	assert.Equal(t, 2, strings.Count(filtered, "\n"))
	assert.Contains(t, filtered, "process.created")
	assert.Equal(t, filtered, run(t, app, out, "events process.created 5"))

	assert.Equal(t, "No events recorded\n", run(t, app, out, "events pruned"))
	assert.Equal(t, "Error: invalid limit \"0\"\n", run(t, app, out, "events 0"))
}

func TestHelpCommand(t *testing.T) {
	app, out := newTestApp(t, newFakeProcs())

	report := run(t, app, out, "help")
	for _, name := range []string{"create", "list", "kill <pid>", "ps", "events"} {
		assert.Contains(t, report, name)
	}

	assert.Contains(t, run(t, app, out, "help kill"), "Command: kill")
	assert.Contains(t, report, "pid must be positive")
	assert.Contains(t, run(t, app, out, "help kill"), "0 and negative pids address process groups")
}

func TestEventsJSONOutput(t *testing.T) {
	app, out := newTestApp(t, newFakeProcs())
	run(t, app, out, "create")
	run(t, app, out, "kill 2001")

	report := run(t, app, out, "events --json reaped")
	lines := strings.Split(strings.TrimSuffix(report, "\n"), "\n")
	require.Len(t, lines, 1)

	var decoded struct {
		Type string                 `json:"type"`
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &decoded))
	assert.Equal(t, "process.reaped", decoded.Type)
	assert.Equal(t, float64(2001), decoded.Data["pid"])

	all := run(t, app, out, "events --json")
	assert.Equal(t, 3, strings.Count(all, "\n"))
	assert.NotContains(t, all, "Recent events:")
	assert.Equal(t, "No events recorded\n", run(t, app, out, "events --json pruned"))
}

func TestLogLevelCommand(t *testing.T) {
	app, out := newTestApp(t, newFakeProcs())

	assert.Equal(t, "Log level: error\n", run(t, app, out, "loglevel"))
	assert.Equal(t, "Log level set to debug\n", run(t, app, out, "loglevel debug"))
	assert.Equal(t, logger.DEBUG, app.Logger.GetLevel())
	assert.Equal(t, "Log level set to warn\n", run(t, app, out, "loglevel WARNING"))
	assert.Equal(t, "Log level: warn\n", run(t, app, out, "loglevel"))

	assert.Equal(t, "Error: unknown log level \"loud\"\n", run(t, app, out, "loglevel loud"))
	assert.Equal(t, logger.WARN, app.Logger.GetLevel())
	assert.Equal(t, "Usage: loglevel [debug|info|warn|error]\n", run(t, app, out, "loglevel info debug"))
}

func TestUnknownCommand(t *testing.T) {
	app, out := newTestApp(t, newFakeProcs())

	assert.Equal(t, "Unknown command: frobnicate\n", run(t, app, out, "frobnicate"))
}

func TestDescribeError(t *testing.T) {
	wrapped := errors.New("boom")
	assert.Equal(t, "Error: boom", describeError(wrapped))
	assert.Equal(t, "Invalid PID: 1x", describeError(&processes.ParseError{Input: "1x", Err: processes.ErrInvalidPID}))
	assert.Equal(t, "Failed to kill process 7: operation not permitted",
		describeError(&processes.SignalError{PID: 7, Err: syscall.EPERM}))
}
