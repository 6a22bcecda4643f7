package commands

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"procsup/modules/core/processes"
	"procsup/modules/platform/eventbus"
	"procsup/modules/platform/logger"
)

const defaultEventLimit = 20

// UsageError reports a command invoked with the wrong arguments
type UsageError struct {
	Usage string
}

func (e *UsageError) Error() string {
	return "Usage: " + e.Usage
}

// describeError renders a command failure as the one-line report shown to the user
func describeError(err error) string {
	var (
		parseErr  *processes.ParseError
		signalErr *processes.SignalError
		spawnErr  *processes.SpawnError
		usageErr  *UsageError
	)

	switch {
	case errors.As(err, &usageErr):
		return usageErr.Error()
	case errors.As(err, &parseErr):
		return fmt.Sprintf("Invalid PID: %s", parseErr.Input)
	case errors.As(err, &signalErr):
		return fmt.Sprintf("Failed to kill process %d: %v", signalErr.PID, signalErr.Err)
	case errors.As(err, &spawnErr):
		return fmt.Sprintf("Fork failed: %v", spawnErr.Err)
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}

// createCommand handles the 'create' command
func (a *AppContext) createCommand(ctx context.Context, args []string) error {
	pid, err := a.Manager.Create(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.Out, "Created process with PID %d\n", pid)
	return nil
}

// listCommand handles the 'list' command
func (a *AppContext) listCommand(ctx context.Context, args []string) error {
	live := a.Manager.List(ctx)
	if len(live) == 0 {
		fmt.Fprintln(a.Out, "No tracked processes")
		return nil
	}

	fmt.Fprintln(a.Out, "Tracked processes:")
	for _, h := range live {
		fmt.Fprintf(a.Out, "- PID %d [alive]\n", h.PID)
	}
	return nil
}

// psCommand handles the 'ps' command
func (a *AppContext) psCommand(ctx context.Context, args []string) error {
	procs, err := a.listSystem(ctx)
	if err != nil {
		return fmt.Errorf("failed to list system processes: %w", err)
	}

	fmt.Fprintln(a.Out, "All system processes:")
	for _, p := range procs {
		fmt.Fprintf(a.Out, "- PID %d [%s]\n", p.PID, p.Name)
	}
	return nil
}

// killCommand handles the 'kill' command
func (a *AppContext) killCommand(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return &UsageError{Usage: "kill <pid>"}
	}

	result, err := a.Manager.Kill(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(a.Out, "Sent SIGKILL to process %d\n", result.PID)
	if result.Cleaned {
		fmt.Fprintf(a.Out, "Process %d killed and cleaned up\n", result.PID)
	} else {
		fmt.Fprintf(a.Out, "Process %d killed\n", result.PID)
	}
	return nil
}

// eventsCommand handles the 'events' command. Numeric arguments set the
// limit, --json prints one JSON object per line, anything else filters by
// event type ("reaped" or "process.reaped").
func (a *AppContext) eventsCommand(ctx context.Context, args []string) error {
	limit := defaultEventLimit
	jsonOutput := false
	var types []eventbus.EventType

	for _, arg := range args {
		if arg == "--json" {
			jsonOutput = true
			continue
		}
		if n, err := strconv.Atoi(arg); err == nil {
			if n <= 0 {
				return fmt.Errorf("invalid limit %q", arg)
			}
			limit = n
			continue
		}
		if !strings.HasPrefix(arg, "process.") {
			arg = "process." + arg
		}
		types = append(types, eventbus.EventType(arg))
	}

	var events []*eventbus.Event
	switch {
	case a.Bus == nil:
	case len(types) > 0:
		events = a.Bus.GetHistoryByType(types, limit)
	default:
		events = a.Bus.GetHistory(limit)
	}
	if len(events) == 0 {
		fmt.Fprintln(a.Out, "No events recorded")
		return nil
	}

	if jsonOutput {
		for _, e := range events {
			data, err := e.JSON()
			if err != nil {
				return fmt.Errorf("failed to encode event: %w", err)
			}
			fmt.Fprintln(a.Out, string(data))
		}
		return nil
	}

	fmt.Fprintln(a.Out, "Recent events:")
	for _, e := range events {
		fmt.Fprintf(a.Out, "  %s  %-22s %s\n", e.Timestamp.Format("15:04:05"), e.Type, formatEventData(e.Data))
	}
	return nil
}

// logLevelCommand shows or changes the level of the running logger
func (a *AppContext) logLevelCommand(ctx context.Context, args []string) error {
	switch len(args) {
	case 0:
		fmt.Fprintf(a.Out, "Log level: %s\n", a.Logger.GetLevel())
		return nil
	case 1:
	default:
		return &UsageError{Usage: "loglevel [debug|info|warn|error]"}
	}

	switch strings.ToLower(args[0]) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level %q", args[0])
	}

	level := logger.ParseLevel(args[0])
	a.Logger.SetLevel(level)
	fmt.Fprintf(a.Out, "Log level set to %s\n", level)
	return nil
}

// helpCommand handles the 'help' command
func (a *AppContext) helpCommand(ctx context.Context, args []string) error {
	if len(args) > 0 {
		a.Registry.PrintCommandHelp(a.Out, args[0])
		return nil
	}

	fmt.Fprintln(a.Out, "Commands:")
	fmt.Fprintln(a.Out)
	a.Registry.PrintCommands(a.Out)
	fmt.Fprintln(a.Out, "Use 'exit' or 'quit' to leave the shell.")
	return nil
}

// formatEventData renders event data as sorted key=value pairs
func formatEventData(data map[string]interface{}) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, data[k]))
	}
	return strings.Join(parts, " ")
}
