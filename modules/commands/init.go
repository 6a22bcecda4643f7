package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"procsup/modules/core/processes"
	"procsup/modules/platform/config"
	"procsup/modules/platform/eventbus"
	"procsup/modules/platform/logger"
	"procsup/modules/platform/supervisor"
	"procsup/modules/platform/system"
)

// AppContext holds application-wide context
type AppContext struct {
	Config     *config.Config
	ConfigPath string
	Table      *processes.Table
	Manager    *supervisor.Manager
	Bus        *eventbus.Bus
	Logger     *logger.Logger
	Registry   *Registry
	Out        io.Writer

	listSystem   func(ctx context.Context) ([]system.ProcessInfo, error)
	subscription string
}

// NewAppContext wires the supervisor against the real OS: children re-execute
// this binary into the workload command.
func NewAppContext(cfg *config.Config, configPath string, log *logger.Logger, out io.Writer) (*AppContext, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	spawner, err := supervisor.NewWorkloadSpawner(cfg.Settings.Workload.GetDuration())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workload binary: %w", err)
	}

	bus := eventbus.NewBus()
	manager := supervisor.NewManager(
		processes.NewTable(),
		spawner,
		supervisor.NewProcessControl(),
		system.NewPidChecker(),
		supervisor.WithEventBus(bus),
		supervisor.WithLogger(log),
		supervisor.WithGracePeriod(cfg.Settings.Kill.GetGracePeriod()),
	)

	app := newAppContext(cfg, manager, bus, log, out)
	app.ConfigPath = configPath
	return app, nil
}

func newAppContext(cfg *config.Config, manager *supervisor.Manager, bus *eventbus.Bus, log *logger.Logger, out io.Writer) *AppContext {
	if out == nil {
		out = os.Stdout
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	app := &AppContext{
		Config:     cfg,
		Table:      manager.Table(),
		Manager:    manager,
		Bus:        bus,
		Logger:     log,
		Registry:   NewRegistry(),
		Out:        out,
		listSystem: system.ListProcesses,
	}

	if bus != nil {
		app.subscription = bus.Subscribe(nil, func(e *eventbus.Event) {
			log.WithFields(logger.DEBUG, string(e.Type), e.Data)
		})
	}

	app.registerProcessCommands()
	app.registerShellCommands()
	return app
}

// Close detaches the log sink and waits for in-flight event handlers
func (a *AppContext) Close() {
	if a.Bus == nil {
		return
	}
	if a.subscription != "" {
		a.Bus.Unsubscribe(a.subscription)
		a.subscription = ""
	}
	a.Bus.Wait()
}

// registerProcessCommands registers the process supervision commands
func (a *AppContext) registerProcessCommands() {
	a.Registry.RegisterCommand(&Command{
		Name:        "create",
		Category:    "Processes",
		Description: "Spawn a tracked child process",
		Usage:       "create",
		Examples:    []string{"create"},
		Handler:     a.createCommand,
		Order:       10,
	})

	a.Registry.RegisterCommand(&Command{
		Name:        "list",
		Aliases:     []string{"ls"},
		Category:    "Processes",
		Description: "List tracked processes that are still alive",
		Usage:       "list",
		Examples:    []string{"list"},
		Handler:     a.listCommand,
		Order:       11,
	})

	a.Registry.RegisterCommand(&Command{
		Name:        "kill",
		Category:    "Processes",
		Description: "Send SIGKILL to a process and reap it if it is ours (pid must be positive)",
		Usage:       "kill <pid>",
		Examples: []string{
			"kill 12345",
			"kill 0     (rejected: 0 and negative pids address process groups)",
		},
		Handler: a.killCommand,
		Order:   12,
	})

	a.Registry.RegisterCommand(&Command{
		Name:        "ps",
		Category:    "System",
		Description: "List every process on the system",
		Usage:       "ps",
		Examples:    []string{"ps"},
		Handler:     a.psCommand,
		Order:       20,
	})

	a.Registry.RegisterCommand(&Command{
		Name:        "events",
		Category:    "System",
		Description: "Show recent process lifecycle events",
		Usage:       "events [limit] [type...] [--json]",
		Examples: []string{
			"events",
			"events 5",
			"events reaped pruned",
			"events --json",
		},
		Handler: a.eventsCommand,
		Order:   21,
	})
}

// registerShellCommands registers commands about the shell itself
func (a *AppContext) registerShellCommands() {
	a.Registry.RegisterCommand(&Command{
		Name:        "help",
		Aliases:     []string{"?"},
		Category:    "Shell",
		Description: "Show available commands",
		Usage:       "help [command]",
		Examples: []string{
			"help",
			"help kill",
		},
		Handler: a.helpCommand,
		Order:   90,
	})

	a.Registry.RegisterCommand(&Command{
		Name:        "loglevel",
		Category:    "Shell",
		Description: "Show or change the log level",
		Usage:       "loglevel [level]",
		Examples: []string{
			"loglevel",
			"loglevel debug",
		},
		Handler: a.logLevelCommand,
		Order:   91,
	})
}
