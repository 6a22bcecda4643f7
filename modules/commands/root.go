package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"procsup/modules"
	"procsup/modules/platform/config"
	"procsup/modules/platform/logger"
	"procsup/modules/platform/supervisor"
	"procsup/modules/platform/workload"
)

// GlobalFlags holds flags shared by every command
type GlobalFlags struct {
	ConfigPath string
	Verbose    bool
}

// NewRootCmd creates the root command. Without a subcommand it starts the
// interactive shell.
func NewRootCmd() *cobra.Command {
	flags := &GlobalFlags{}

	rootCmd := &cobra.Command{
		Use:   "procsup",
		Short: modules.AppName + " - " + modules.AppDescription,
		Long: `procsup is an interactive shell that spawns, lists and kills child
processes, reaping the ones it owns so that no zombies are left behind.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, flags)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.ConfigPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(flags))
	rootCmd.AddCommand(newWorkloadCmd())

	return rootCmd
}

func runShell(cmd *cobra.Command, flags *GlobalFlags) error {
	if err := config.LoadGlobal(flags.ConfigPath); err != nil {
		return err
	}
	cfg := config.GetGlobal()

	log, err := newLogger(cfg.Settings.Logger, flags.Verbose)
	if err != nil {
		return err
	}
	defer log.Close()
	logger.SetGlobalLogger(log)

	app, err := NewAppContext(cfg, config.GetGlobalPath(), log, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer app.Close()

	log.Debug("config loaded from %s", app.ConfigPath)

	return NewShell(app, cmd.InOrStdin(), cmd.OutOrStdout()).Run(cmd.Context())
}

// newLogger builds the process logger from configuration; verbose forces debug
func newLogger(cfg *config.LoggerConfig, verbose bool) (*logger.Logger, error) {
	if cfg == nil {
		cfg = config.DefaultLoggerConfig()
	}

	level := logger.ParseLevel(cfg.Level)
	if verbose {
		level = logger.DEBUG
	}

	return logger.NewLogger(logger.Options{
		Level:      level,
		Format:     cfg.Format,
		FilePath:   cfg.FilePath,
		MaxSizeMB:  cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		Source:     "procsup",
	})
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", modules.AppName, modules.AppVersion)
			fmt.Fprintf(cmd.OutOrStdout(), "Build: %s\n", modules.BuildHash())
		},
	}
}

// newWorkloadCmd is the body of a spawned child. It is hidden because only
// the supervisor invokes it.
func newWorkloadCmd() *cobra.Command {
	var duration time.Duration

	cmd := &cobra.Command{
		Use:    supervisor.WorkloadCommand,
		Short:  "Run the placeholder child workload",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			ctx, stop := signal.NotifyContext(parent, syscall.SIGTERM, os.Interrupt)
			defer stop()

			err := workload.Sleep(duration)(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().DurationVar(&duration, "duration", workload.DefaultDuration, "how long the workload runs")
	return cmd
}
