package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"procsup/modules/platform/config"
)

func newConfigCmd(flags *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the procsup configuration file",
	}

	cmd.AddCommand(newConfigInitCmd(flags))
	cmd.AddCommand(newConfigShowCmd(flags))
	return cmd
}

// newConfigInitCmd writes a default configuration file
func newConfigInitCmd(flags *GlobalFlags) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := flags.ConfigPath
			if path == "" {
				dir, err := config.GetUserConfigDir()
				if err != nil {
					return fmt.Errorf("failed to locate config directory: %w", err)
				}
				path = filepath.Join(dir, config.DefaultConfigFileName)
			}

			loader := config.NewLoader(path)
			if loader.Exists() && !force {
				return fmt.Errorf("configuration already exists at %s (use --force to overwrite)", path)
			}

			cfg := config.DefaultConfig()
			if err := loader.Save(cfg); err != nil {
				return err
			}
			config.SetGlobal(cfg, path)

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", loader.GetPath())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing configuration")
	return cmd
}

// newConfigShowCmd prints the effective configuration, defaults included
func newConfigShowCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadGlobal(flags.ConfigPath); err != nil {
				return err
			}

			data, err := yaml.Marshal(config.GetGlobal())
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", config.GetGlobalPath(), data)
			return nil
		},
	}
}
