package config

import (
	"os"
	"path/filepath"
)

// GetDefaultConfigPath returns the default config file path
func GetDefaultConfigPath() string {
	cwd, err := os.Getwd()
	if err == nil {
		return filepath.Join(cwd, DefaultConfigFileName)
	}

	return DefaultConfigFileName
}

// GetUserConfigDir returns the user's config directory for procsup
func GetUserConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".config", "procsup"), nil
}

// GetHistoryPath returns the readline history path for the shell
func GetHistoryPath(cfg *ShellConfig) string {
	if cfg != nil && cfg.HistoryFile != "" {
		return cfg.HistoryFile
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return historyFileName
	}
	return filepath.Join(homeDir, historyFileName)
}
