package config

import (
	"time"
)

const (
	defaultWorkloadDuration = 30 * time.Second
	defaultGracePeriod      = 10 * time.Millisecond
	maxGracePeriod          = 5 * time.Second
)

// Config represents the main configuration
type Config struct {
	Version  string    `yaml:"version"`
	Settings *Settings `yaml:"settings"`
}

// Settings represents global application settings
type Settings struct {
	Workload *WorkloadConfig `yaml:"workload,omitempty" json:"workload,omitempty"`
	Kill     *KillConfig     `yaml:"kill,omitempty" json:"kill,omitempty"`
	Logger   *LoggerConfig   `yaml:"logger,omitempty" json:"logger,omitempty"`
	Shell    *ShellConfig    `yaml:"shell,omitempty" json:"shell,omitempty"`
}

// WorkloadConfig configures the placeholder body run by spawned children
type WorkloadConfig struct {
	Duration string `yaml:"duration" json:"duration"` // Go duration, e.g. "30s"
}

// GetDuration parses Duration, falling back to 30s
func (c *WorkloadConfig) GetDuration() time.Duration {
	if c == nil || c.Duration == "" {
		return defaultWorkloadDuration
	}
	d, err := time.ParseDuration(c.Duration)
	if err != nil || d < 0 {
		return defaultWorkloadDuration
	}
	return d
}

// KillConfig configures the kill/reap path
type KillConfig struct {
	GracePeriod string `yaml:"grace_period" json:"grace_period"` // wait before the second reap attempt
}

// GetGracePeriod parses GracePeriod, falling back to 10ms and capping at 5s
func (c *KillConfig) GetGracePeriod() time.Duration {
	if c == nil || c.GracePeriod == "" {
		return defaultGracePeriod
	}
	d, err := time.ParseDuration(c.GracePeriod)
	if err != nil || d < 0 {
		return defaultGracePeriod
	}
	if d > maxGracePeriod {
		return maxGracePeriod
	}
	return d
}

// LoggerConfig represents logger configuration
type LoggerConfig struct {
	Level      string `yaml:"level" json:"level"`             // debug, info, warn, error
	Format     string `yaml:"format" json:"format"`           // console, json
	FilePath   string `yaml:"file_path" json:"file_path"`     // Log file path (empty = no file)
	MaxSizeMB  int    `yaml:"max_size_mb" json:"max_size_mb"` // Max log file size before rotation
	MaxBackups int    `yaml:"max_backups" json:"max_backups"` // Rotated files to keep
}

// DefaultLoggerConfig returns default logger configuration
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:      "warn",
		Format:     "console",
		FilePath:   "",
		MaxSizeMB:  10,
		MaxBackups: 3,
	}
}

// ShellConfig configures the interactive shell
type ShellConfig struct {
	HistoryFile  string `yaml:"history_file" json:"history_file"` // empty = ~/.procsup_history
	HistoryLimit int    `yaml:"history_limit" json:"history_limit"`
}

// DefaultShellConfig returns default shell configuration
func DefaultShellConfig() *ShellConfig {
	return &ShellConfig{
		HistoryFile:  "",
		HistoryLimit: 1000,
	}
}

// DefaultSettings returns default configuration settings
func DefaultSettings() *Settings {
	return &Settings{
		Workload: &WorkloadConfig{Duration: defaultWorkloadDuration.String()},
		Kill:     &KillConfig{GracePeriod: defaultGracePeriod.String()},
		Logger:   DefaultLoggerConfig(),
		Shell:    DefaultShellConfig(),
	}
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:  "1.0",
		Settings: DefaultSettings(),
	}
}

// applyDefaults fills sections missing from a loaded file
func (c *Config) applyDefaults() {
	if c.Settings == nil {
		c.Settings = DefaultSettings()
		return
	}
	defaults := DefaultSettings()
	if c.Settings.Workload == nil {
		c.Settings.Workload = defaults.Workload
	}
	if c.Settings.Kill == nil {
		c.Settings.Kill = defaults.Kill
	}
	if c.Settings.Logger == nil {
		c.Settings.Logger = defaults.Logger
	}
	if c.Settings.Shell == nil {
		c.Settings.Shell = defaults.Shell
	}
	if c.Settings.Shell.HistoryLimit <= 0 {
		c.Settings.Shell.HistoryLimit = defaults.Shell.HistoryLimit
	}
}

// Validate validates the configuration
func (c *Config) Validate() []string {
	var errors []string

	if c.Settings == nil {
		errors = append(errors, "settings is required")
		return errors
	}

	if w := c.Settings.Workload; w != nil && w.Duration != "" {
		if d, err := time.ParseDuration(w.Duration); err != nil || d < 0 {
			errors = append(errors, "workload.duration must be a non-negative duration")
		}
	}

	if k := c.Settings.Kill; k != nil && k.GracePeriod != "" {
		if d, err := time.ParseDuration(k.GracePeriod); err != nil || d < 0 {
			errors = append(errors, "kill.grace_period must be a non-negative duration")
		} else if d > maxGracePeriod {
			errors = append(errors, "kill.grace_period must not exceed 5s")
		}
	}

	if l := c.Settings.Logger; l != nil {
		switch l.Format {
		case "", "console", "json":
		default:
			errors = append(errors, "logger.format must be console or json")
		}
		if l.MaxSizeMB < 0 {
			errors = append(errors, "logger.max_size_mb must not be negative")
		}
	}

	return errors
}
