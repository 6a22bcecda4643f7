package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigFileName is the default config file name
	DefaultConfigFileName = "procsup.yaml"

	historyFileName = ".procsup_history"
)

var (
	// globalConfig is the globally loaded configuration
	globalConfig *Config
	// globalConfigPath is the path to the loaded config file
	globalConfigPath string
	// configMutex protects config access
	configMutex sync.RWMutex
)

// Loader handles configuration loading and saving
type Loader struct {
	configPath string
}

// NewLoader creates a new config loader
func NewLoader(configPath string) *Loader {
	return &Loader{
		configPath: configPath,
	}
}

// Load loads configuration from file, returning defaults if the file is missing
func (l *Loader) Load() (*Config, error) {
	if _, err := os.Stat(l.configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(l.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()

	if problems := config.Validate(); len(problems) > 0 {
		return nil, fmt.Errorf("invalid config file %s: %s", l.configPath, strings.Join(problems, "; "))
	}

	return &config, nil
}

// Save saves configuration to file
func (l *Loader) Save(config *Config) error {
	dir := filepath.Dir(l.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(l.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetPath returns the config file path
func (l *Loader) GetPath() string {
	return l.configPath
}

// Exists checks if config file exists
func (l *Loader) Exists() bool {
	_, err := os.Stat(l.configPath)
	return err == nil
}

// FindConfigFile searches for config file in standard locations
func FindConfigFile() string {
	// Priority order:
	// 1. Current directory
	// 2. Executable directory
	// 3. User config directory

	cwd, err := os.Getwd()
	if err == nil {
		configPath := filepath.Join(cwd, DefaultConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
	}

	execPath, err := os.Executable()
	if err == nil {
		configPath := filepath.Join(filepath.Dir(execPath), DefaultConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
	}

	if userDir, err := GetUserConfigDir(); err == nil {
		configPath := filepath.Join(userDir, DefaultConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
	}

	return GetDefaultConfigPath()
}

// LoadGlobal loads configuration globally
func LoadGlobal(configPath string) error {
	configMutex.Lock()
	defer configMutex.Unlock()

	if configPath == "" {
		configPath = FindConfigFile()
	}

	config, err := NewLoader(configPath).Load()
	if err != nil {
		return err
	}

	globalConfig = config
	globalConfigPath = configPath

	return nil
}

// GetGlobal returns the global configuration
func GetGlobal() *Config {
	configMutex.RLock()
	defer configMutex.RUnlock()

	if globalConfig == nil {
		return DefaultConfig()
	}
	return globalConfig
}

// GetGlobalPath returns the global config file path
func GetGlobalPath() string {
	configMutex.RLock()
	defer configMutex.RUnlock()

	return globalConfigPath
}

// SetGlobal sets the global configuration
func SetGlobal(config *Config, configPath string) {
	configMutex.Lock()
	defer configMutex.Unlock()

	globalConfig = config
	globalConfigPath = configPath
}
