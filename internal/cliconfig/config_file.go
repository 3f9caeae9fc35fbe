package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Name         string `toml:"name"`
	Message      string `toml:"message"`
	Interval     string `toml:"interval"`
	WaitInterval string `toml:"wait_interval"`
	SettingsFile string `toml:"settings_file"`
	StateDir     string `toml:"state_dir"`
	Affinity     []int  `toml:"affinity"`
	Policy       string `toml:"policy"`
	Priority     *int   `toml:"priority"`
	LogLevel     string `toml:"log_level"`
	LogFormat    string `toml:"log_format"`
	LogBackend   string `toml:"log_backend"`
	MetricsAddr  string `toml:"metrics_addr"`
	Duration     string `toml:"duration"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.threadworker/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if dir := DefaultStateDir(); dir != "" {
		return filepath.Join(dir, "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("name", fc.Name, &cfg.Name)
	s.setString("message", fc.Message, &cfg.Message)
	s.setString("settings", fc.SettingsFile, &cfg.SettingsFile)
	s.setString("state-dir", fc.StateDir, &cfg.StateDir)
	s.setString("policy", fc.Policy, &cfg.Policy)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("log-format", fc.LogFormat, &cfg.LogFormat)
	s.setString("log-backend", fc.LogBackend, &cfg.LogBackend)
	s.setString("metrics-addr", fc.MetricsAddr, &cfg.MetricsAddr)

	if err := s.setDuration("interval", fc.Interval, &cfg.Interval); err != nil {
		return err
	}
	if err := s.setDuration("wait-interval", fc.WaitInterval, &cfg.WaitInterval); err != nil {
		return err
	}
	if err := s.setDuration("duration", fc.Duration, &cfg.Duration); err != nil {
		return err
	}

	s.setInts("affinity", fc.Affinity, &cfg.Affinity)
	s.setInt("priority", fc.Priority, &cfg.Priority)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
