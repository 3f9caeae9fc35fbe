package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/threadworker/pkg/sched"
)

// Log formats and backends accepted by Config.
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"

	LogBackendZerolog = "zerolog"
	LogBackendZap     = "zap"
)

// Config holds CLI configuration for threadworker.
type Config struct {
	Name string

	Message      string
	Interval     time.Duration
	WaitInterval time.Duration

	SettingsFile string
	StateDir     string

	Affinity []int
	Policy   string
	Priority int

	LogLevel   string
	LogFormat  string
	LogBackend string

	MetricsAddr string
	Duration    time.Duration
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Name:         "demo",
		Message:      "tick",
		Interval:     time.Second,
		WaitInterval: 100 * time.Millisecond,
		StateDir:     "", // Derived from the home directory during Validate
		Policy:       sched.PolicyOther.String(),
		LogLevel:     "info",
		LogFormat:    LogFormatConsole,
		LogBackend:   LogBackendZerolog,
	}
}

// DefaultStateDir returns ~/.threadworker, or "" if the home directory is
// not accessible.
func DefaultStateDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".threadworker")
	}
	return ""
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}

	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	if c.WaitInterval <= 0 {
		return fmt.Errorf("wait interval must be positive")
	}
	if c.Duration < 0 {
		return fmt.Errorf("duration must not be negative")
	}

	if c.StateDir == "" {
		c.StateDir = DefaultStateDir()
		if c.StateDir == "" {
			return fmt.Errorf("state-dir is required (home directory unavailable)")
		}
	}

	if _, err := sched.ParsePolicy(c.Policy); err != nil {
		return err
	}
	for _, cpu := range c.Affinity {
		if cpu < 0 {
			return fmt.Errorf("affinity: negative cpu index %d", cpu)
		}
	}

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	switch c.LogFormat {
	case LogFormatConsole, LogFormatJSON:
	default:
		return fmt.Errorf("log format must be %q or %q, got %q", LogFormatConsole, LogFormatJSON, c.LogFormat)
	}
	switch c.LogBackend {
	case LogBackendZerolog, LogBackendZap:
	default:
		return fmt.Errorf("log backend must be %q or %q, got %q", LogBackendZerolog, LogBackendZap, c.LogBackend)
	}

	return nil
}

// Scheduling returns the worker scheduling settings. Call after Validate.
func (c Config) Scheduling() sched.Config {
	policy, _ := sched.ParsePolicy(c.Policy)
	return sched.Config{
		Affinity: c.Affinity,
		Policy:   policy,
		Priority: c.Priority,
	}
}

// ParseCPUList parses a comma separated list of CPU indices such as "0,2,3".
func ParseCPUList(value string) ([]int, error) {
	var cpus []int
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		cpu, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("parse cpu %q: %w", part, err)
		}
		cpus = append(cpus, cpu)
	}
	return cpus, nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if present and flag not changed.
// Negative values are allowed since nice levels are negative.
func (s *configSetter) setInt(flag string, value *int, dst *int) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setInts sets an int slice if not empty and flag not changed.
func (s *configSetter) setInts(flag string, value []int, dst *[]int) {
	if len(value) == 0 || s.changed[flag] {
		return
	}
	*dst = append([]int(nil), value...)
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = i
	return nil
}

// setIntsFromString parses a CPU list and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntsFromString(flag, value string, dst *[]int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	cpus, err := ParseCPUList(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = cpus
	return nil
}
