package demo

import (
	"fmt"
	"time"
)

// Duration is a time.Duration that reads and writes as "1s" style text.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("parse duration: %w", err)
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Settings is the runtime configuration of the ticker.
type Settings struct {
	// Message is logged on every tick.
	Message string `toml:"message"`

	// Interval is the delay between ticks.
	Interval Duration `toml:"interval"`
}

// Validate reports settings the ticker cannot run with.
func (s Settings) Validate() error {
	if s.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	return nil
}
