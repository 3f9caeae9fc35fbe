package cliconfig

import "os"

// EnvPrefix prefixes every environment variable read by ApplyEnvConfig.
const EnvPrefix = "THREADWORKER_"

// ApplyEnvConfig applies THREADWORKER_* environment variables to cfg.
// Environment values override the config file but not explicitly set flags.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("name", getenv("NAME"), &cfg.Name)
	s.setString("message", getenv("MESSAGE"), &cfg.Message)
	s.setString("settings", getenv("SETTINGS_FILE"), &cfg.SettingsFile)
	s.setString("state-dir", getenv("STATE_DIR"), &cfg.StateDir)
	s.setString("policy", getenv("POLICY"), &cfg.Policy)
	s.setString("log-level", getenv("LOG_LEVEL"), &cfg.LogLevel)
	s.setString("log-format", getenv("LOG_FORMAT"), &cfg.LogFormat)
	s.setString("log-backend", getenv("LOG_BACKEND"), &cfg.LogBackend)
	s.setString("metrics-addr", getenv("METRICS_ADDR"), &cfg.MetricsAddr)

	if err := s.setDuration("interval", getenv("INTERVAL"), &cfg.Interval); err != nil {
		return err
	}
	if err := s.setDuration("wait-interval", getenv("WAIT_INTERVAL"), &cfg.WaitInterval); err != nil {
		return err
	}
	if err := s.setDuration("duration", getenv("DURATION"), &cfg.Duration); err != nil {
		return err
	}

	if err := s.setIntsFromString("affinity", getenv("AFFINITY"), &cfg.Affinity); err != nil {
		return err
	}
	if err := s.setIntFromString("priority", getenv("PRIORITY"), &cfg.Priority); err != nil {
		return err
	}

	return nil
}

func getenv(key string) string {
	return os.Getenv(EnvPrefix + key)
}
