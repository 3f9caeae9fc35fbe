package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/threadworker/internal/app"
	"github.com/bft-labs/threadworker/internal/cliconfig"
	"github.com/bft-labs/threadworker/pkg/log"
	"github.com/bft-labs/threadworker/pkg/status"
)

const longHelp = `
Run a cooperative background worker and control its lifecycle.

The demo worker logs a message at a fixed interval. It can be paused and
resumed with signals, reconfigured at runtime through a watched settings file,
and observed through a Prometheus endpoint and a status snapshot on disk.

Signals:
  SIGINT, SIGTERM   shut the worker down and exit
  SIGUSR1           pause the worker
  SIGUSR2           resume the worker
`

var exampleUsage = strings.TrimSpace(`
  threadworker run --message hello --interval 500ms
  threadworker run --settings ./settings.toml --metrics-addr :9090
  threadworker run --affinity 0 --policy fifo --priority 10 --duration 30s
  threadworker status
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	logger := cliconfig.Logger()

	root := &cobra.Command{
		Use:           "threadworker",
		Short:         "Run a cooperative background worker",
		Long:          strings.TrimSpace(longHelp),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCommand(), newStatusCommand())

	if err := root.Execute(); err != nil {
		logger.Error().Err(err).Msg("threadworker")
		os.Exit(1)
	}
}

// loadConfig layers the config file and THREADWORKER_* variables under the
// flags explicitly set on cmd, then validates the result.
func loadConfig(cmd *cobra.Command, cfg *cliconfig.Config, cfgPath string) error {
	cfgFile := cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(cfg, fc, changed); err != nil {
			return err
		}
	} else if cfgPath != "" {
		return fmt.Errorf("config file %s not found", cfgPath)
	}

	if err := cliconfig.ApplyEnvConfig(cfg, changed); err != nil {
		return err
	}

	return cfg.Validate()
}

func newRunCommand() *cobra.Command {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the demo worker and block until a shutdown signal",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, &cfg, cfgPath); err != nil {
				return err
			}

			logger, flush, err := cliconfig.NewLogger(cfg, os.Stderr)
			if err != nil {
				return err
			}
			defer flush()

			logger.Info("configuration",
				log.String("name", cfg.Name),
				log.String("message", cfg.Message),
				log.Duration("interval", cfg.Interval),
				log.Duration("wait_interval", cfg.WaitInterval),
				log.String("settings", cfg.SettingsFile),
				log.String("state_dir", cfg.StateDir),
				log.Ints("affinity", cfg.Affinity),
				log.String("policy", cfg.Policy),
				log.Int("priority", cfg.Priority),
				log.String("metrics_addr", cfg.MetricsAddr),
				log.Duration("duration", cfg.Duration),
			)

			a, err := app.New(cfg, logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)
			go func() {
				select {
				case sig := <-sigCh:
					logger.Info("received signal, stopping", log.Stringer("signal", sig))
					cancel()
				case <-ctx.Done():
				}
			}()

			stopControl := notifyControl(ctx, a, logger)
			defer stopControl()

			return a.Run(ctx)
		},
	}

	bindRunFlags(cmd.Flags(), &cfg, &cfgPath)

	return cmd
}

// bindRunFlags registers the run command flags on f, with cfg's values as
// defaults.
func bindRunFlags(f *pflag.FlagSet, cfg *cliconfig.Config, cfgPath *string) {
	f.StringVar(cfgPath, "config", "", "path to config file (default: $HOME/.threadworker/config.toml)")
	f.StringVar(&cfg.Name, "name", cfg.Name, "worker name used in logs and metrics")
	f.StringVar(&cfg.Message, "message", cfg.Message, "message logged on every tick")
	f.DurationVar(&cfg.Interval, "interval", cfg.Interval, "delay between ticks")
	f.DurationVar(&cfg.WaitInterval, "wait-interval", cfg.WaitInterval, "upper bound of one pause wait")
	f.StringVar(&cfg.SettingsFile, "settings", cfg.SettingsFile, "TOML settings file to watch for runtime reconfiguration")
	f.StringVar(&cfg.StateDir, "state-dir", cfg.StateDir, "directory for status.json (default: $HOME/.threadworker)")
	f.IntSliceVar(&cfg.Affinity, "affinity", cfg.Affinity, "CPU indices to pin the worker thread to")
	f.StringVar(&cfg.Policy, "policy", cfg.Policy, "scheduling policy: other, fifo, rr, batch or idle")
	f.IntVar(&cfg.Priority, "priority", cfg.Priority, "nice value, or static priority for fifo/rr")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")
	f.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: console or json")
	f.StringVar(&cfg.LogBackend, "log-backend", cfg.LogBackend, "log backend: zerolog or zap")
	f.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "address to serve Prometheus metrics on (disabled when empty)")
	f.DurationVar(&cfg.Duration, "duration", cfg.Duration, "stop after this long (0 runs until signaled)")
}

func newStatusCommand() *cobra.Command {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the last status snapshot written by the worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, &cfg, cfgPath); err != nil {
				return err
			}

			repo := status.NewFileRepository(cfg.StateDir)
			snap, err := repo.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load status: %w", err)
			}
			if snap.IsEmpty() {
				return fmt.Errorf("no status found at %s", repo.Path())
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.threadworker/config.toml)")
	cmd.Flags().StringVar(&cfg.StateDir, "state-dir", cfg.StateDir, "directory holding status.json (default: $HOME/.threadworker)")

	return cmd
}
