// Package cli implements the logfetch command line interface.
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/halcyon-labs/logfetch-cli/internal/config"
	"github.com/halcyon-labs/logfetch-cli/internal/connectors/metrika"
	"github.com/halcyon-labs/logfetch-cli/internal/core/ports/driven"
	"github.com/halcyon-labs/logfetch-cli/internal/core/ports/driving"
	"github.com/halcyon-labs/logfetch-cli/internal/core/services"
	"github.com/halcyon-labs/logfetch-cli/internal/logging"
)

// version is injected by Execute.
var version = "dev"

// exporter is the orchestrator commands run against.
// Populated by setupExporter; tests inject a mock instead.
var exporter driving.ExportOrchestrator

var (
	configPath  string
	verboseMode bool
)

var rootCmd = &cobra.Command{
	Use:   "logfetch",
	Short: "Export raw Metrika logs via the Logs API",
	Long: `logfetch drives the asynchronous Logs API export workflow:
it submits an export request for a date range and field set, waits for
the service to materialize the data, downloads the resulting parts and
reassembles them into one document.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"config file (default ~/.logfetch/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verboseMode, "verbose", "v", false,
		"debug logging to stderr")
}

// Execute runs the CLI with the given build version.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	return rootCmd.Execute()
}

// loadConfig reads the config file from --config or the default path.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return nil, fmt.Errorf("resolve config path: %w", err)
		}
	}
	return config.Load(path)
}

// setupExporter builds the orchestrator from configuration.
// A pre-populated exporter (tests, embedders) is left untouched.
func setupExporter() error {
	if exporter != nil {
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logging.New(cfg.Log.Level, cfg.Log.Format, verboseMode)

	client, err := metrika.NewClient(metrika.Config{
		CounterID:      cfg.CounterID,
		BaseURL:        cfg.BaseURL,
		MaxAttempts:    cfg.Export.MaxRetryAttempts,
		RetryBaseDelay: secondsOrZero(cfg.Export.RetryBaseDelaySeconds),
	}, driven.StaticToken(cfg.Token), log)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	opts := services.DefaultOptions()
	opts.PollInterval = secondsOrZero(cfg.Export.PollIntervalSeconds)
	opts.OverallTimeout = secondsOrZero(cfg.Export.OverallTimeoutSeconds)
	opts.PartConcurrency = cfg.Export.PartConcurrency
	opts.CleanupAfterFetch = !cfg.Export.KeepAfterFetch

	exporter = services.NewExporter(client, opts, log)
	return nil
}

// secondsOrZero converts a config seconds value, leaving zero to the
// option defaults.
func secondsOrZero(s int) time.Duration {
	return time.Duration(s) * time.Second
}
