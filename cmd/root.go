// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface of sqlbridge. It turns
// SmartClient-style data requests into SQL for PostgreSQL, MySQL, SQL Server
// or SQLite, runs them over one connection and prints the JSON response.
// Connection details come from flags, the environment or the OS keychain.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"sqlbridge/cli/internal/config"
	apperrors "sqlbridge/cli/internal/errors"
	"sqlbridge/cli/internal/logging"
	"sqlbridge/cli/internal/metrics"
)

var (
	showVersion bool

	flagDSN         string
	flagProfile     string
	flagDialect     string
	flagLogFormat   string
	flagMetricsFile string
	verbose         bool

	// cfg is the loaded configuration with flag overrides applied.
	cfg = config.Defaults()

	registry   = prometheus.NewRegistry()
	appMetrics = metrics.New(registry)
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sqlbridge",
	Short: "Serve SmartClient-style data requests against a SQL database",
	Long: `sqlbridge translates SmartClient data requests (flat parameters or advanced
criteria) into SQL for PostgreSQL, MySQL, SQL Server or SQLite, runs them over
a single connection and prints the response as JSON.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			printVersion()
			return nil
		}
		return cmd.Help()
	},
}

// setup loads the configuration, applies flag overrides and configures the
// logger.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load()
	if err != nil {
		logging.Warn("cannot read config, using defaults", "error", err)
	}
	cfg = loaded

	flags := cmd.Flags()
	if flags.Changed("profile") {
		cfg.DB.Profile = flagProfile
	}
	if flags.Changed("dialect") {
		cfg.DB.Dialect = flagDialect
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = flagLogFormat
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = flagMetricsFile
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	if err := logging.SetLevel(level); err != nil {
		return apperrors.Wrap(apperrors.InvalidArgument, "bad log level in config", err)
	}
	switch strings.ToLower(cfg.LogFormat) {
	case "json":
		logging.SetJSON(true)
	case "", "text":
		logging.SetJSON(false)
	default:
		return apperrors.Newf(apperrors.InvalidArgument, "unknown log format %q", cfg.LogFormat)
	}
	return nil
}

// flushMetrics writes the metrics textfile when one is configured.
func flushMetrics() {
	if cfg.MetricsFile == "" {
		return
	}
	if err := metrics.WriteTextfile(cfg.MetricsFile, registry); err != nil {
		logging.Warn("cannot write metrics file", "path", cfg.MetricsFile, "error", err)
	}
}

// Execute runs the CLI application.
// It executes the root command and handles any errors that occur during execution.
func Execute() {
	err := rootCmd.Execute()
	flushMetrics()
	if err != nil {
		if apperrors.KindOf(err) == apperrors.Unknown {
			fmt.Fprintln(os.Stderr, logging.Mask(err.Error()))
		} else {
			logging.PresentDBError(err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show version information")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagDSN, "dsn", "", "Database DSN (overrides "+config.EnvDSN+", "+config.EnvDatabaseURL+" and the keychain)")
	pf.StringVar(&flagProfile, "profile", "", "Keychain profile holding the DSN")
	pf.StringVar(&flagDialect, "dialect", "", "SQL dialect for commands that render without connecting (postgres, mysql, mssql, sqlite)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	pf.StringVar(&flagLogFormat, "log-format", "", "Log format: text or json")
	pf.StringVar(&flagMetricsFile, "metrics-file", "", "Write Prometheus metrics to this file when the command ends")
}
