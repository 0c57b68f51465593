// Loanform collects a loan applicant's details, validates them and submits
// them to a prediction service.
//
// Running without arguments opens the interactive terminal form. The serve
// command hosts the same form as a web page with a JSON API, and the predict
// and validate commands work on applicant files for scripting.
//
// Usage:
//
//	loanform [command] [flags]
//
// See 'loanform --help' for available commands.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/solutyics/loanform/internal/config"
	"github.com/solutyics/loanform/internal/logging"
	"github.com/solutyics/loanform/internal/predict"
	"github.com/solutyics/loanform/internal/tui"
	"github.com/solutyics/loanform/internal/version"
)

func main() {
	err := rootCmd.Execute()
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Global flags
var (
	configPath string
	logLevel   string
	logFile    string
	endpoint   string
	timeout    time.Duration

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "loanform",
	Short: "Loan Application Form",
	Long: `Collects a loan applicant's details, validates every field and submits
the application to a prediction service.

If no command is specified, the interactive terminal form will launch.
Use 'loanform serve' to host the form as a web page.`,
	Version:           version.Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              runForm,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ./loanform.yaml or the user config dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); silent when unset")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file instead of stderr")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "Prediction service URL")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Prediction request timeout (e.g. 30s)")

	rootCmd.AddCommand(versionCmd)
}

// setup loads configuration, applies flag overrides and starts logging
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("endpoint") {
		loaded.Predict.Endpoint = endpoint
	}
	if flags.Changed("timeout") {
		loaded.Predict.Timeout = timeout
	}
	if flags.Changed("log-level") {
		loaded.Log.Level = logLevel
	}
	if flags.Changed("log-file") {
		loaded.Log.File = logFile
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := logging.Initialize(logging.Options{Level: loaded.Log.Level, File: loaded.Log.File}); err != nil {
		return err
	}
	cfg = loaded

	logging.Debug("Configuration loaded",
		zap.String("command", cmd.Name()),
		zap.String("endpoint", cfg.Predict.Endpoint),
		zap.Duration("timeout", cfg.Predict.Timeout),
		zap.Bool("cache", cfg.CacheEnabled()),
	)
	return nil
}

// newPredictor builds the prediction client, wrapped with the Redis cache
// when one is configured and reachable. The returned func releases it.
func newPredictor(ctx context.Context, c *config.Config) (predict.Predictor, func()) {
	client := predict.NewClient(c.Predict.Endpoint, c.Predict.Timeout)
	if !c.CacheEnabled() {
		return client, func() {}
	}

	cache := predict.NewRedisCache(c.Cache.RedisAddr)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := cache.Ping(pingCtx); err != nil {
		logging.Warn("Prediction cache unavailable, continuing without it",
			zap.String("addr", c.Cache.RedisAddr),
			zap.Error(err),
		)
		_ = cache.Close()
		return client, func() {}
	}

	logging.Info("Prediction cache enabled", zap.String("addr", c.Cache.RedisAddr), zap.Duration("ttl", c.Cache.TTL))
	return predict.NewCachingPredictor(client, cache, c.Cache.TTL), func() { _ = cache.Close() }
}

func runForm(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("the interactive form needs a terminal; use 'loanform predict' or 'loanform serve' instead")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	predictor, release := newPredictor(ctx, cfg)
	defer release()

	return tui.Run(ctx, predictor)
}

var versionFormat string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// Version needs no configuration
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Get()
		if versionFormat == formatText {
			fmt.Fprintf(cmd.OutOrStdout(), "loanform %s\n", version.Full())
			return nil
		}
		return writeFormatted(cmd.OutOrStdout(), versionFormat, info)
	},
}

func init() {
	versionCmd.Flags().StringVar(&versionFormat, "format", formatText, "Output format (text, json, yaml)")
}
