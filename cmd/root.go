package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/pestwatch/internal/cli"
	cfgpkg "github.com/KaramelBytes/pestwatch/internal/config"
)

var (
	// Global flags (override config when set)
	cfgFile       string
	flagSource    string
	flagSheet     string
	flagLogLevel  string
	flagLogFormat string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "pestwatch",
	Short: "Explore pest trap counts against temperature and humidity",
	Long: `pestwatch loads daily readings of mean temperature, mean relative humidity and
adult male trap counts from a spreadsheet, reports descriptive statistics and
correlations over a date range, and predicts counts with a linear model.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError("Error: "+err.Error()))
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)

	f := rootCmd.PersistentFlags()
	f.StringVar(&cfgFile, "config", "", "config file (default is ~/.pestwatch/config.yaml)")
	f.StringVar(&flagSource, "source", "", "readings spreadsheet (.xlsx, .csv or .tsv)")
	f.StringVar(&flagSheet, "sheet", "", "sheet name inside the workbook")
	f.StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error")
	f.StringVar(&flagLogFormat, "log-format", "", "log format: console|json")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintln(os.Stderr, cli.FormatWarning("Warning: failed to load config: "+err.Error()))
		c = cfgpkg.Defaults()
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("source") {
		cfg.Source = flagSource
	}
	if f.Changed("sheet") {
		cfg.Sheet = flagSheet
	}
	if f.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
	if f.Changed("log-format") {
		cfg.LogFormat = flagLogFormat
	}

	if err := setupLogging(cfg.LogLevel, cfg.LogFormat); err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatWarning("Warning: "+err.Error()))
		_ = setupLogging("info", "console")
	}
}

func setupLogging(level, format string) error {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "info":
		slogLevel = slog.LevelInfo
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		return fmt.Errorf("invalid log level: %s", level)
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: slogLevel}
	switch format {
	case "console":
		handler = slog.NewTextHandler(os.Stderr, opts)
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		return fmt.Errorf("invalid log format: %s", format)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}
