package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	cfgpkg "github.com/KaramelBytes/heartstat-cli/internal/config"
	"github.com/KaramelBytes/heartstat-cli/internal/logging"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile       string
	debug         bool
	flagLogFormat string
	flagLogFile   string

	// Loaded configuration
	cfg *cfgpkg.Global

	logger    = slog.Default()
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "heartstat",
	Short: "heartstat: locate a heart-disease dataset and summarize it",
	Long: `heartstat finds a heart-disease CSV (an explicit path, a recursive search, or an upload on stdin),
validates its columns, and prints descriptive statistics and chart data as Markdown.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	err := rootCmd.Execute()
	if logCloser != nil {
		_ = logCloser.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.heartstat/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format: text|json (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "also write logs to this rotating file (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults so lookups still work
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		d := cfgpkg.Defaults()
		c = &d
	}
	cfg = c

	f := rootCmd.PersistentFlags()
	if f.Changed("log-format") && flagLogFormat != "" {
		cfg.LogFormat = flagLogFormat
	}
	if f.Changed("log-file") && flagLogFile != "" {
		cfg.LogFile = flagLogFile
	}
	if debug {
		cfg.LogLevel = "debug"
	}
	if logCloser != nil {
		_ = logCloser.Close()
	}
	logger, logCloser = logging.Setup(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
}

// effectiveConfig returns the loaded config, or defaults when none was loaded.
func effectiveConfig() *cfgpkg.Global {
	if cfg != nil {
		return cfg
	}
	d := cfgpkg.Defaults()
	return &d
}
