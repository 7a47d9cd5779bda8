package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/heartstat-cli/internal/dataset"
	"github.com/KaramelBytes/heartstat-cli/internal/utils"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Dataset lookup
	PrimaryPath     string   `mapstructure:"primary_path" yaml:"primary_path"`
	SearchRoot      string   `mapstructure:"search_root" yaml:"search_root"`
	SearchPattern   string   `mapstructure:"search_pattern" yaml:"search_pattern"`
	RequiredColumns []string `mapstructure:"required_columns" yaml:"required_columns"`

	// Report
	SampleRows int `mapstructure:"sample_rows" yaml:"sample_rows"`
	AgeBins    int `mapstructure:"age_bins" yaml:"age_bins"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
	LogFile   string `mapstructure:"log_file" yaml:"log_file"`
}

// Defaults returns the configuration used when no file or env overrides it.
func Defaults() Global {
	return Global{
		PrimaryPath:     "heart_disease.csv",
		SearchRoot:      ".",
		SearchPattern:   "**/heart_disease.csv",
		RequiredColumns: append([]string(nil), dataset.DefaultRequiredColumns...),
		SampleRows:      5,
		AgeBins:         30,
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// DefaultPath returns ~/.heartstat/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".heartstat", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.heartstat/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env (HEARTSTAT_*, optionally from ./.env) > config file > defaults.
// A missing config file is not an error.
func Load(cfgFile string) (*Global, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("HEARTSTAT")
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("primary_path", d.PrimaryPath)
	v.SetDefault("search_root", d.SearchRoot)
	v.SetDefault("search_pattern", d.SearchPattern)
	v.SetDefault("required_columns", d.RequiredColumns)
	v.SetDefault("sample_rows", d.SampleRows)
	v.SetDefault("age_bins", d.AgeBins)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("log_file", d.LogFile)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".heartstat"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if len(c.RequiredColumns) == 0 {
		c.RequiredColumns = append([]string(nil), dataset.DefaultRequiredColumns...)
	}
	return &c, nil
}
