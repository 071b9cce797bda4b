package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. PESTWATCH_SOURCE.
const EnvPrefix = "PESTWATCH"

// Global configuration structure.
type Global struct {
	Source    string `mapstructure:"source" yaml:"source" validate:"required"`
	Sheet     string `mapstructure:"sheet" yaml:"sheet"`
	Addr      string `mapstructure:"addr" yaml:"addr" validate:"required"`
	LogLevel  string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" validate:"oneof=console json"`
	ChartDir  string `mapstructure:"chart_dir" yaml:"chart_dir"`
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{"source", "sheet", "addr", "log_level", "log_format", "chart_dir"}

var validate = validator.New()

// Defaults returns the built-in configuration.
func Defaults() *Global {
	return &Global{
		Source:    "temp_humid_data.xlsx",
		Sheet:     "Sheet3",
		Addr:      ":8080",
		LogLevel:  "info",
		LogFormat: "console",
		ChartDir:  "charts",
	}
}

// Validate checks field constraints.
func (c *Global) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Get returns the value for key.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "source":
		return c.Source, nil
	case "sheet":
		return c.Sheet, nil
	case "addr":
		return c.Addr, nil
	case "log_level":
		return c.LogLevel, nil
	case "log_format":
		return c.LogFormat, nil
	case "chart_dir":
		return c.ChartDir, nil
	}
	return "", fmt.Errorf("unknown key: %s", key)
}

// Set assigns val to key and validates the result.
func (c *Global) Set(key, val string) error {
	next := *c
	switch key {
	case "source":
		next.Source = val
	case "sheet":
		next.Sheet = val
	case "addr":
		next.Addr = val
	case "log_level":
		next.LogLevel = strings.ToLower(val)
	case "log_format":
		next.LogFormat = strings.ToLower(val)
	case "chart_dir":
		next.ChartDir = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// DefaultPath returns ~/.pestwatch/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".pestwatch", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.pestwatch/config.yaml, creating the directory if necessary.
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
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. A .env file in the working
// directory is read into the environment first; existing variables win.
func Load(cfgFile string) (*Global, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("source", d.Source)
	v.SetDefault("sheet", d.Sheet)
	v.SetDefault("addr", d.Addr)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("chart_dir", d.ChartDir)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		path, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(filepath.Dir(path))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// an explicit --config that does not exist yet is created by Save
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
	c.LogFormat = strings.ToLower(c.LogFormat)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
