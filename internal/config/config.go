package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/CaptShanks/repoprism/internal/parser"
	"github.com/CaptShanks/repoprism/internal/tui"
)

const (
	// AppName is the application name.
	AppName = "repoprism"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// EnvPrefix prefixes every environment variable read by Load.
	EnvPrefix = "REPOPRISM"
)

// Config keys.
const (
	KeyPrintTruncate      = "print.truncate"
	KeyPrintMaxWidth      = "print.max_width"
	KeyPrintPlaceholder   = "print.placeholder"
	KeyPrintColor         = "print.color"
	KeyParseBannerMarkers = "parse.banner_markers"
	KeyParseSkipPrefixes  = "parse.skip_prefixes"
	KeyParseStopAtBlank   = "parse.stop_at_blank"
	KeyRepomanCommand     = "repoman.command"
	KeyRepomanArgs        = "repoman.args"
	KeyLogLevel           = "log.level"
)

// Config is the resolved repoprism configuration.
type Config struct {
	Print   PrintConfig   `mapstructure:"print"`
	Parse   ParseConfig   `mapstructure:"parse"`
	Repoman RepomanConfig `mapstructure:"repoman"`
	Log     LogConfig     `mapstructure:"log"`
}

// PrintConfig controls the printed report.
type PrintConfig struct {
	Truncate    bool   `mapstructure:"truncate"`
	MaxWidth    int    `mapstructure:"max_width"`
	Placeholder string `mapstructure:"placeholder"`
	Color       string `mapstructure:"color"`
}

// ParseConfig controls line classification.
type ParseConfig struct {
	BannerMarkers []string `mapstructure:"banner_markers"`
	SkipPrefixes  []string `mapstructure:"skip_prefixes"`
	StopAtBlank   bool     `mapstructure:"stop_at_blank"`
}

// RepomanConfig describes how `repoprism scan` invokes repoman.
type RepomanConfig struct {
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
}

// LogConfig controls diagnostics on stderr.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Print: PrintConfig{
			Truncate:    true,
			MaxWidth:    tui.DefaultMaxWidth,
			Placeholder: tui.DefaultPlaceholder,
			Color:       string(tui.ColorAuto),
		},
		Parse: ParseConfig{
			BannerMarkers: []string{parser.DefaultBannerMarker},
			SkipPrefixes:  []string{parser.DefaultSkipPrefix},
		},
		Repoman: RepomanConfig{
			Command: "repoman",
			Args:    []string{"full"},
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// LoadOptions tells Load where to look.
type LoadOptions struct {
	// ConfigFilePath is an explicit config file; it must exist.
	ConfigFilePath string
	// ConfigDirPath overrides ConfigDir when searching for config.{yaml,toml}.
	ConfigDirPath string
	// Flags maps config keys to command-line flags. A flag only wins over
	// the other sources when it was set explicitly.
	Flags map[string]*pflag.Flag
}

// ConfigDir returns $XDG_CONFIG_HOME/repoprism, falling back to the
// platform's user config directory.
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(dir, AppName), nil
}

// Load resolves the configuration from flags, environment, config file and
// defaults, then validates it.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault(KeyPrintTruncate, defaults.Print.Truncate)
	v.SetDefault(KeyPrintMaxWidth, defaults.Print.MaxWidth)
	v.SetDefault(KeyPrintPlaceholder, defaults.Print.Placeholder)
	v.SetDefault(KeyPrintColor, defaults.Print.Color)
	v.SetDefault(KeyParseBannerMarkers, defaults.Parse.BannerMarkers)
	v.SetDefault(KeyParseSkipPrefixes, defaults.Parse.SkipPrefixes)
	v.SetDefault(KeyParseStopAtBlank, defaults.Parse.StopAtBlank)
	v.SetDefault(KeyRepomanCommand, defaults.Repoman.Command)
	v.SetDefault(KeyRepomanArgs, defaults.Repoman.Args)
	v.SetDefault(KeyLogLevel, defaults.Log.Level)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := readConfigFile(v, opts); err != nil {
		return nil, err
	}

	for key, flag := range opts.Flags {
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("failed to bind flag %q: %w", flag.Name, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readConfigFile(v *viper.Viper, opts LoadOptions) error {
	if opts.ConfigFilePath != "" {
		if _, err := os.Stat(opts.ConfigFilePath); err != nil {
			return fmt.Errorf("config file not found: %w", err)
		}
		v.SetConfigFile(opts.ConfigFilePath)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", opts.ConfigFilePath, err)
		}
		return nil
	}

	dir := opts.ConfigDirPath
	if dir == "" {
		var err error
		if dir, err = ConfigDir(); err != nil {
			return err
		}
	}

	v.SetConfigName(ConfigFileName)
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		// No config file is fine; defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// Validate checks values that the type system cannot.
func (c *Config) Validate() error {
	if _, err := tui.ParseColorMode(c.Print.Color); err != nil {
		return fmt.Errorf("invalid %s: %w", KeyPrintColor, err)
	}
	if c.Print.MaxWidth <= len(c.Print.Placeholder) {
		return fmt.Errorf("invalid %s: %d must exceed the placeholder length (%d)",
			KeyPrintMaxWidth, c.Print.MaxWidth, len(c.Print.Placeholder))
	}
	if strings.TrimSpace(c.Repoman.Command) == "" {
		return fmt.Errorf("invalid %s: must not be empty", KeyRepomanCommand)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid %s: %w", KeyLogLevel, err)
	}
	return nil
}

// PrintOptions returns the printer settings. Validate has already vetted
// the color mode.
func (c *Config) PrintOptions() tui.PrintOptions {
	mode, _ := tui.ParseColorMode(c.Print.Color)
	return tui.PrintOptions{
		Truncate:    c.Print.Truncate,
		MaxWidth:    c.Print.MaxWidth,
		Placeholder: c.Print.Placeholder,
		Color:       mode,
	}
}

// ParserOptions returns the parser settings, tracing to logger.
func (c *Config) ParserOptions(logger *log.Logger) []parser.Option {
	return []parser.Option{
		parser.WithBannerMarkers(c.Parse.BannerMarkers...),
		parser.WithSkipPrefixes(c.Parse.SkipPrefixes...),
		parser.WithStopAtBlank(c.Parse.StopAtBlank),
		parser.WithLogger(logger),
	}
}
