// Package config loads rayscan settings from .rayscan.yaml, RAYSCAN_*
// environment variables and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pthm/rayscan/internal/search"
)

// Sentinel validation errors.
var (
	ErrInvalidFormat      = errors.New("invalid output format")
	ErrInvalidMaxFileSize = errors.New("invalid max file size")
	ErrInvalidWorkers     = errors.New("workers must not be negative")
	ErrInvalidIgnore      = errors.New("invalid ignore pattern")
)

// Default configuration values.
const (
	DefaultFormat      = "terminal"
	DefaultTarget      = "ray"
	DefaultMaxFileSize = "1MiB"

	envPrefix = "RAYSCAN"
	fileName  = ".rayscan"
)

// Keys shared by the config file, environment and flags.
const (
	KeySummary     = "summary"
	KeyCompact     = "compact"
	KeyFormat      = "format"
	KeyNoColor     = "no_color"
	KeyTarget      = "target"
	KeyTargetFile  = "target_file"
	KeyIgnore      = "ignore"
	KeyMaxFileSize = "max_file_size"
	KeyWorkers     = "workers"
	KeyVerbose     = "verbose"
)

// Config holds all settings for a scan.
type Config struct {
	ShowSummary bool     `mapstructure:"summary"`
	CompactMode bool     `mapstructure:"compact"`
	Format      string   `mapstructure:"format"`
	NoColor     bool     `mapstructure:"no_color"`
	Target      string   `mapstructure:"target"`
	TargetFile  string   `mapstructure:"target_file"`
	Ignore      []string `mapstructure:"ignore"`
	MaxFileSize string   `mapstructure:"max_file_size"`
	Workers     int      `mapstructure:"workers"`
	Verbose     bool     `mapstructure:"verbose"`

	// File is the config file that was read, empty if none.
	File string `mapstructure:"-"`
}

// MaxFileSizeBytes returns the parsed max file size.
func (c *Config) MaxFileSizeBytes() int64 {
	n, err := humanize.ParseBytes(c.MaxFileSize)
	if err != nil || n == 0 {
		return search.DefaultMaxFileSize
	}
	return int64(n)
}

// Load reads configuration. configPath, when set, must exist; otherwise
// .rayscan.yaml is looked up in dir. Flags that were explicitly set on the
// command line override every other source. flagKeys maps config keys to
// flag names where they differ.
func Load(configPath, dir string, flags *pflag.FlagSet, flagKeys map[string]string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(fileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeySummary, false)
	v.SetDefault(KeyCompact, false)
	v.SetDefault(KeyFormat, DefaultFormat)
	v.SetDefault(KeyNoColor, false)
	v.SetDefault(KeyTarget, DefaultTarget)
	v.SetDefault(KeyTargetFile, "")
	v.SetDefault(KeyIgnore, []string{})
	v.SetDefault(KeyMaxFileSize, DefaultMaxFileSize)
	v.SetDefault(KeyWorkers, 0)
	v.SetDefault(KeyVerbose, false)
}

// Validate checks a loaded configuration.
func Validate(cfg *Config) error {
	switch cfg.Format {
	case "terminal", "json":
	default:
		return fmt.Errorf("%w: %q (want terminal or json)", ErrInvalidFormat, cfg.Format)
	}

	if _, err := humanize.ParseBytes(cfg.MaxFileSize); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidMaxFileSize, cfg.MaxFileSize)
	}

	if cfg.Workers < 0 {
		return ErrInvalidWorkers
	}

	if bad, ok := search.ValidPatterns(cfg.Ignore); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidIgnore, bad)
	}

	return nil
}
