// Package config provides configuration management for bbhost using Viper.
package config

import (
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/thoreinstein/bashbuiltins/internal/paths"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "BBHOST"

// Config represents the top-level configuration structure.
type Config struct {
	Version int `mapstructure:"version" yaml:"version" validate:"eq=1"`
	// ShellName is $0 inside the in-process shell.
	ShellName string `mapstructure:"shell_name" yaml:"shell_name" validate:"required,printascii"`
	// NameRefMaxDepth bounds nameref resolution.
	NameRefMaxDepth int `mapstructure:"nameref_max_depth" yaml:"nameref_max_depth" validate:"min=1,max=1024"`
	// RandomSeed seeds $RANDOM. Zero seeds from the clock.
	RandomSeed int64 `mapstructure:"random_seed" yaml:"random_seed"`
	// ManifestDirs are searched for builtin manifests.
	ManifestDirs []string `mapstructure:"manifest_dirs" yaml:"manifest_dirs" validate:"dive,required"`
	// StateFile persists shell variables between runs when set.
	StateFile string `mapstructure:"state_file" yaml:"state_file"`
	Log       Log    `mapstructure:"log" yaml:"log"`
}

// Log configures the CLI logger. Flags take precedence.
type Log struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"omitempty,oneof=trace debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"omitempty,oneof=text json"`
	// Color applies to log lines and CLI reports.
	Color string `mapstructure:"color" yaml:"color" validate:"omitempty,oneof=auto always never"`
}

// Init initializes Viper with default configuration.
// Call this once at application startup before accessing config values.
func Init() {
	// Config file settings
	viper.SetConfigName(paths.ConfigFileName)
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	viper.AddConfigPath(".")
	viper.AddConfigPath(paths.ConfigDir())

	// Environment variable support: BBHOST_SHELL_NAME, BBHOST_LOG_LEVEL, ...
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("version", 1)
	viper.SetDefault("shell_name", paths.AppName)
	viper.SetDefault("nameref_max_depth", 8)
	viper.SetDefault("random_seed", 0)
	viper.SetDefault("manifest_dirs", []string{paths.ManifestDir()})
	viper.SetDefault("state_file", "")
	viper.SetDefault("log.level", "warn")
	viper.SetDefault("log.format", "text")
	viper.SetDefault("log.color", "auto")
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches in the default locations and falls back to
// defaults when no file exists.
// The result is validated before it is returned.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "reading config file")
		}
		if path != "" {
			return nil, errors.Wrapf(err, "config file not found at %s", path)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	if err := cfg.expand(); err != nil {
		return nil, err
	}
	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Wrap(errors.Join(errs...), "validating config")
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Version:         1,
		ShellName:       paths.AppName,
		NameRefMaxDepth: 8,
		ManifestDirs:    []string{paths.ManifestDir()},
		Log:             Log{Level: "warn", Format: "text", Color: "auto"},
	}
}

func (c *Config) expand() error {
	for i, dir := range c.ManifestDirs {
		expanded, err := paths.ExpandHome(dir)
		if err != nil {
			return errors.Wrap(err, "manifest_dirs")
		}
		c.ManifestDirs[i] = expanded
	}
	expanded, err := paths.ExpandHome(c.StateFile)
	if err != nil {
		return errors.Wrap(err, "state_file")
	}
	c.StateFile = expanded
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())
