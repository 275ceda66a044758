package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/julianstephens/sundown/internal/constants"
	"github.com/julianstephens/sundown/internal/errors"
)

var userConfigDirFunc = os.UserConfigDir

type Config struct {
	StorePath           string `mapstructure:"store_path"`
	ShutdownCommand     string `mapstructure:"shutdown_command"`
	NotifyCommand       string `mapstructure:"notify_command"`
	PopupTimeoutSeconds int    `mapstructure:"popup_timeout_seconds"`
	DryRun              bool   `mapstructure:"dry_run"`
	Debug               bool   `mapstructure:"debug"`
	LogDir              string `mapstructure:"log_dir"`

	// ConfigFile is the file that was read, empty when none was found
	ConfigFile string `mapstructure:"-"`
}

// Overrides are the command-line values. Zero values leave the lower layers
// untouched.
type Overrides struct {
	ConfigFile string
	StorePath  string
	DryRun     bool
	Debug      bool
}

func (c *Config) PopupTimeout() time.Duration {
	return time.Duration(c.PopupTimeoutSeconds) * time.Second
}

// Dir returns the per-user sundown configuration directory
func Dir() (string, error) {
	dir, err := userConfigDirFunc()
	if err != nil {
		return "", errors.Wrap(err, "failed to get user config dir")
	}
	return filepath.Join(dir, constants.AppName), nil
}

// Load resolves the configuration.
// Order of precedence: defaults < config file < env vars < cmd flags.
func Load(o Overrides) (*Config, error) {
	v := viper.New()

	configDir, dirErr := Dir()

	v.SetDefault("store_path", constants.DefaultStoreFile)
	v.SetDefault("shutdown_command", "")
	v.SetDefault("notify_command", "")
	v.SetDefault("popup_timeout_seconds", int(constants.DefaultPopupTimeout/time.Second))
	v.SetDefault("dry_run", false)
	v.SetDefault("debug", false)
	if dirErr == nil {
		v.SetDefault("log_dir", filepath.Join(configDir, "logs"))
	} else {
		v.SetDefault("log_dir", filepath.Join(os.TempDir(), constants.AppName, "logs"))
	}

	if o.ConfigFile != "" {
		v.SetConfigFile(o.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WithHintf(errors.Wrap(err, "failed to read config file"), "check %s", o.ConfigFile)
		}
	} else if dirErr == nil {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(configDir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Wrap(err, "failed to read config file")
			}
		}
	}

	v.SetEnvPrefix("SUNDOWN")
	v.AutomaticEnv()

	if o.StorePath != "" {
		v.Set("store_path", o.StorePath)
	}
	if o.DryRun {
		v.Set("dry_run", true)
	}
	if o.Debug {
		v.Set("debug", true)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	cfg.ConfigFile = v.ConfigFileUsed()

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.PopupTimeoutSeconds <= 0 {
		return errors.WithHint(
			errors.Newf("popup_timeout_seconds must be > 0, got %d", cfg.PopupTimeoutSeconds),
			"set popup_timeout_seconds to a positive number of seconds",
		)
	}
	if cfg.StorePath == "" {
		return errors.New("store_path must not be empty")
	}
	return nil
}
