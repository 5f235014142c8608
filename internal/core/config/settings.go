package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix scopes environment overrides, e.g. LAYERGUARD_WORKERS=4.
const EnvPrefix = "LAYERGUARD"

// Settings are runtime knobs that do not belong in the architecture document.
// They come from flags, LAYERGUARD_* variables and an optional settings file.
type Settings struct {
	Config       string        `mapstructure:"config"`
	Workers      int           `mapstructure:"workers"`
	LogLevel     string        `mapstructure:"log-level"`
	Format       string        `mapstructure:"format"`
	HistoryPath  string        `mapstructure:"history-path"`
	MetricsAddr  string        `mapstructure:"metrics-addr"`
	OTLPEndpoint string        `mapstructure:"otlp-endpoint"`
	Debounce     time.Duration `mapstructure:"debounce"`
}

func setSettingDefaults(v *viper.Viper) {
	v.SetDefault("workers", runtime.GOMAXPROCS(0))
	v.SetDefault("log-level", "info")
	v.SetDefault("format", "text")
	v.SetDefault("history-path", ".layerguard/history.db")
	v.SetDefault("debounce", 300*time.Millisecond)
}

// LoadSettings merges defaults, an optional settings file, environment and
// the given flag set, later sources winning.
func LoadSettings(flags *pflag.FlagSet, settingsFile string) (Settings, error) {
	v := viper.New()
	setSettingDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if settingsFile != "" {
		v.SetConfigFile(settingsFile)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("reading settings: %w", err)
		}
	}
	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Settings{}, fmt.Errorf("binding flags: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("unmarshalling settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate rejects settings the runtime cannot honour.
func (s Settings) Validate() error {
	if s.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", s.Workers)
	}
	switch strings.ToLower(s.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log-level must be one of: debug, info, warn, error (got %q)", s.LogLevel)
	}
	switch s.Format {
	case "text", "pretty", "json", "sarif":
	default:
		return fmt.Errorf("format must be one of: text, pretty, json, sarif (got %q)", s.Format)
	}
	if s.Debounce < 0 {
		return fmt.Errorf("debounce must not be negative")
	}
	return nil
}
