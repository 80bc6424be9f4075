package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/njchilds90/logtower"
)

// config is the resolved server configuration. Flags win over LOGTOWER_*
// environment variables, which win over the config file.
type config struct {
	Port      int
	Threshold int
	MaxDegree int
	Rate      float64 // requests per second, 0 disables limiting
	Burst     int
	Timeout   time.Duration
	LogLevel  log.Level
}

func bindFlags(fs *pflag.FlagSet) {
	fs.Int("port", 8080, "Port to listen on")
	fs.Int("threshold", logtower.DefaultThreshold, "Highest degree computed by the closed double sum (-1: always convolution)")
	fs.Int("max-degree", logtower.DefaultMaxDegree, "Largest n accepted by a tool call")
	fs.Float64("rate", 20, "Tool calls per second (0 disables rate limiting)")
	fs.Int("burst", 40, "Rate limiter burst size")
	fs.Duration("timeout", 30*time.Second, "Deadline for a single tool call")
	fs.String("log-level", "info", "Log level: debug, info, warn, error")
}

func loadConfig(v *viper.Viper) (config, error) {
	level, err := log.ParseLevel(v.GetString("log-level"))
	if err != nil {
		return config{}, fmt.Errorf("log-level: %w", err)
	}
	cfg := config{
		Port:      v.GetInt("port"),
		Threshold: v.GetInt("threshold"),
		MaxDegree: v.GetInt("max-degree"),
		Rate:      v.GetFloat64("rate"),
		Burst:     v.GetInt("burst"),
		Timeout:   v.GetDuration("timeout"),
		LogLevel:  level,
	}
	switch {
	case cfg.Port <= 0 || cfg.Port > 65535:
		return config{}, fmt.Errorf("port %d out of range", cfg.Port)
	case cfg.Threshold < -1:
		return config{}, fmt.Errorf("threshold must be >= -1, got %d", cfg.Threshold)
	case cfg.MaxDegree < 0:
		return config{}, fmt.Errorf("max-degree must be >= 0, got %d", cfg.MaxDegree)
	case cfg.Rate < 0:
		return config{}, fmt.Errorf("rate must be >= 0, got %v", cfg.Rate)
	case cfg.Rate > 0 && cfg.Burst <= 0:
		return config{}, fmt.Errorf("burst must be > 0 when rate limiting is on")
	case cfg.Timeout <= 0:
		return config{}, fmt.Errorf("timeout must be positive")
	}
	return cfg, nil
}

func newViper(fs *pflag.FlagSet, configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("logtower")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", configFile, err)
		}
	}
	return v, nil
}
