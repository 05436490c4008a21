// Package config holds the runtime options of the form compiler.
package config

import (
	"github.com/reoring/formskema/logger"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "FORMSKEMA_"

// Config is the runtime configuration.
type Config struct {
	Log       LogConfig       `koanf:"log"       json:"log"       yaml:"log"`
	Expr      ExprConfig      `koanf:"expr"      json:"expr"      yaml:"expr"`
	Compiler  CompilerConfig  `koanf:"compiler"  json:"compiler"  yaml:"compiler"`
	Reconcile ReconcileConfig `koanf:"reconcile" json:"reconcile" yaml:"reconcile"`
	// DevMode enables advisory diagnostics such as override mismatches.
	DevMode bool `koanf:"dev_mode" json:"dev_mode" yaml:"dev_mode"`
}

type LogConfig struct {
	Level     logger.LogLevel `koanf:"level"      json:"level"      yaml:"level"      validate:"oneof=debug info warn error disabled"`
	JSON      bool            `koanf:"json"       json:"json"       yaml:"json"`
	AddSource bool            `koanf:"add_source" json:"add_source" yaml:"add_source"`
}

type ExprConfig struct {
	CostLimit uint64 `koanf:"cost_limit" json:"cost_limit" yaml:"cost_limit" validate:"gt=0"`
	CacheSize int64  `koanf:"cache_size" json:"cache_size" yaml:"cache_size" validate:"gt=0"`
}

type CompilerConfig struct {
	// CacheSize is the number of compiled forms kept.
	CacheSize int `koanf:"cache_size" json:"cache_size" yaml:"cache_size" validate:"gt=0"`
}

type ReconcileConfig struct {
	// MaxConcurrency bounds parallel item resolution; 0 is unbounded.
	MaxConcurrency int `koanf:"max_concurrency" json:"max_concurrency" yaml:"max_concurrency" validate:"gte=0"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level: logger.InfoLevel,
		},
		Expr: ExprConfig{
			CostLimit: 1000,
			CacheSize: 1000,
		},
		Compiler: CompilerConfig{
			CacheSize: 128,
		},
		Reconcile: ReconcileConfig{
			MaxConcurrency: 0,
		},
	}
}

// LoggerConfig converts the log section into a logger configuration.
func (c *Config) LoggerConfig() *logger.Config {
	lc := logger.DefaultConfig()
	lc.Level = c.Log.Level
	lc.JSON = c.Log.JSON
	lc.AddSource = c.Log.AddSource
	return lc
}
