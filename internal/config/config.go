// Package config provides configuration loading and management for taskq.
package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Default locations, relative to the working directory.
const (
	DefaultDir      = ".taskq"
	DefaultTaskFile = "tareas.json"
	DefaultDatabase = "taskq.db"
)

// Config is the root configuration.
type Config struct {
	Storage StorageConfig `json:"storage" mapstructure:"storage"`
	Log     LogConfig     `json:"log"     mapstructure:"log"`
}

// StorageConfig selects where tasks are persisted.
type StorageConfig struct {
	Backend     string        `json:"backend"                mapstructure:"backend"`
	Path        string        `json:"path,omitempty"         mapstructure:"path"`
	Format      string        `json:"format,omitempty"       mapstructure:"format"`
	LockTimeout time.Duration `json:"lock_timeout,omitempty" mapstructure:"lock_timeout"`
}

// LogConfig controls log output.
type LogConfig struct {
	Format string `json:"format" mapstructure:"format"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("storage.backend", BackendFile)
	v.SetDefault("storage.path", "")
	v.SetDefault("storage.format", "")
	v.SetDefault("storage.lock_timeout", "5s")
	v.SetDefault("log.format", "console")
}

// Decode validates the settings held by v and decodes them into a Config.
func Decode(v *viper.Viper) (Config, error) {
	if err := ValidateSettings(v.AllSettings()); err != nil {
		return Config{}, err
	}
	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		trimStringHook(),
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.Storage.Backend = strings.ToLower(cfg.Storage.Backend)
	return cfg, nil
}

// StoragePath returns the configured storage path resolved against root.
// An empty path selects the backend default.
func (c Config) StoragePath(root string) string {
	path := c.Storage.Path
	if path == "" {
		switch c.Storage.Backend {
		case BackendSQLite:
			path = filepath.Join(DefaultDir, DefaultDatabase)
		default:
			path = DefaultTaskFile
		}
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	return path
}

func trimStringHook() mapstructure.DecodeHookFuncKind {
	return func(from, to reflect.Kind, data any) (any, error) {
		if from != reflect.String || to != reflect.String {
			return data, nil
		}
		return strings.TrimSpace(data.(string)), nil
	}
}
