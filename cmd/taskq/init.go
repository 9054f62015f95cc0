package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/metalagman/taskq/internal/config"
)

// defaultConfig is the config installed by init.
var defaultConfig = config.Config{
	Storage: config.StorageConfig{Backend: config.BackendFile},
	Log:     config.LogConfig{Format: "console"},
}

func initCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Install a default config in the current directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := a.cfgFile
			if path == "" {
				path = defaultConfigPath
			}
			if !filepath.IsAbs(path) {
				path = filepath.Join(a.root, path)
			}
			if _, err := os.Stat(path); err == nil {
				log.Info().Str("path", path).Msg("config already exists, skipping")
				return nil
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("create config dir: %w", err)
			}
			data, err := json.MarshalIndent(defaultConfig, "", "  ")
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			log.Info().Str("path", path).Msg("installed default config")
			return nil
		},
	}
}
