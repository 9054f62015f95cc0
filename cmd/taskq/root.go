package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/metalagman/taskq/internal/config"
	"github.com/metalagman/taskq/internal/logging"
)

var defaultConfigPath = filepath.Join(config.DefaultDir, "config.json")

// app carries per-invocation state shared by subcommands.
type app struct {
	v       *viper.Viper
	cfgFile string
	debug   bool
	root    string
	cfg     config.Config
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	cmd := &cobra.Command{
		Use:           "taskq",
		Short:         "taskq keeps a priority-ordered list of dependent tasks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", defaultConfigPath, "config file path")
	flags.BoolVar(&a.debug, "debug", false, "enable debug logging")
	flags.String("storage", config.BackendFile, "storage backend (file|sqlite)")
	flags.String("path", "", "task storage path")
	for key, name := range map[string]string{
		"storage.backend": "storage",
		"storage.path":    "path",
	} {
		if err := a.v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind %s flag: %v", name, err))
		}
	}

	cmd.AddCommand(
		initCmd(a),
		addCmd(a),
		listCmd(a),
		doneCmd(a),
		nextCmd(a),
		menuCmd(a),
	)
	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	root, err := os.Getwd()
	if err != nil {
		return err
	}
	a.root = root

	if err := godotenv.Load(filepath.Join(root, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	a.v.SetEnvPrefix("TASKQ")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()
	config.SetDefaults(a.v)

	explicit := cmd.Flags().Changed("config") && cmd.Name() != "init"
	if err := a.readConfigFile(explicit); err != nil {
		return err
	}
	cfg, err := config.Decode(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logging.Init(a.debug, cfg.Log.Format)
	log.Debug().Str("backend", cfg.Storage.Backend).Str("path", cfg.StoragePath(root)).Msg("config loaded")
	return nil
}

// readConfigFile merges the config file into viper. A missing default file
// is not an error; a missing file requested with --config is.
func (a *app) readConfigFile(explicit bool) error {
	path := a.cfgFile
	if path == "" {
		path = defaultConfigPath
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(a.root, path)
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("config file: %w", err)
	}
	a.v.SetConfigFile(path)
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext == "" {
		a.v.SetConfigType("json")
	}
	if err := a.v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
}
