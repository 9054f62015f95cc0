package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestDecode_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := Decode(newViper())
	require.NoError(t, err)
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, 5*time.Second, cfg.Storage.LockTimeout)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, filepath.Join("/work", "tareas.json"), cfg.StoragePath("/work"))
}

func TestDecode_ReadsConfigFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
  "storage": {"backend": "sqlite", "lock_timeout": "250ms"},
  "log": {"format": "json"}
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	v := newViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Decode(v)
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, 250*time.Millisecond, cfg.Storage.LockTimeout)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, filepath.Join("/work", DefaultDir, "taskq.db"), cfg.StoragePath("/work"))
}

func TestDecode_YAMLConfigAndAbsolutePath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "storage:\n  path: /var/lib/taskq/tasks.yaml\n  format: yaml\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	v := newViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Decode(v)
	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.Storage.Format)
	assert.Equal(t, "/var/lib/taskq/tasks.yaml", cfg.StoragePath("/work"))
}

func TestDecode_EnvOverride(t *testing.T) {
	t.Setenv("TASKQ_STORAGE_BACKEND", "sqlite")

	v := newViper()
	v.SetEnvPrefix("TASKQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg, err := Decode(v)
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
}

func TestDecode_RejectsInvalidSettings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		key   string
		value any
		field string
	}{
		{name: "unknown backend", key: "storage.backend", value: "postgres", field: "storage.backend"},
		{name: "unknown format", key: "storage.format", value: "xml", field: "storage.format"},
		{name: "bad duration", key: "storage.lock_timeout", value: "soon", field: "storage.lock_timeout"},
		{name: "unitless duration", key: "storage.lock_timeout", value: 5, field: "storage.lock_timeout"},
		{name: "unknown log format", key: "log.format", value: "xml", field: "log.format"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			v := newViper()
			v.Set(tc.key, tc.value)
			_, err := Decode(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.field)
		})
	}
}

func TestDecode_AcceptsTOMLFormat(t *testing.T) {
	t.Parallel()

	v := newViper()
	v.Set("storage.format", "toml")
	cfg, err := Decode(v)
	require.NoError(t, err)
	assert.Equal(t, "toml", cfg.Storage.Format)
}

func TestValidateSettings_UnknownStorageKey(t *testing.T) {
	t.Parallel()

	err := ValidateSettings(map[string]any{
		"storage": map[string]any{"backend": "file", "bucket": "x"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket")
}
