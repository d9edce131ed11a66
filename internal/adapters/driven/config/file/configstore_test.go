package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
[storage]
backend = "sqlite"
data_dir = "/var/lib/extracto"

[server]
addr = ":9090"
events_per_second = 5

[routing]
real_estate_sites = ["urbania", "adondevivir", "properati"]

[intake]
events_per_second = 2.5
concurrency = 8
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestNewConfigStore_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")

	store, err := NewConfigStore(path)

	require.NoError(t, err)
	assert.Equal(t, path, store.Path())
	_, ok := store.Get("storage.backend")
	assert.False(t, ok)
}

func TestNewConfigStore_DefaultPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot determine home directory")
	}
	if _, err := os.Stat(filepath.Join(home, DefaultDir, "config.toml")); err == nil {
		t.Skip("a real config exists")
	}

	store, err := NewConfigStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".extracto", "config.toml"), store.Path())
}

func TestConfigStore_FlattensTables(t *testing.T) {
	store, err := NewConfigStore(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", store.GetString("storage.backend"))
	assert.Equal(t, "/var/lib/extracto", store.GetString("storage.data_dir"))
	assert.Equal(t, ":9090", store.GetString("server.addr"))
	assert.Equal(t, 8, store.GetInt("intake.concurrency"))
	assert.Equal(t, []string{"urbania", "adondevivir", "properati"}, store.GetStringSlice("routing.real_estate_sites"))
}

func TestConfigStore_GetFloat(t *testing.T) {
	store, err := NewConfigStore(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 5.0, store.GetFloat("server.events_per_second"))
	assert.Equal(t, 2.5, store.GetFloat("intake.events_per_second"))
	assert.Zero(t, store.GetFloat("storage.backend"))
	assert.Zero(t, store.GetFloat("missing"))
}

func TestConfigStore_WrongTypes(t *testing.T) {
	store, err := NewConfigStore(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Empty(t, store.GetString("intake.concurrency"))
	assert.Zero(t, store.GetInt("storage.backend"))
	assert.Nil(t, store.GetStringSlice("server.addr"))
}

func TestConfigStore_Reload(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	store, err := NewConfigStore(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("[storage]\nbackend = \"mongo\"\n"), 0600))
	require.NoError(t, store.Load())

	assert.Equal(t, "mongo", store.GetString("storage.backend"))
	assert.Empty(t, store.GetString("server.addr"))
}

func TestNewConfigStore_InvalidTOML(t *testing.T) {
	_, err := NewConfigStore(writeConfig(t, "[storage\nbackend ="))
	assert.Error(t, err)
}
