package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "temp_humid_data.xlsx", c.Source)
	assert.Equal(t, "Sheet3", c.Sheet)
	assert.Equal(t, ":8080", c.Addr)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "console", c.LogFormat)
	assert.Equal(t, "charts", c.ChartDir)
}

func TestLoadFileAndEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("source: data.csv\nsheet: data\naddr: \":9000\"\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "data.csv", c.Source)
	assert.Equal(t, "data", c.Sheet)
	assert.Equal(t, ":9000", c.Addr)

	t.Setenv("PESTWATCH_ADDR", ":7000")
	t.Setenv("PESTWATCH_LOG_LEVEL", "DEBUG")
	c, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", c.Addr)
	assert.Equal(t, "debug", c.LogLevel)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_format: xml\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	c, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, c.Set("sheet", "Sheet1"))
	require.NoError(t, c.Set("log_format", "JSON"))
	require.NoError(t, Save(c, path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Sheet1", got.Sheet)
	assert.Equal(t, "json", got.LogFormat)
}

func TestSetAndGet(t *testing.T) {
	c := &Global{Source: "a.xlsx", Addr: ":1", LogLevel: "info", LogFormat: "console"}
	assert.Error(t, c.Set("nope", "x"))
	assert.Error(t, c.Set("log_level", "loud"))
	assert.Equal(t, "info", c.LogLevel, "failed Set leaves config unchanged")
	assert.Error(t, c.Set("source", ""))

	for _, k := range Keys {
		_, err := c.Get(k)
		assert.NoError(t, err, k)
	}
	_, err := c.Get("nope")
	assert.Error(t, err)
}
