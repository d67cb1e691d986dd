package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nycboard.dev/transit/config"
)

func writeConfig(t *testing.T, yaml string) string {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, 2, cfg.Board.MinMinutes)
	assert.Equal(t, 20, cfg.Board.MaxMinutes)
	assert.Equal(t, time.Duration(0), cfg.SubwayTimeout())
}

func TestLoadFile(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, `
tables:
  stationsPath: stations.csv
  routesPath: routes.csv
storage:
  driver: sqlite
  directory: /var/lib/transit
subway:
  timeoutMS: 5000
path:
  feedURL: https://rt.example.com/path
board:
  minMinutes: 0
  maxMinutes: 45
  limit: 12
`))
	require.NoError(t, err)

	assert.Equal(t, "stations.csv", cfg.Tables.StationsPath)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, 5*time.Second, cfg.SubwayTimeout())
	assert.Equal(t, "https://rt.example.com/path", cfg.PATH.FeedURL)
	assert.Equal(t, 0, cfg.Board.MinMinutes)
	assert.Equal(t, 45, cfg.Board.MaxMinutes)
	assert.Equal(t, 12, cfg.Board.Limit)
}

func TestLoadRejectsBadValues(t *testing.T) {
	_, err := config.Load(writeConfig(t, "storage:\n  driver: cassandra\n"))
	assert.Error(t, err)

	_, err = config.Load(writeConfig(t, "path:\n  feedURL: not-a-url\n"))
	assert.Error(t, err)

	_, err = config.Load(writeConfig(t, "subway:\n  timeoutMS: -5\n"))
	assert.Error(t, err)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestAPIKeysFromEnvironment(t *testing.T) {
	t.Setenv("MTA_API_KEY", "from-env")
	t.Setenv("TRANSIT_API_KEY", "also-from-env")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Subway.APIKey)
	assert.Equal(t, "also-from-env", cfg.TransitAPI.APIKey)

	// Explicit config wins over the environment.
	cfg, err = config.Load(writeConfig(t, "subway:\n  apiKey: explicit\n"))
	require.NoError(t, err)
	assert.Equal(t, "explicit", cfg.Subway.APIKey)
}
