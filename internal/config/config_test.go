package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr)
	assert.Equal(t, "data/followgraph.db", cfg.Database.Path)
	assert.Equal(t, 10, cfg.Reconcile.IntervalMinutes)
	assert.Equal(t, "graph-snapshots", cfg.Storage.KeyPrefix)
	assert.Equal(t, "us-east-1", cfg.Storage.Region)
	assert.Empty(t, cfg.Storage.Bucket)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("FOLLOWGRAPH_SERVER_ADDR", "127.0.0.1:9090")
	t.Setenv("FOLLOWGRAPH_STORAGE_BUCKET", "graph-backups")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr)
	assert.Equal(t, "graph-backups", cfg.Storage.Bucket)
}
