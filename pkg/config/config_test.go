package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "indexdb.yaml")
	content := `
server:
  port: "9090"
  shutdown_timeout: 5s
storage:
  in_memory: true
  codec: json
index:
  create_on_demand: false
  declare:
    - ["date desc", "count"]
    - ["title"]
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.True(t, cfg.Storage.InMemory)
	assert.Equal(t, "json", cfg.Storage.Codec)
	assert.Equal(t, "records", cfg.Storage.Namespace)
	assert.False(t, cfg.Index.CreateOnDemand)
	assert.Equal(t, [][]string{{"date desc", "count"}, {"title"}}, cfg.Index.Declare)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	tests := []struct {
		name    string
		content string
	}{
		{name: "bad yaml", content: "server: [unclosed"},
		{name: "no path", content: "storage:\n  path: \"\"\n"},
		{name: "no namespace", content: "storage:\n  namespace: \"\"\n"},
		{name: "bad log format", content: "log:\n  format: xml\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "indexdb.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}
