package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultToolsConfig(t *testing.T) {
	cfg := DefaultToolsConfig()

	names := make([]string, 0, len(cfg.Tools))
	for _, tool := range cfg.Tools {
		names = append(names, tool.Name)

		var schema map[string]interface{}
		require.NoError(t, json.Unmarshal(tool.Parameters, &schema), tool.Name)
		assert.Equal(t, "object", schema["type"], tool.Name)
		assert.Contains(t, schema["required"], "year", tool.Name)
	}

	assert.Equal(t, []string{
		"get_race_schedule",
		"get_session_results",
		"get_driver_standings",
		"get_constructor_standings",
		"get_lap_times",
	}, names)

	_, ok := cfg.Find("get_lap_times")
	assert.True(t, ok)
	_, ok = cfg.Find("get_weather")
	assert.False(t, ok)
}

func TestLoadToolsConfig(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "tools.json")
	require.NoError(t, os.WriteFile(valid, []byte(`{"tools":[{"name":"ping","description":"","parameters":{"type":"object"}}]}`), 0o600))

	cfg, err := LoadToolsConfig(valid)
	require.NoError(t, err)
	assert.Len(t, cfg.Tools, 1)

	noSchema := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(noSchema, []byte(`{"tools":[{"name":"ping"}]}`), 0o600))

	_, err = LoadToolsConfig(noSchema)
	assert.Error(t, err)

	_, err = LoadToolsConfig(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestGetToolsConfig(t *testing.T) {
	dir := t.TempDir()
	custom := filepath.Join(dir, "tools.json")
	require.NoError(t, os.WriteFile(custom, []byte(`{"tools":[{"name":"get_race_schedule","description":"","parameters":{"type":"object"}}]}`), 0o600))

	tests := []struct {
		name      string
		path      string
		wantTools int
	}{
		{"unset uses embedded catalog", "", 5},
		{"file is loaded", custom, 1},
		{"unreadable file falls back", filepath.Join(dir, "missing.json"), 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TOOLS_CONFIG", tt.path)
			assert.Len(t, GetToolsConfig().Tools, tt.wantTools)
		})
	}
}
