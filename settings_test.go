package deferred

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadSettings(t *testing.T) {
	path := writeSettings(t, `
width: 800
height: 600
light_count: 32
seed: 7
show_pos: true
gltf_model: models/duck.glb
`)
	s, err := LoadSettings(path)
	require.NoError(t, err)

	assert.Equal(t, 800, s.Width)
	assert.Equal(t, 600, s.Height)
	assert.Equal(t, 32, s.LightCount)
	assert.Equal(t, int64(7), s.Seed)
	assert.True(t, s.ShowPos)
	assert.Equal(t, "models/duck.glb", s.Model)

	assert.Equal(t, "deferred", s.Title, "missing keys keep defaults")
	assert.Equal(t, float64(DefaultHz), s.Hz)
	assert.False(t, s.ShowFPS)
}

func TestLoadSettings_Errors(t *testing.T) {
	_, err := LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading settings file")

	_, err = LoadSettings(writeSettings(t, "width: [1, 2]"))
	assert.ErrorContains(t, err, "parsing settings file")

	_, err = LoadSettings(writeSettings(t, "width: -1"))
	assert.ErrorContains(t, err, "invalid window size")

	_, err = LoadSettings(writeSettings(t, "hz: 0"))
	assert.ErrorContains(t, err, "invalid frequency")
}

func TestDefaultSettings_Valid(t *testing.T) {
	assert.NoError(t, DefaultSettings().Validate())
}
