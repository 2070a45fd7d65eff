package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/liner/internal/resolve"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := loadFrom(nil)
	require.NoError(t, err)

	assert.Equal(t, resolve.DefaultWeights(), cfg.Scoring)
	assert.Equal(t, 0.5, cfg.Lookup.MinConfidence)
	assert.NotEmpty(t, cfg.FailureLog)
	assert.False(t, cfg.HasLastfmConfig())
}

func TestLoadFrom_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
failure_log = "/tmp/liner-failures.ndjson"

[scoring]
confidence_floor = 70.0

[lookup]
min_confidence = 0.6

[lastfm]
api_key = "key"
api_secret = "secret"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := loadFrom([]string{path})
	require.NoError(t, err)

	assert.Equal(t, "/tmp/liner-failures.ndjson", cfg.FailureLog)
	assert.Equal(t, 70.0, cfg.Scoring.ConfidenceFloor)
	// Weights not present in the file keep their defaults.
	assert.Equal(t, resolve.DefaultWeights().GroupTitleSim, cfg.Scoring.GroupTitleSim)
	assert.Equal(t, 0.6, cfg.Lookup.MinConfidence)
	assert.True(t, cfg.HasLastfmConfig())
}

func TestLoadFrom_LaterFileWins(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.toml")
	override := filepath.Join(dir, "override.toml")
	require.NoError(t, os.WriteFile(base, []byte("failure_log = \"/tmp/base.ndjson\"\n"), 0o644))
	require.NoError(t, os.WriteFile(override, []byte("failure_log = \"/tmp/override.ndjson\"\n"), 0o644))

	cfg, err := loadFrom([]string{base, override})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/override.ndjson", cfg.FailureLog)
}

func TestLoadFrom_InvalidMinConfidenceFallsBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[lookup]\nmin_confidence = 3.0\n"), 0o644))

	cfg, err := loadFrom([]string{path})
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Lookup.MinConfidence)
}
