package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig drops a config file with the given name into a fresh temp
// directory and returns the directory.
func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	return dir
}

func TestLoad_ReadsYamlFile(t *testing.T) {
	dir := writeConfig(t, "wayplan.yml", `
geminiApiKey: file-key
weatherApiKey: wx-key
addr: ":9090"
tripLogDir: logs
defaultTripDays: 5
advisoryRainThreshold: 60
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "file-key", cfg.GeminiAPIKey)
	assert.Equal(t, "wx-key", cfg.WeatherAPIKey)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "logs", cfg.TripLogDir)
	assert.Equal(t, 5, cfg.DefaultTripDays)
	assert.Equal(t, 60, cfg.AdvisoryRainThreshold)
}

func TestLoad_PrefersYmlOverYaml(t *testing.T) {
	dir := writeConfig(t, "wayplan.yml", "addr: \":1111\"\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wayplan.yaml"), []byte("addr: \":2222\"\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, ":1111", cfg.Addr)
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.Equal(t, DefaultTripLogDir, cfg.TripLogDir)
	assert.Empty(t, cfg.GeminiAPIKey)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	dir := writeConfig(t, "wayplan.yml", "geminiApiKey: file-key\nmongoUri: mongodb://file\n")

	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("MONGODB_URI", "mongodb://env:27017")
	t.Setenv("WAYPLAN_ADDR", ":7000")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.GeminiAPIKey)
	assert.Equal(t, "mongodb://env:27017", cfg.MongoURI)
	assert.Equal(t, ":7000", cfg.Addr)
}

func TestLoad_MalformedYamlReturnsError(t *testing.T) {
	dir := writeConfig(t, "wayplan.yml", "addr: [unclosed\n")

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: parse")
}
