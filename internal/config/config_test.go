package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mabhi256/migration-analyzer/internal/bytecode"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "text", cfg.OutputType)
	assert.Positive(t, cfg.Concurrency)
	assert.Equal(t, bytecode.DefaultAPIPackages, cfg.Rules.RuleConfig().APIPackages)
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
output_type: html
output_path: out/report.html
exclude:
  - "**/test/**"
  - "*-sources.jar"
concurrency: 3
fail_fast: true
rules:
  api_packages: [javax.ejb]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "html", cfg.OutputType)
	assert.Equal(t, "out/report.html", cfg.OutputPath)
	assert.Equal(t, []string{"**/test/**", "*-sources.jar"}, cfg.Exclude)
	assert.Equal(t, 3, cfg.Concurrency)
	assert.True(t, cfg.FailFast)
	assert.Equal(t, "warn", cfg.LogLevel, "unset keys keep their defaults")
	assert.Equal(t, []string{"javax.ejb"}, cfg.Rules.APIPackages)
	assert.Equal(t, bytecode.DefaultDeprecatedAPIs, cfg.Rules.DeprecatedAPIs)
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMissing(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err, "the default file is optional")
	assert.Equal(t, Default(), cfg)

	_, err = Load("nope.yaml")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadDefaultPath(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile(DefaultPath, []byte("output_type: xml\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "xml", cfg.OutputType)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown key", "output_typ: html\n", "failed to parse config file"},
		{"bad type", "concurrency: many\n", "failed to parse config file"},
		{"negative concurrency", "concurrency: -1\n", "concurrency must be >= 0"},
		{"empty output type", "output_type: \"\"\n", "output_type must not be empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
