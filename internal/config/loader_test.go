package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandEnvString(t *testing.T) {
	os.Setenv("TEST_API_KEY", "secret-key-123")
	os.Setenv("TEST_PATH", "/path/to/data")
	defer os.Unsetenv("TEST_API_KEY")
	defer os.Unsetenv("TEST_PATH")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "expand ${VAR} syntax",
			input:    "${TEST_API_KEY}",
			expected: "secret-key-123",
		},
		{
			name:     "expand $VAR syntax",
			input:    "$TEST_API_KEY",
			expected: "secret-key-123",
		},
		{
			name:     "expand in middle of string",
			input:    "key:${TEST_API_KEY}:end",
			expected: "key:secret-key-123:end",
		},
		{
			name:     "leave non-existent var unchanged",
			input:    "${NONEXISTENT_VAR}",
			expected: "${NONEXISTENT_VAR}",
		},
		{
			name:     "handle empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "handle string without variables",
			input:    "plain-text",
			expected: "plain-text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandEnvString(tt.input))
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(LoaderOptions{ConfigPaths: []string{t.TempDir()}})

	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Analysis.MaxWorkers)
	assert.Equal(t, 10, cfg.Analysis.MaxComplexity)
	assert.Equal(t, 50, cfg.Analysis.MaxFunctionLength)
	assert.Equal(t, 5, cfg.Analysis.MaxParameters)
	assert.Equal(t, "info", cfg.Analysis.MinSeverity)
	assert.True(t, cfg.Security.Enabled)
	assert.InDelta(t, 4.5, cfg.Security.EntropyThreshold, 0.001)
	assert.Equal(t, "console", cfg.Output.Format)
	assert.False(t, cfg.AI.Enabled)
	assert.Equal(t, 10, cfg.AI.MaxIssues)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
analysis:
  maxWorkers: 8
  minSeverity: medium
  exclude:
    - "*_test.py"
security:
  enabled: false
output:
  format: json
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sage.yaml"), []byte(content), 0o644))

	cfg, err := Load(LoaderOptions{ConfigPaths: []string{dir}})

	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Analysis.MaxWorkers)
	assert.Equal(t, "medium", cfg.Analysis.MinSeverity)
	assert.Equal(t, []string{"*_test.py"}, cfg.Analysis.Exclude)
	assert.False(t, cfg.Security.Enabled)
	assert.Equal(t, "json", cfg.Output.Format)

	// Untouched sections keep their defaults.
	assert.Equal(t, 10, cfg.Analysis.MaxComplexity)
}

func TestLoadExpandsAPIKey(t *testing.T) {
	dir := t.TempDir()
	content := `
ai:
  enabled: true
  apiKey: ${SAGE_TEST_KEY}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sage.yaml"), []byte(content), 0o644))

	os.Setenv("SAGE_TEST_KEY", "from-env")
	defer os.Unsetenv("SAGE_TEST_KEY")

	cfg, err := Load(LoaderOptions{ConfigPaths: []string{dir}})

	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.AI.APIKey)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sage.yaml"), []byte("analysis: [not a map"), 0o644))

	_, err := Load(LoaderOptions{ConfigPaths: []string{dir}})

	assert.Error(t, err)
}

func TestLocateConfigFilePrefersEarlierPaths(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(first, "sage.yaml"), []byte("output:\n  format: json\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(second, "sage.yaml"), []byte("output:\n  format: sarif\n"), 0o644))

	found := locateConfigFile("sage", []string{first, second})

	assert.Equal(t, filepath.Join(first, "sage.yaml"), found)
}
