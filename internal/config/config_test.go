package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/codesage/code-sage/internal/config"
)

func TestConfigYAMLTags(t *testing.T) {
	doc := `
analysis:
  maxWorkers: 6
  maxComplexity: 12
  maxFunctionLength: 40
  maxParameters: 4
  minSeverity: low
  exclude:
    - vendor/*
security:
  enabled: true
  entropyThreshold: 4.0
rules:
  customRulesFile: rules.yaml
output:
  format: sarif
  directory: out
store:
  enabled: true
  path: /tmp/history.db
ai:
  enabled: true
  endpoint: https://api.example.com/v1/chat/completions
  model: gpt-4o-mini
  maxIssues: 5
  timeout: 45s
logging:
  enabled: true
  level: debug
  format: json
`

	var cfg config.Config
	require.NoError(t, yaml.Unmarshal([]byte(doc), &cfg))

	assert.Equal(t, 6, cfg.Analysis.MaxWorkers)
	assert.Equal(t, 12, cfg.Analysis.MaxComplexity)
	assert.Equal(t, 40, cfg.Analysis.MaxFunctionLength)
	assert.Equal(t, 4, cfg.Analysis.MaxParameters)
	assert.Equal(t, "low", cfg.Analysis.MinSeverity)
	assert.Equal(t, []string{"vendor/*"}, cfg.Analysis.Exclude)
	assert.InDelta(t, 4.0, cfg.Security.EntropyThreshold, 0.001)
	assert.Equal(t, "rules.yaml", cfg.Rules.CustomRulesFile)
	assert.Equal(t, "sarif", cfg.Output.Format)
	assert.Equal(t, "/tmp/history.db", cfg.Store.Path)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.Model)
	assert.Equal(t, 5, cfg.AI.MaxIssues)
	assert.Equal(t, "45s", cfg.AI.Timeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}
