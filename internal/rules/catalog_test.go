package rules_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codesage/code-sage/internal/domain"
	"github.com/codesage/code-sage/internal/rules"
)

func TestNewCatalogContainsBuiltins(t *testing.T) {
	catalog := rules.NewCatalog()
	assert.Greater(t, catalog.Len(), 0)

	var found *rules.Rule
	for _, rule := range catalog.All() {
		if rule.ID == "hardcoded-password" {
			r := rule
			found = &r
			break
		}
	}
	require.NotNil(t, found, "hardcoded-password should be a builtin rule")
	assert.Equal(t, domain.SeverityCritical, found.Severity)
	assert.Equal(t, domain.CategorySecurity, found.Category)
	assert.True(t, found.AppliesTo("python"))

	// Case-insensitive pattern matches uppercase assignments too
	assert.True(t, found.Pattern.MatchString(`PASSWORD = "hunter2"`))
}

func TestAddRejectsBadPattern(t *testing.T) {
	catalog := rules.NewCatalog()
	before := catalog.Len()

	err := catalog.Add(rules.Spec{
		ID:        "broken",
		Pattern:   `([unclosed`,
		Severity:  "low",
		Category:  "style",
		Languages: []string{"python"},
	})

	assert.Error(t, err)
	assert.Equal(t, before, catalog.Len(), "catalog should be unchanged after a failed add")
}

func TestAddRejectsUnknownSeverity(t *testing.T) {
	catalog := rules.NewCatalog()
	err := catalog.Add(rules.Spec{
		ID:        "bad-severity",
		Pattern:   `x`,
		Severity:  "urgent",
		Category:  "style",
		Languages: []string{"python"},
	})
	assert.Error(t, err)
}

func TestForLanguageFiltersAndPreservesOrder(t *testing.T) {
	catalog := rules.NewCatalog()
	require.NoError(t, catalog.Add(rules.Spec{
		ID:        "go-only",
		Pattern:   `panic\(`,
		Severity:  "low",
		Category:  "best_practice",
		Languages: []string{"go"},
	}))

	pyRules := catalog.ForLanguage("python")
	for _, rule := range pyRules {
		assert.NotEqual(t, "go-only", rule.ID)
	}

	goRules := catalog.ForLanguage("go")
	require.NotEmpty(t, goRules)
	assert.Equal(t, "go-only", goRules[len(goRules)-1].ID, "user rules extend, never replace, builtins")
}

func TestLoadFileAndExtend(t *testing.T) {
	// Given a rule file with one valid and one malformed entry
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	content := `rules:
  - id: no-sleep
    name: Sleep In Production Code
    pattern: 'time\.sleep\('
    severity: low
    category: performance
    languages: [python]
    message: Blocking sleep call
  - id: broken-rule
    pattern: '([bad'
    severity: low
    category: style
    languages: [python]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	specs, err := rules.LoadFile(path)
	require.NoError(t, err)
	require.Len(t, specs, 2)

	// When the specs extend the builtin catalog
	catalog := rules.NewCatalog()
	before := catalog.Len()
	skipped := catalog.Extend(specs)

	// Then the valid rule is registered and the malformed one is skipped
	assert.Equal(t, before+1, catalog.Len())
	assert.Len(t, skipped, 1)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := rules.LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
