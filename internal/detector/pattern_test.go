package detector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codesage/code-sage/internal/detector"
	"github.com/codesage/code-sage/internal/domain"
	"github.com/codesage/code-sage/internal/rules"
)

func TestMatchFileHardcodedPassword(t *testing.T) {
	// Given
	patterns := detector.NewPatternDetector(rules.NewCatalog())
	content := "import os\n\npassword = \"super_secret_123\"\n"

	// When
	issues := patterns.MatchFile("app/settings.py", content, "python")

	// Then
	var hit *domain.Issue
	for _, issue := range issues {
		if issue.RuleID == "hardcoded-password" {
			i := issue
			hit = &i
			break
		}
	}
	require.NotNil(t, hit, "expected a hardcoded-password issue")
	assert.Equal(t, domain.SeverityCritical, hit.Severity)
	assert.Equal(t, domain.CategorySecurity, hit.Category)
	assert.Equal(t, 3, hit.Location.LineStart)
	assert.Equal(t, "app/settings.py", hit.Location.File)
}

func TestMatchFileLanguageFilter(t *testing.T) {
	patterns := detector.NewPatternDetector(rules.NewCatalog())

	// debug-print is a Python-only rule; the same text in a Go file
	// must not match even though the pattern would.
	issues := patterns.MatchFile("main.go", "print(\"debug\")\n", "go")
	for _, issue := range issues {
		assert.NotEqual(t, "debug-print", issue.RuleID)
	}

	issues = patterns.MatchFile("main.py", "print(\"debug\")\n", "python")
	found := false
	for _, issue := range issues {
		if issue.RuleID == "debug-print" {
			found = true
			assert.True(t, issue.AutoFixable)
		}
	}
	assert.True(t, found)
}

func TestMatchFileMultipleMatchesPerLine(t *testing.T) {
	catalog := rules.NewCatalog()
	require.NoError(t, catalog.Add(rules.Spec{
		ID:        "magic-number",
		Name:      "Magic Number",
		Pattern:   `\b42\b`,
		Severity:  "info",
		Category:  "style",
		Languages: []string{"python"},
		Message:   "Magic number",
	}))
	patterns := detector.NewPatternDetector(catalog)

	issues := patterns.MatchFile("m.py", "x = 42 + 42\n", "python")

	matches := 0
	for _, issue := range issues {
		if issue.RuleID == "magic-number" {
			matches++
		}
	}
	assert.Equal(t, 2, matches, "each match offset produces a distinct issue")
}

func TestMatchFileColumns(t *testing.T) {
	patterns := detector.NewPatternDetector(rules.NewCatalog())
	issues := patterns.MatchFile("a.py", "  password = \"x\"\n", "python")

	require.NotEmpty(t, issues)
	assert.Equal(t, 3, issues[0].Location.ColumnStart)
	assert.Greater(t, issues[0].Location.ColumnEnd, issues[0].Location.ColumnStart)
}
