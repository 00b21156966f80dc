package detector_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codesage/code-sage/internal/detector"
	"github.com/codesage/code-sage/internal/domain"
)

func findByRule(issues []domain.Issue, ruleID string) []domain.Issue {
	var found []domain.Issue
	for _, issue := range issues {
		if issue.RuleID == ruleID {
			found = append(found, issue)
		}
	}
	return found
}

func TestPythonDetectorBareExcept(t *testing.T) {
	d := detector.NewPythonDetector(detector.DefaultLimits())
	src := "try:\n    risky()\nexcept:\n    handle()\n"

	issues := findByRule(d.Detect("a.py", src), "py-bare-except")

	require.Len(t, issues, 1)
	assert.Equal(t, domain.SeverityMedium, issues[0].Severity)
	assert.Equal(t, domain.CategoryBestPractice, issues[0].Category)
	assert.True(t, issues[0].AutoFixable)
	assert.Equal(t, 3, issues[0].Location.LineStart)
}

func TestPythonDetectorIsLiteral(t *testing.T) {
	d := detector.NewPythonDetector(detector.DefaultLimits())

	issues := findByRule(d.Detect("a.py", "if x is 5:\n    pass\n"), "py-is-literal")
	require.Len(t, issues, 1)
	assert.Equal(t, domain.SeverityMedium, issues[0].Severity)
	assert.Equal(t, domain.CategoryBug, issues[0].Category)
	assert.True(t, issues[0].AutoFixable)

	// Singletons are legitimate identity comparisons.
	assert.Empty(t, findByRule(d.Detect("a.py", "if x is None:\n    pass\n"), "py-is-literal"))
	assert.Empty(t, findByRule(d.Detect("a.py", "if x is not None:\n    pass\n"), "py-is-literal"))
}

func TestPythonDetectorWildcardImport(t *testing.T) {
	d := detector.NewPythonDetector(detector.DefaultLimits())

	issues := findByRule(d.Detect("a.py", "from os.path import *\n"), "py-wildcard-import")
	require.Len(t, issues, 1)
	assert.Equal(t, domain.SeverityLow, issues[0].Severity)

	assert.Empty(t, findByRule(d.Detect("a.py", "from os.path import join\n"), "py-wildcard-import"))
}

func TestPythonDetectorMutableDefault(t *testing.T) {
	d := detector.NewPythonDetector(detector.DefaultLimits())

	issues := findByRule(d.Detect("a.py", "def add(item, bucket=[]):\n    bucket.append(item)\n"), "py-mutable-default")
	require.Len(t, issues, 1)
	assert.Equal(t, domain.SeverityHigh, issues[0].Severity)
	assert.Equal(t, domain.CategoryBug, issues[0].Category)
	assert.True(t, issues[0].AutoFixable)

	assert.Empty(t, findByRule(d.Detect("a.py", "def add(item, bucket=None):\n    pass\n"), "py-mutable-default"))
}

func TestPythonDetectorTooManyParameters(t *testing.T) {
	d := detector.NewPythonDetector(detector.DefaultLimits())
	src := "def wide(a, b, c, d, e, f, g):\n    return a\n"

	issues := findByRule(d.Detect("wide.py", src), "py-too-many-parameters")

	// Exactly one issue citing the count, independent of function length.
	require.Len(t, issues, 1)
	assert.Equal(t, domain.CategoryCodeSmell, issues[0].Category)
	assert.Contains(t, issues[0].Description, "too many parameters")
	assert.Contains(t, issues[0].Description, "7")
}

func TestPythonDetectorMultilineSignature(t *testing.T) {
	d := detector.NewPythonDetector(detector.DefaultLimits())
	src := "def wide(a, b, c,\n         d, e, f,\n         g):\n    return a\n"

	issues := findByRule(d.Detect("wide.py", src), "py-too-many-parameters")
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Description, "7")
}

func TestPythonDetectorFunctionLength(t *testing.T) {
	limits := detector.DefaultLimits()
	limits.MaxFunctionLength = 4
	d := detector.NewPythonDetector(limits)

	var b strings.Builder
	b.WriteString("def long():\n")
	for i := 0; i < 6; i++ {
		b.WriteString("    x = 1\n")
	}

	issues := findByRule(d.Detect("long.py", b.String()), "py-function-length")
	require.Len(t, issues, 1)
	assert.Equal(t, 1, issues[0].Location.LineStart)
	assert.Equal(t, 7, issues[0].Location.LineEnd)
}

func TestPythonDetectorComplexity(t *testing.T) {
	limits := detector.DefaultLimits()
	limits.MaxComplexity = 3
	d := detector.NewPythonDetector(limits)
	src := `def branchy(x):
    if x > 0 and x < 10:
        return 1
    for i in range(x):
        if i % 2 == 0:
            x += 1
    return x
`

	issues := findByRule(d.Detect("branchy.py", src), "py-complexity")
	require.Len(t, issues, 1)
	assert.Equal(t, domain.CategoryComplexity, issues[0].Category)
}

func TestPythonDetectorCanAnalyze(t *testing.T) {
	d := detector.NewPythonDetector(detector.DefaultLimits())
	assert.True(t, d.CanAnalyze("pkg/module.py"))
	assert.False(t, d.CanAnalyze("pkg/module.go"))
}
