package rules

import (
	"fmt"
	"regexp"

	"github.com/codesage/code-sage/internal/domain"
)

// Rule is a compiled declarative pattern rule. Rules are immutable after
// registration in a Catalog.
type Rule struct {
	ID          string
	Name        string
	Description string
	Pattern     *regexp.Regexp
	Severity    domain.Severity
	Category    domain.Category
	Languages   []string
	Message     string
	Fix         string
	AutoFixable bool
}

// AppliesTo reports whether the rule is registered for the language.
func (r Rule) AppliesTo(language string) bool {
	for _, lang := range r.Languages {
		if lang == language {
			return true
		}
	}
	return false
}

// Spec is the declarative form of a rule, as found in the built-in
// catalog and in user-supplied rule files.
type Spec struct {
	ID              string   `yaml:"id" json:"id"`
	Name            string   `yaml:"name" json:"name"`
	Description     string   `yaml:"description" json:"description"`
	Pattern         string   `yaml:"pattern" json:"pattern"`
	Severity        string   `yaml:"severity" json:"severity"`
	Category        string   `yaml:"category" json:"category"`
	Languages       []string `yaml:"languages" json:"languages"`
	Message         string   `yaml:"message" json:"message"`
	Fix             string   `yaml:"fix" json:"fix"`
	AutoFixable     bool     `yaml:"autoFixable" json:"autoFixable"`
	CaseInsensitive bool     `yaml:"caseInsensitive" json:"caseInsensitive"`
}

// Catalog holds the ordered set of registered rules. It is frozen after
// startup wiring and safe for concurrent reads.
type Catalog struct {
	rules []Rule
}

// NewCatalog returns a catalog pre-populated with the built-in rules.
func NewCatalog() *Catalog {
	c := &Catalog{}
	for _, spec := range builtinSpecs() {
		// Built-in specs are fixed at compile time; a failure here is a defect.
		if err := c.Add(spec); err != nil {
			panic(fmt.Sprintf("builtin rule %s: %v", spec.ID, err))
		}
	}
	return c
}

// Add compiles and registers one rule. A pattern that fails to compile
// or a spec with an invalid severity/category returns an error and
// leaves the catalog unchanged; callers skip the rule and continue.
func (c *Catalog) Add(spec Spec) error {
	if spec.ID == "" {
		return fmt.Errorf("rule missing id")
	}
	if spec.Pattern == "" {
		return fmt.Errorf("rule %s missing pattern", spec.ID)
	}

	severity, err := domain.ParseSeverity(spec.Severity)
	if err != nil {
		return fmt.Errorf("rule %s: %w", spec.ID, err)
	}
	category, err := domain.ParseCategory(spec.Category)
	if err != nil {
		return fmt.Errorf("rule %s: %w", spec.ID, err)
	}

	pattern := spec.Pattern
	if spec.CaseInsensitive {
		pattern = "(?i)" + pattern
	}
	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("rule %s: compile pattern: %w", spec.ID, err)
	}

	c.rules = append(c.rules, Rule{
		ID:          spec.ID,
		Name:        spec.Name,
		Description: spec.Description,
		Pattern:     compiled,
		Severity:    severity,
		Category:    category,
		Languages:   append([]string{}, spec.Languages...),
		Message:     spec.Message,
		Fix:         spec.Fix,
		AutoFixable: spec.AutoFixable,
	})
	return nil
}

// ForLanguage returns the rules registered for the language, in
// registration order.
func (c *Catalog) ForLanguage(language string) []Rule {
	var matched []Rule
	for _, rule := range c.rules {
		if rule.AppliesTo(language) {
			matched = append(matched, rule)
		}
	}
	return matched
}

// All returns every registered rule in registration order.
func (c *Catalog) All() []Rule {
	return append([]Rule{}, c.rules...)
}

// Len returns the number of registered rules.
func (c *Catalog) Len() int {
	return len(c.rules)
}

func builtinSpecs() []Spec {
	return []Spec{
		{
			ID:              "hardcoded-password",
			Name:            "Hardcoded Password",
			Description:     "Password assigned from a string literal",
			Pattern:         `(password|passwd|pwd)\s*=\s*["'][^"']+["']`,
			Severity:        "critical",
			Category:        "security",
			Languages:       []string{"python", "javascript", "typescript", "go", "java", "ruby", "php"},
			Message:         "Hardcoded password detected; load credentials from the environment or a secret store",
			CaseInsensitive: true,
		},
		{
			ID:              "hardcoded-api-key",
			Name:            "Hardcoded API Key",
			Description:     "API key or secret assigned from a string literal",
			Pattern:         `(api[_-]?key|apikey|secret[_-]?key)\s*=\s*["'][^"']+["']`,
			Severity:        "critical",
			Category:        "security",
			Languages:       []string{"python", "javascript", "typescript", "go", "java", "ruby", "php"},
			Message:         "Hardcoded API key detected; load credentials from the environment or a secret store",
			CaseInsensitive: true,
		},
		{
			ID:          "sql-string-concat",
			Name:        "SQL Built By Concatenation",
			Description: "SQL statement assembled with string concatenation",
			Pattern:     `(execute|query|cursor\.execute)\s*\(\s*["'].*["']\s*\+`,
			Severity:    "high",
			Category:    "security",
			Languages:   []string{"python", "javascript", "typescript", "java", "php"},
			Message:     "Possible SQL injection; use parameterized queries",
		},
		{
			ID:          "debug-print",
			Name:        "Debug Print Statement",
			Description: "print call likely left over from debugging",
			Pattern:     `^\s*print\s*\(`,
			Severity:    "low",
			Category:    "code_smell",
			Languages:   []string{"python"},
			Message:     "Debug print statement; use a logger instead",
			Fix:         "Replace with a logging call",
			AutoFixable: true,
		},
		{
			ID:          "todo-comment",
			Name:        "TODO Comment",
			Description: "TODO marker in a comment",
			Pattern:     `(#|//)\s*TODO\b`,
			Severity:    "info",
			Category:    "maintainability",
			Languages:   []string{"python", "javascript", "typescript", "go", "java", "ruby", "php"},
			Message:     "Unresolved TODO comment",
		},
		{
			ID:          "fixme-comment",
			Name:        "FIXME Comment",
			Description: "FIXME marker in a comment",
			Pattern:     `(#|//)\s*FIXME\b`,
			Severity:    "medium",
			Category:    "bug",
			Languages:   []string{"python", "javascript", "typescript", "go", "java", "ruby", "php"},
			Message:     "FIXME comment marks a known defect",
		},
		{
			ID:          "except-pass",
			Name:        "Silently Swallowed Exception",
			Description: "except block whose only statement is pass",
			Pattern:     `except[^:]*:\s*pass\b`,
			Severity:    "medium",
			Category:    "best_practice",
			Languages:   []string{"python"},
			Message:     "Exception silently swallowed; handle or log it",
		},
		{
			ID:          "catch-empty",
			Name:        "Empty Catch Block",
			Description: "catch block with an empty body",
			Pattern:     `catch\s*\([^)]*\)\s*\{\s*\}`,
			Severity:    "medium",
			Category:    "best_practice",
			Languages:   []string{"javascript", "typescript", "java"},
			Message:     "Empty catch block hides failures; handle or log the error",
		},
	}
}
