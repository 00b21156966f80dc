package detector

import (
	"regexp"
	"strings"

	"github.com/codesage/code-sage/internal/domain"
)

// JavaScriptDetector runs lexical checks for JavaScript. No parser is
// involved; surface patterns are scanned line by line. This trades
// false positives for language-agnostic coverage.
type JavaScriptDetector struct{}

// NewJavaScriptDetector creates a JavaScript detector.
func NewJavaScriptDetector() *JavaScriptDetector {
	return &JavaScriptDetector{}
}

// Language implements Detector.
func (d *JavaScriptDetector) Language() string { return "javascript" }

// CanAnalyze implements Detector.
func (d *JavaScriptDetector) CanAnalyze(path string) bool {
	return hasExtension(path, ".js", ".jsx", ".mjs", ".cjs")
}

// Detect implements Detector.
func (d *JavaScriptDetector) Detect(path, content string) []domain.Issue {
	return scanJSLines(path, content, d.Language())
}

// TypeScriptDetector applies the JavaScript lexical battery to
// TypeScript sources. Register it before the JavaScript detector so the
// more specific extension match wins.
type TypeScriptDetector struct{}

// NewTypeScriptDetector creates a TypeScript detector.
func NewTypeScriptDetector() *TypeScriptDetector {
	return &TypeScriptDetector{}
}

// Language implements Detector.
func (d *TypeScriptDetector) Language() string { return "typescript" }

// CanAnalyze implements Detector.
func (d *TypeScriptDetector) CanAnalyze(path string) bool {
	return hasExtension(path, ".ts", ".tsx")
}

// Detect implements Detector.
func (d *TypeScriptDetector) Detect(path, content string) []domain.Issue {
	return scanJSLines(path, content, d.Language())
}

var (
	jsConsoleLog = regexp.MustCompile(`\bconsole\.log\s*\(`)
	jsLooseEq    = regexp.MustCompile(`[^=!<>]==[^=]|[^=!]!=[^=]`)
	jsVarDecl    = regexp.MustCompile(`^\s*var\s+\w`)
	jsEval       = regexp.MustCompile(`\beval\s*\(`)
)

func scanJSLines(path, content, language string) []domain.Issue {
	var issues []domain.Issue
	for idx, line := range splitLines(content) {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "*") {
			continue
		}
		lineNo := idx + 1
		at := domain.Location{File: path, LineStart: lineNo, LineEnd: lineNo}

		if jsConsoleLog.MatchString(line) {
			issues = append(issues, domain.NewIssue(domain.IssueInput{
				RuleID:       "js-console-log",
				Title:        "console.log statement",
				Description:  "console.log left in source; use a logger or remove it",
				Severity:     domain.SeverityLow,
				Category:     domain.CategoryBestPractice,
				SuggestedFix: "Remove the console.log call or route it through a logger",
				AutoFixable:  true,
				CodeSnippet:  trimmed,
				Location:     at,
				Metadata:     map[string]string{"language": language},
			}))
		}

		if jsLooseEq.MatchString(line) {
			issues = append(issues, domain.NewIssue(domain.IssueInput{
				RuleID:       "js-loose-equality",
				Title:        "Loose equality comparison",
				Description:  "== and != perform type coercion; use === and !==",
				Severity:     domain.SeverityMedium,
				Category:     domain.CategoryBestPractice,
				SuggestedFix: "Replace == with === (and != with !==)",
				AutoFixable:  true,
				CodeSnippet:  trimmed,
				Location:     at,
				Metadata:     map[string]string{"language": language},
			}))
		}

		if jsVarDecl.MatchString(line) {
			issues = append(issues, domain.NewIssue(domain.IssueInput{
				RuleID:       "js-var-declaration",
				Title:        "var declaration",
				Description:  "var is function-scoped and hoisted; prefer let or const",
				Severity:     domain.SeverityLow,
				Category:     domain.CategoryBestPractice,
				SuggestedFix: "Replace var with let or const",
				AutoFixable:  true,
				CodeSnippet:  trimmed,
				Location:     at,
				Metadata:     map[string]string{"language": language},
			}))
		}

		if jsEval.MatchString(line) {
			issues = append(issues, domain.NewIssue(domain.IssueInput{
				RuleID:      "js-eval",
				Title:       "eval call",
				Description: "eval executes arbitrary strings as code and enables injection attacks",
				Severity:    domain.SeverityHigh,
				Category:    domain.CategorySecurity,
				CodeSnippet: trimmed,
				Location:    at,
				Metadata:    map[string]string{"language": language},
			}))
		}
	}
	return issues
}
