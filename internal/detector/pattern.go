package detector

import (
	"strings"

	"github.com/codesage/code-sage/internal/domain"
	"github.com/codesage/code-sage/internal/rules"
)

// PatternDetector evaluates the declarative rule catalog against raw
// file content. It is a cross-cutting layer: the orchestrator runs it
// on every file in addition to the file's primary detector.
type PatternDetector struct {
	catalog *rules.Catalog
}

// NewPatternDetector wraps a frozen rule catalog.
func NewPatternDetector(catalog *rules.Catalog) *PatternDetector {
	return &PatternDetector{catalog: catalog}
}

// MatchFile scans every line of content with each rule registered for
// the language. Every match produces one issue at the match's line and
// column span; multiple matches of one rule on the same line each
// produce a distinct issue.
func (d *PatternDetector) MatchFile(path, content, language string) []domain.Issue {
	matched := d.catalog.ForLanguage(language)
	if len(matched) == 0 {
		return nil
	}

	var issues []domain.Issue
	for lineIdx, line := range splitLines(content) {
		lineNo := lineIdx + 1
		for _, rule := range matched {
			for _, span := range rule.Pattern.FindAllStringIndex(line, -1) {
				issues = append(issues, domain.NewIssue(domain.IssueInput{
					RuleID:       rule.ID,
					Title:        rule.Name,
					Description:  rule.Message,
					Severity:     rule.Severity,
					Category:     rule.Category,
					SuggestedFix: rule.Fix,
					AutoFixable:  rule.AutoFixable,
					CodeSnippet:  strings.TrimSpace(line),
					Location: domain.Location{
						File:        path,
						LineStart:   lineNo,
						LineEnd:     lineNo,
						ColumnStart: span[0] + 1,
						ColumnEnd:   span[1] + 1,
					},
				}))
			}
		}
	}
	return issues
}
