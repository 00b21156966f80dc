package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Severity classifies how urgent an issue is. The constants form a total
// order (info < low < medium < high < critical) used for filtering and
// ranking; the order is defined by Rank, not by declaration position.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityRank = map[Severity]int{
	SeverityInfo:     0,
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

var severityWeight = map[Severity]float64{
	SeverityInfo:     10,
	SeverityLow:      25,
	SeverityMedium:   50,
	SeverityHigh:     75,
	SeverityCritical: 100,
}

// Rank returns the position of the severity in the total order.
// Unknown severities rank below info.
func (s Severity) Rank() int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return -1
}

// AtLeast reports whether s is equal to or more severe than min.
func (s Severity) AtLeast(min Severity) bool {
	return s.Rank() >= min.Rank()
}

// Weight returns the ranking weight contributed by the severity.
func (s Severity) Weight() float64 {
	return severityWeight[s]
}

// ParseSeverity converts a user-supplied string into a Severity.
func ParseSeverity(value string) (Severity, error) {
	s := Severity(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := severityRank[s]; !ok {
		return "", fmt.Errorf("unknown severity %q", value)
	}
	return s, nil
}

// Severities lists all severities from least to most severe.
func Severities() []Severity {
	return []Severity{SeverityInfo, SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
}

// Category tags the kind of problem an issue describes. Categories are
// unordered but each carries a ranking weight.
type Category string

const (
	CategorySecurity        Category = "security"
	CategoryBug             Category = "bug"
	CategoryCodeSmell       Category = "code_smell"
	CategoryTypeError       Category = "type_error"
	CategoryStyle           Category = "style"
	CategoryPerformance     Category = "performance"
	CategoryBestPractice    Category = "best_practice"
	CategoryDuplication     Category = "duplication"
	CategoryComplexity      Category = "complexity"
	CategoryMaintainability Category = "maintainability"
)

var categoryWeight = map[Category]float64{
	CategorySecurity:        20,
	CategoryBug:             15,
	CategoryTypeError:       10,
	CategoryPerformance:     8,
	CategoryBestPractice:    5,
	CategoryComplexity:      4,
	CategoryCodeSmell:       3,
	CategoryMaintainability: 3,
	CategoryDuplication:     2,
	CategoryStyle:           1,
}

// Weight returns the ranking weight contributed by the category.
func (c Category) Weight() float64 {
	return categoryWeight[c]
}

// ParseCategory converts a user-supplied string into a Category.
func ParseCategory(value string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := categoryWeight[c]; !ok {
		return "", fmt.Errorf("unknown category %q", value)
	}
	return c, nil
}

// Location identifies where in a file an issue was found. Lines are
// 1-based and inclusive; columns are optional (0 means unknown).
type Location struct {
	File        string `json:"file"`
	LineStart   int    `json:"lineStart"`
	LineEnd     int    `json:"lineEnd"`
	ColumnStart int    `json:"columnStart,omitempty"`
	ColumnEnd   int    `json:"columnEnd,omitempty"`
}

// SamePlace reports whether two locations point at the same file and
// start line. Column and end line are deliberately ignored.
func (l Location) SamePlace(other Location) bool {
	return l.File == other.File && l.LineStart == other.LineStart
}

// Issue is a single finding produced by a detector, rule, or scanner.
type Issue struct {
	ID             string            `json:"id"`
	RuleID         string            `json:"ruleId,omitempty"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Severity       Severity          `json:"severity"`
	Category       Category          `json:"category"`
	Location       Location          `json:"location"`
	CodeSnippet    string            `json:"codeSnippet,omitempty"`
	SuggestedFix   string            `json:"suggestedFix,omitempty"`
	FixDescription string            `json:"fixDescription,omitempty"`
	AIExplanation  string            `json:"aiExplanation,omitempty"`
	Confidence     float64           `json:"confidence"`
	AutoFixable    bool              `json:"autoFixable"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// IssueInput captures the information required to create an Issue.
type IssueInput struct {
	RuleID         string
	Title          string
	Description    string
	Severity       Severity
	Category       Category
	Location       Location
	CodeSnippet    string
	SuggestedFix   string
	FixDescription string
	Confidence     float64
	AutoFixable    bool
	Metadata       map[string]string
}

// NewIssue constructs an Issue with a deterministic ID derived from the
// file path, rule id, and start line. Re-analyzing unchanged input
// reproduces the same ID. Confidence defaults to 1.0 when unset.
func NewIssue(input IssueInput) Issue {
	confidence := input.Confidence
	if confidence == 0 {
		confidence = 1.0
	}
	return Issue{
		ID:             hashIssue(input.Location.File, input.RuleID, input.Location.LineStart),
		RuleID:         input.RuleID,
		Title:          input.Title,
		Description:    input.Description,
		Severity:       input.Severity,
		Category:       input.Category,
		Location:       input.Location,
		CodeSnippet:    input.CodeSnippet,
		SuggestedFix:   input.SuggestedFix,
		FixDescription: input.FixDescription,
		Confidence:     confidence,
		AutoFixable:    input.AutoFixable,
		Metadata:       input.Metadata,
	}
}

// Priority computes the ranking score for an issue:
// (severity weight + category weight) * confidence, plus a flat bonus
// when the issue is auto-fixable.
func (i Issue) Priority() float64 {
	score := (i.Severity.Weight() + i.Category.Weight()) * i.Confidence
	if i.AutoFixable {
		score += 5
	}
	return score
}

func hashIssue(file, ruleID string, line int) string {
	payload := fmt.Sprintf("%s|%s|%d", file, ruleID, line)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
