package analyze

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/codesage/code-sage/internal/domain"
)

// DefaultSimilarityThreshold is the minimum title and description
// similarity for two issues to be grouped as "the same story repeated".
const DefaultSimilarityThreshold = 0.8

// Aggregator merges, deduplicates, groups, ranks, and filters issues
// across the whole project. It is stateless apart from its thresholds
// and safe for concurrent use.
type Aggregator struct {
	similarityThreshold float64
}

// NewAggregator creates an aggregator with the default thresholds.
func NewAggregator() *Aggregator {
	return &Aggregator{similarityThreshold: DefaultSimilarityThreshold}
}

// NewAggregatorWithThreshold creates an aggregator with a custom
// similarity threshold in (0, 1].
func NewAggregatorWithThreshold(threshold float64) *Aggregator {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultSimilarityThreshold
	}
	return &Aggregator{similarityThreshold: threshold}
}

// signature is the exact-match dedup key. Issue IDs are not used here:
// two different rules can produce issues with distinct IDs that are
// still the same finding semantically.
func signature(issue domain.Issue) string {
	return fmt.Sprintf("%s:%d:%s:%s", issue.Location.File, issue.Location.LineStart, issue.Title, issue.Category)
}

// Deduplicate drops exact duplicates by (file, start line, title,
// category). The first occurrence of a signature wins; input order is
// otherwise preserved. Deduplicate is idempotent.
func (a *Aggregator) Deduplicate(issues []domain.Issue) []domain.Issue {
	seen := make(map[string]bool, len(issues))
	result := make([]domain.Issue, 0, len(issues))
	for _, issue := range issues {
		sig := signature(issue)
		if seen[sig] {
			continue
		}
		seen[sig] = true
		result = append(result, issue)
	}
	return result
}

// FindSimilar groups issues that are not exact duplicates but read as
// the same story repeated: same category and severity, with title and
// description similarity both at or above the threshold. An issue joins
// the first group whose representative (the group's first member) it
// matches; members are never compared against each other. Chains of
// near-duplicates may therefore end up in separate groups; that
// under-merge is part of the contract, kept for reproducibility.
func (a *Aggregator) FindSimilar(issues []domain.Issue) [][]domain.Issue {
	var groups [][]domain.Issue
	for _, issue := range issues {
		placed := false
		for gi, group := range groups {
			representative := group[0]
			if issue.Category != representative.Category || issue.Severity != representative.Severity {
				continue
			}
			if similarityRatio(issue.Title, representative.Title) >= a.similarityThreshold &&
				similarityRatio(issue.Description, representative.Description) >= a.similarityThreshold {
				groups[gi] = append(groups[gi], issue)
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, []domain.Issue{issue})
		}
	}
	return groups
}

// Rank sorts issues descending by priority score. The sort is stable:
// issues with equal scores keep their relative input order, which is
// the tie-break contract the orchestrator relies on. The input slice is
// not mutated.
func (a *Aggregator) Rank(issues []domain.Issue) []domain.Issue {
	ranked := append([]domain.Issue{}, issues...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Priority() > ranked[j].Priority()
	})
	return ranked
}

// Filter narrows an issue list. Each predicate is optional; provided
// predicates combine with AND semantics. MinSeverity is inclusive.
type Filter struct {
	MinSeverity     domain.Severity
	Categories      []domain.Category
	AutoFixableOnly bool
}

// IsZero reports whether the filter has no active predicates.
func (f Filter) IsZero() bool {
	return f.MinSeverity == "" && len(f.Categories) == 0 && !f.AutoFixableOnly
}

// Apply returns the issues passing every active predicate.
func (f Filter) Apply(issues []domain.Issue) []domain.Issue {
	if f.IsZero() {
		return issues
	}
	categories := make(map[domain.Category]bool, len(f.Categories))
	for _, c := range f.Categories {
		categories[c] = true
	}

	result := make([]domain.Issue, 0, len(issues))
	for _, issue := range issues {
		if f.MinSeverity != "" && !issue.Severity.AtLeast(f.MinSeverity) {
			continue
		}
		if len(categories) > 0 && !categories[issue.Category] {
			continue
		}
		if f.AutoFixableOnly && !issue.AutoFixable {
			continue
		}
		result = append(result, issue)
	}
	return result
}

// Summarize folds per-file records into run-level statistics.
func (a *Aggregator) Summarize(records []domain.FileRecord) domain.Summary {
	summary := domain.Summary{
		BySeverity: make(map[domain.Severity]int),
		ByCategory: make(map[domain.Category]int),
	}

	for _, record := range records {
		if len(record.Issues) == 0 {
			summary.FilesClean++
			continue
		}
		summary.FilesWithIssues++
		summary.ByFile = append(summary.ByFile, domain.FileIssueCount{
			Path:  record.Path,
			Count: len(record.Issues),
		})

		for _, issue := range record.Issues {
			summary.TotalIssues++
			summary.BySeverity[issue.Severity]++
			summary.ByCategory[issue.Category]++
			if issue.AutoFixable {
				summary.AutoFixable++
			}
			if issue.Severity == domain.SeverityCritical || issue.Severity == domain.SeverityHigh {
				summary.HighPriority++
			}
		}
	}

	// Busiest files first; ties stay in record (path-sorted) order.
	sort.SliceStable(summary.ByFile, func(i, j int) bool {
		return summary.ByFile[i].Count > summary.ByFile[j].Count
	})

	return summary
}

// similarityRatio is a normalized edit-distance ratio in [0, 1], where
// 1.0 means identical strings. The diff segmentation depends on operand
// order, so operands are put in canonical order first; the ratio must
// be symmetric or grouping would depend on which issue arrived first.
func similarityRatio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a > b {
		a, b = b, a
	}
	longest := utf8.RuneCountInString(a)
	if other := utf8.RuneCountInString(b); other > longest {
		longest = other
	}
	if longest == 0 {
		return 1.0
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)
	distance := dmp.DiffLevenshtein(diffs)
	return 1.0 - float64(distance)/float64(longest)
}
