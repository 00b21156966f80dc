// Package console renders an analysis result as a human-readable report.
package console

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/codesage/code-sage/internal/domain"
)

var (
	criticalColor = color.New(color.FgRed, color.Bold)
	highColor     = color.New(color.FgMagenta, color.Bold)
	mediumColor   = color.New(color.FgYellow)
	lowColor      = color.New(color.FgCyan)
	infoColor     = color.New(color.FgHiBlack)
)

// maxIssueRows caps the per-run issue table so huge trees stay readable.
const maxIssueRows = 50

// Writer renders project results for terminals.
type Writer struct {
	useColor bool
}

// NewWriter creates a console writer. When useColor is false every
// label renders as plain text regardless of the global color state.
func NewWriter(useColor bool) *Writer {
	return &Writer{useColor: useColor}
}

// Render writes a summary table, the ranked issue list, and failure
// notes to out.
func (w *Writer) Render(out io.Writer, result *domain.ProjectResult) error {
	fmt.Fprintf(out, "Analyzed %d files under %s in %v\n", result.TotalFiles, result.RootPath, result.Duration.Round(time.Millisecond))
	if result.FailedFiles > 0 {
		fmt.Fprintf(out, "%d files could not be analyzed\n", result.FailedFiles)
	}
	fmt.Fprintln(out)

	if err := w.renderSummary(out, result); err != nil {
		return err
	}

	issues := collectIssues(result)
	if len(issues) == 0 {
		fmt.Fprintln(out, "No issues found.")
		return w.renderFailures(out, result)
	}

	fmt.Fprintln(out)
	if err := w.renderIssues(out, issues); err != nil {
		return err
	}

	if len(issues) > maxIssueRows {
		fmt.Fprintf(out, "Showing top %d of %d issues.\n", maxIssueRows, len(issues))
	}

	return w.renderFailures(out, result)
}

func (w *Writer) renderSummary(out io.Writer, result *domain.ProjectResult) error {
	table := tablewriter.NewWriter(out)
	table.Header([]string{"Severity", "Count"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	severities := domain.Severities()
	for i := len(severities) - 1; i >= 0; i-- {
		severity := severities[i]
		count := result.Summary.BySeverity[severity]
		if count == 0 {
			continue
		}
		data = append(data, []string{w.severityLabel(severity), strconv.Itoa(count)})
	}
	data = append(data, []string{"total", strconv.Itoa(result.TotalIssues)})

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func (w *Writer) renderIssues(out io.Writer, issues []domain.Issue) error {
	table := tablewriter.NewWriter(out)
	table.Header([]string{"Severity", "Location", "Rule", "Title"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	limit := len(issues)
	if limit > maxIssueRows {
		limit = maxIssueRows
	}

	var data [][]string
	for _, issue := range issues[:limit] {
		location := fmt.Sprintf("%s:%d", issue.Location.File, issue.Location.LineStart)
		data = append(data, []string{
			w.severityLabel(issue.Severity),
			location,
			issue.RuleID,
			issue.Title,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func (w *Writer) renderFailures(out io.Writer, result *domain.ProjectResult) error {
	for _, record := range result.Records {
		if record.Success {
			continue
		}
		fmt.Fprintf(out, "skipped %s: %s\n", record.Path, record.Error)
	}
	return nil
}

// severityLabel returns the severity string, colorized when enabled.
func (w *Writer) severityLabel(severity domain.Severity) string {
	if !w.useColor {
		return string(severity)
	}
	switch severity {
	case domain.SeverityCritical:
		return criticalColor.Sprint(string(severity))
	case domain.SeverityHigh:
		return highColor.Sprint(string(severity))
	case domain.SeverityMedium:
		return mediumColor.Sprint(string(severity))
	case domain.SeverityLow:
		return lowColor.Sprint(string(severity))
	default:
		return infoColor.Sprint(string(severity))
	}
}

// collectIssues flattens record issues in priority order.
func collectIssues(result *domain.ProjectResult) []domain.Issue {
	var issues []domain.Issue
	for _, record := range result.Records {
		issues = append(issues, record.Issues...)
	}
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Priority() > issues[j].Priority()
	})
	return issues
}
