package domain

import "time"

// Metrics holds simple per-file size measurements.
type Metrics struct {
	TotalLines   int `json:"totalLines"`
	CodeLines    int `json:"codeLines"`
	CommentLines int `json:"commentLines"`
	BlankLines   int `json:"blankLines"`
}

// FileRecord is the outcome of analyzing one file. A record with
// Success=false carries an error message and an empty issue list.
type FileRecord struct {
	Path     string        `json:"path"`
	Language string        `json:"language,omitempty"`
	Issues   []Issue       `json:"issues"`
	Metrics  *Metrics      `json:"metrics,omitempty"`
	Duration time.Duration `json:"duration"`
	Success  bool          `json:"success"`
	Error    string        `json:"error,omitempty"`
}

// FileIssueCount pairs a file path with its issue count for summaries.
type FileIssueCount struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// Summary aggregates issue statistics across a whole run.
type Summary struct {
	TotalIssues     int              `json:"totalIssues"`
	BySeverity      map[Severity]int `json:"bySeverity"`
	ByCategory      map[Category]int `json:"byCategory"`
	ByFile          []FileIssueCount `json:"byFile"`
	AutoFixable     int              `json:"autoFixable"`
	HighPriority    int              `json:"highPriority"`
	FilesWithIssues int              `json:"filesWithIssues"`
	FilesClean      int              `json:"filesClean"`
}

// ProjectResult is the immutable final output of a run.
type ProjectResult struct {
	RootPath    string         `json:"rootPath"`
	GeneratedAt time.Time      `json:"generatedAt"`
	Records     []FileRecord   `json:"records"`
	TotalFiles  int            `json:"totalFiles"`
	FailedFiles int            `json:"failedFiles"`
	TotalIssues int            `json:"totalIssues"`
	ByLanguage  map[string]int `json:"byLanguage"`
	Summary     Summary        `json:"summary"`
	Duration    time.Duration  `json:"duration"`
}

// CountBySeverity returns the number of issues at exactly the given
// severity. The CLI's exit-code policy is computed from this alone.
func (r ProjectResult) CountBySeverity(s Severity) int {
	return r.Summary.BySeverity[s]
}
