package analyze

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/codesage/code-sage/internal/detector"
	"github.com/codesage/code-sage/internal/domain"
)

// Discovery enumerates candidate files under a root path. The returned
// list is treated as ground truth: the orchestrator does not re-filter
// it except through detector CanAnalyze.
type Discovery interface {
	DiscoverFiles(root string) ([]string, error)
}

// FileReader loads file content as text, falling back to an alternate
// encoding on decode failure. It returns an error, never silently empty
// content, when both attempts fail.
type FileReader interface {
	ReadText(path string) (string, error)
}

// SecurityScanner is the optional secrets/injection scanning layer.
type SecurityScanner interface {
	ScanFile(path, content string) []domain.Issue
}

// Enricher is the optional AI enrichment collaborator. It receives a
// ranked issue list and returns a new list with explanation fields set
// on however many issues it chose to enrich.
type Enricher interface {
	Enrich(ctx context.Context, issues []domain.Issue) []domain.Issue
}

// Logger provides structured logging for the orchestrator.
type Logger interface {
	LogInfo(ctx context.Context, message string, fields map[string]interface{})
	LogWarning(ctx context.Context, message string, fields map[string]interface{})
}

// OrchestratorDeps captures the collaborators for a run. Registry,
// Patterns, Aggregator, Discovery, and Reader are required; the rest
// are optional layers.
type OrchestratorDeps struct {
	Registry   *detector.Registry
	Patterns   *detector.PatternDetector
	Aggregator *Aggregator
	Discovery  Discovery
	Reader     FileReader
	Security   SecurityScanner // Optional: secrets and injection scanning
	Enricher   Enricher        // Optional: AI explanations for top-ranked issues
	Logger     Logger          // Optional: structured warnings and progress info
	MaxWorkers int             // Worker pool bound; <=0 uses the default
}

const defaultMaxWorkers = 4

// Request describes one analysis run.
type Request struct {
	RootPath string
	Filter   Filter
	Enrich   bool // Ask the enricher (when wired) to annotate top issues
}

// Orchestrator runs the detection pipeline over a project tree.
type Orchestrator struct {
	deps OrchestratorDeps
}

// NewOrchestrator wires the orchestrator dependencies.
func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	if deps.MaxWorkers <= 0 {
		deps.MaxWorkers = defaultMaxWorkers
	}
	return &Orchestrator{deps: deps}
}

func (o *Orchestrator) validateDependencies() error {
	if o.deps.Registry == nil {
		return errors.New("detector registry is required")
	}
	if o.deps.Patterns == nil {
		return errors.New("pattern detector is required")
	}
	if o.deps.Aggregator == nil {
		return errors.New("aggregator is required")
	}
	if o.deps.Discovery == nil {
		return errors.New("file discovery is required")
	}
	if o.deps.Reader == nil {
		return errors.New("file reader is required")
	}
	// Security, Enricher, and Logger are optional
	return nil
}

// AnalyzeProject discovers files under the request root, analyzes them
// concurrently, aggregates issues project-wide, and assembles the final
// result. Per-file failures never abort the run; only a discovery
// failure or cancellation does.
func (o *Orchestrator) AnalyzeProject(ctx context.Context, req Request) (domain.ProjectResult, error) {
	if err := o.validateDependencies(); err != nil {
		return domain.ProjectResult{}, err
	}

	started := time.Now()

	files, err := o.deps.Discovery.DiscoverFiles(req.RootPath)
	if err != nil {
		return domain.ProjectResult{}, fmt.Errorf("discover files under %s: %w", req.RootPath, err)
	}

	records := o.analyzeFiles(ctx, files)
	if err := ctx.Err(); err != nil {
		// No partial project result is defined; completed records are discarded.
		return domain.ProjectResult{}, err
	}

	// Stable, path-sorted order before aggregation so ranking tie-breaks
	// are reproducible across runs with different scheduling.
	sort.Slice(records, func(i, j int) bool {
		return records[i].Path < records[j].Path
	})

	records = o.aggregate(ctx, records, req)

	return o.assemble(req.RootPath, started, records), nil
}

// analyzeFiles fans the file list out over a bounded worker pool. Each
// file's full pipeline runs inside one worker; the dispatching
// goroutine collects completed records from the result channel.
func (o *Orchestrator) analyzeFiles(ctx context.Context, files []string) []domain.FileRecord {
	if len(files) == 0 {
		return nil
	}

	workers := o.deps.MaxWorkers
	if len(files) < workers {
		workers = len(files)
	}

	fileCh := make(chan string, len(files))
	resultCh := make(chan domain.FileRecord, len(files))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range fileCh {
				resultCh <- o.analyzeFile(ctx, path)
			}
		}()
	}

	dispatched := 0
	for _, path := range files {
		if ctx.Err() != nil {
			// Stop dispatching; in-flight analyses are allowed to finish.
			break
		}
		fileCh <- path
		dispatched++
	}
	close(fileCh)
	wg.Wait()
	close(resultCh)

	records := make([]domain.FileRecord, 0, dispatched)
	for record := range resultCh {
		records = append(records, record)
	}
	return records
}

// analyzeFile runs detector selection, detection, pattern matching, and
// optional security scanning for one file. Panics from detector defects
// are converted into failed records here so they never abort sibling
// analyses.
func (o *Orchestrator) analyzeFile(ctx context.Context, path string) (record domain.FileRecord) {
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			if o.deps.Logger != nil {
				o.deps.Logger.LogWarning(ctx, "detector fault", map[string]interface{}{
					"path":  path,
					"panic": fmt.Sprint(r),
				})
			}
			record = domain.FileRecord{
				Path:     path,
				Duration: time.Since(started),
				Success:  false,
				Error:    fmt.Sprintf("detector fault: %v", r),
			}
		}
	}()

	primary, ok := o.deps.Registry.DetectorFor(path)
	if !ok {
		if o.deps.Logger != nil {
			o.deps.Logger.LogWarning(ctx, "unsupported file type", map[string]interface{}{"path": path})
		}
		return domain.FileRecord{
			Path:     path,
			Duration: time.Since(started),
			Success:  false,
			Error:    "unsupported file type",
		}
	}

	content, err := o.deps.Reader.ReadText(path)
	if err != nil {
		if o.deps.Logger != nil {
			o.deps.Logger.LogWarning(ctx, "unreadable file", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
		}
		return domain.FileRecord{
			Path:     path,
			Language: primary.Language(),
			Duration: time.Since(started),
			Success:  false,
			Error:    fmt.Sprintf("read file: %v", err),
		}
	}

	issues := primary.Detect(path, content)

	// Pattern rules are a cross-cutting layer, not an alternative to the
	// primary detector.
	issues = append(issues, o.deps.Patterns.MatchFile(path, content, primary.Language())...)

	if o.deps.Security != nil {
		issues = append(issues, o.deps.Security.ScanFile(path, content)...)
	}

	metrics := computeMetrics(content, primary.Language())

	return domain.FileRecord{
		Path:     path,
		Language: primary.Language(),
		Issues:   issues,
		Metrics:  &metrics,
		Duration: time.Since(started),
		Success:  true,
	}
}

// aggregate runs project-wide dedup, ranking, filtering, and optional
// enrichment, then re-partitions the ranked issues back onto their
// originating records by file path. Failed records keep empty lists.
func (o *Orchestrator) aggregate(ctx context.Context, records []domain.FileRecord, req Request) []domain.FileRecord {
	var all []domain.Issue
	for _, record := range records {
		all = append(all, record.Issues...)
	}

	ranked := o.deps.Aggregator.Rank(o.deps.Aggregator.Deduplicate(all))
	ranked = req.Filter.Apply(ranked)

	if req.Enrich && o.deps.Enricher != nil {
		ranked = o.deps.Enricher.Enrich(ctx, ranked)
	}

	byFile := make(map[string][]domain.Issue)
	for _, issue := range ranked {
		byFile[issue.Location.File] = append(byFile[issue.Location.File], issue)
	}

	for i := range records {
		if !records[i].Success {
			records[i].Issues = nil
			continue
		}
		records[i].Issues = byFile[records[i].Path]
	}
	return records
}

// assemble is the result-assembler step: it folds the final records
// into an immutable ProjectResult.
func (o *Orchestrator) assemble(rootPath string, started time.Time, records []domain.FileRecord) domain.ProjectResult {
	byLanguage := make(map[string]int)
	failed := 0
	totalIssues := 0
	for _, record := range records {
		if record.Language != "" {
			byLanguage[record.Language]++
		}
		if !record.Success {
			failed++
		}
		totalIssues += len(record.Issues)
	}

	return domain.ProjectResult{
		RootPath:    rootPath,
		GeneratedAt: started.UTC(),
		Records:     records,
		TotalFiles:  len(records),
		FailedFiles: failed,
		TotalIssues: totalIssues,
		ByLanguage:  byLanguage,
		Summary:     o.deps.Aggregator.Summarize(records),
		Duration:    time.Since(started),
	}
}

func computeMetrics(content, language string) domain.Metrics {
	commentPrefix := "//"
	if language == "python" {
		commentPrefix = "#"
	}

	var metrics domain.Metrics
	for _, line := range strings.Split(content, "\n") {
		metrics.TotalLines++
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			metrics.BlankLines++
		case strings.HasPrefix(trimmed, commentPrefix):
			metrics.CommentLines++
		default:
			metrics.CodeLines++
		}
	}
	return metrics
}
