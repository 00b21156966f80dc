package enrich

import (
	"context"

	"github.com/codesage/code-sage/internal/domain"
)

// Explanation is the enrichment payload for one issue.
type Explanation struct {
	Explanation    string
	SuggestedFix   string
	FixDescription string
}

// Provider defines the outbound port for AI explanations.
type Provider interface {
	Explain(ctx context.Context, issue domain.Issue) (Explanation, error)
}

// Logger provides structured logging for enrichment failures.
type Logger interface {
	LogWarning(ctx context.Context, message string, fields map[string]interface{})
}

// DefaultMaxIssues bounds how many top-ranked issues are enriched.
const DefaultMaxIssues = 10

// Enricher annotates a bounded slice of already-ranked issues with AI
// explanations. Provider failures are logged and skipped; the pipeline
// never blocks on enrichment and works with it entirely absent.
type Enricher struct {
	provider  Provider
	logger    Logger
	maxIssues int
}

// NewEnricher creates an enricher. maxIssues <= 0 uses the default.
func NewEnricher(provider Provider, logger Logger, maxIssues int) *Enricher {
	if maxIssues <= 0 {
		maxIssues = DefaultMaxIssues
	}
	return &Enricher{provider: provider, logger: logger, maxIssues: maxIssues}
}

// Enrich returns a copy of issues with explanation fields set on the
// top-ranked entries. The input is expected highest priority first and
// is never mutated.
func (e *Enricher) Enrich(ctx context.Context, issues []domain.Issue) []domain.Issue {
	if e.provider == nil || len(issues) == 0 {
		return issues
	}

	enriched := append([]domain.Issue{}, issues...)
	limit := e.maxIssues
	if len(enriched) < limit {
		limit = len(enriched)
	}

	for i := 0; i < limit; i++ {
		if ctx.Err() != nil {
			break
		}
		explanation, err := e.provider.Explain(ctx, enriched[i])
		if err != nil {
			if e.logger != nil {
				e.logger.LogWarning(ctx, "enrichment failed", map[string]interface{}{
					"issue": enriched[i].ID,
					"path":  enriched[i].Location.File,
					"error": err.Error(),
				})
			}
			continue
		}
		enriched[i].AIExplanation = explanation.Explanation
		if explanation.SuggestedFix != "" {
			enriched[i].SuggestedFix = explanation.SuggestedFix
		}
		enriched[i].FixDescription = explanation.FixDescription
	}
	return enriched
}
