package detector

import (
	"path/filepath"
	"strings"

	"github.com/codesage/code-sage/internal/domain"
)

// Detector inspects a single file's content and reports issues.
// Implementations are pure with respect to the input: Detect reads the
// provided content only, never touches the filesystem, and never shares
// mutable state between calls, so detectors are safe for concurrent use.
type Detector interface {
	// Language returns the language id this detector handles.
	Language() string

	// CanAnalyze reports whether the detector handles the given path.
	// It is a pure function of the filename, typically the extension.
	CanAnalyze(path string) bool

	// Detect analyzes the content and returns any issues found.
	// Expected failure modes (e.g. a syntax error in the input) are
	// reported as issues, not errors; the orchestrator converts panics
	// into failed records at its boundary.
	Detect(path, content string) []domain.Issue
}

// Limits carries the configurable thresholds shared by the structural
// check batteries.
type Limits struct {
	MaxFunctionLength int
	MaxComplexity     int
	MaxParameters     int
}

// DefaultLimits mirrors the configuration defaults.
func DefaultLimits() Limits {
	return Limits{
		MaxFunctionLength: 50,
		MaxComplexity:     10,
		MaxParameters:     5,
	}
}

func hasExtension(path string, extensions ...string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, candidate := range extensions {
		if ext == candidate {
			return true
		}
	}
	return false
}

func splitLines(content string) []string {
	return strings.Split(content, "\n")
}
