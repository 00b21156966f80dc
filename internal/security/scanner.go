package security

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/codesage/code-sage/internal/domain"
)

// DefaultEntropyThreshold is the Shannon entropy (bits per character)
// above which a quoted token is flagged as a probable secret.
const DefaultEntropyThreshold = 4.5

// Scanner performs regex- and entropy-based secret detection plus a
// small set of injection-prone call patterns. It runs per file as an
// optional layer on top of the detectors.
type Scanner struct {
	entropyThreshold float64
	secretPatterns   []secretPattern
}

type secretPattern struct {
	id       string
	title    string
	pattern  *regexp.Regexp
	severity domain.Severity
}

// NewScanner creates a scanner. A threshold of 0 uses the default.
func NewScanner(entropyThreshold float64) *Scanner {
	if entropyThreshold == 0 {
		entropyThreshold = DefaultEntropyThreshold
	}
	return &Scanner{
		entropyThreshold: entropyThreshold,
		secretPatterns:   defaultSecretPatterns(),
	}
}

// ScanFile scans content line by line and returns security issues.
func (s *Scanner) ScanFile(path, content string) []domain.Issue {
	var issues []domain.Issue
	for idx, line := range strings.Split(content, "\n") {
		lineNo := idx + 1
		snippet := strings.TrimSpace(line)
		at := domain.Location{File: path, LineStart: lineNo, LineEnd: lineNo}

		for _, sp := range s.secretPatterns {
			if sp.pattern.MatchString(line) {
				issues = append(issues, domain.NewIssue(domain.IssueInput{
					RuleID:      sp.id,
					Title:       sp.title,
					Description: "Credential material committed to source; rotate it and load it from the environment or a secret store",
					Severity:    sp.severity,
					Category:    domain.CategorySecurity,
					CodeSnippet: snippet,
					Location:    at,
				}))
			}
		}

		if token, ok := s.highEntropyToken(line); ok {
			issues = append(issues, domain.NewIssue(domain.IssueInput{
				RuleID:      "high-entropy-string",
				Title:       "High-entropy string literal",
				Description: "String literal has the entropy profile of a generated secret",
				Severity:    domain.SeverityHigh,
				Category:    domain.CategorySecurity,
				Confidence:  0.7,
				CodeSnippet: snippet,
				Metadata:    map[string]string{"token_length": strconv.Itoa(len(token))},
				Location:    at,
			}))
		}
	}
	return issues
}

var quotedToken = regexp.MustCompile(`["']([A-Za-z0-9+/=_\-]{20,})["']`)

// highEntropyToken returns the first quoted token on the line whose
// Shannon entropy exceeds the threshold.
func (s *Scanner) highEntropyToken(line string) (string, bool) {
	for _, match := range quotedToken.FindAllStringSubmatch(line, -1) {
		token := match[1]
		if shannonEntropy(token) >= s.entropyThreshold {
			return token, true
		}
	}
	return "", false
}

func shannonEntropy(value string) float64 {
	if value == "" {
		return 0
	}
	freq := make(map[rune]int)
	for _, r := range value {
		freq[r]++
	}
	total := float64(len([]rune(value)))
	entropy := 0.0
	for _, count := range freq {
		p := float64(count) / total
		entropy -= p * math.Log2(p)
	}
	return entropy
}

func defaultSecretPatterns() []secretPattern {
	return []secretPattern{
		{
			id:       "aws-access-key",
			title:    "AWS access key",
			pattern:  regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
			severity: domain.SeverityCritical,
		},
		{
			id:       "github-token",
			title:    "GitHub token",
			pattern:  regexp.MustCompile(`gh[posr]_[a-zA-Z0-9]{20,}`),
			severity: domain.SeverityCritical,
		},
		{
			id:       "openai-api-key",
			title:    "OpenAI API key",
			pattern:  regexp.MustCompile(`sk-[a-zA-Z0-9]{20,}`),
			severity: domain.SeverityCritical,
		},
		{
			id:       "google-api-key",
			title:    "Google API key",
			pattern:  regexp.MustCompile(`AIza[0-9A-Za-z\-_]{35}`),
			severity: domain.SeverityCritical,
		},
		{
			id:       "slack-token",
			title:    "Slack token",
			pattern:  regexp.MustCompile(`xox[baprs]-[a-zA-Z0-9\-]{10,}`),
			severity: domain.SeverityCritical,
		},
		{
			id:       "private-key",
			title:    "Private key material",
			pattern:  regexp.MustCompile(`-----BEGIN\s+(?:RSA|EC|OPENSSH|DSA|ENCRYPTED)?\s*PRIVATE\s+KEY-----`),
			severity: domain.SeverityCritical,
		},
		{
			id:       "jwt-token",
			title:    "JWT token",
			pattern:  regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`),
			severity: domain.SeverityHigh,
		},
		{
			id:       "bearer-token",
			title:    "Bearer token",
			pattern:  regexp.MustCompile(`Bearer\s+[a-zA-Z0-9_\-\.]{16,}`),
			severity: domain.SeverityHigh,
		},
	}
}
