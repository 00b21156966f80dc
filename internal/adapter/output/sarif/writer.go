// Package sarif renders an analysis result as a SARIF 2.1.0 document.
package sarif

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/codesage/code-sage/internal/domain"
)

// Writer serializes project results as SARIF for CI and editor
// integrations.
type Writer struct {
	toolVersion string
}

// NewWriter creates a new SARIF writer.
func NewWriter(toolVersion string) *Writer {
	if toolVersion == "" {
		toolVersion = "0.0.0"
	}
	return &Writer{toolVersion: toolVersion}
}

// Render writes the result to out as an indented SARIF document.
func (w *Writer) Render(out io.Writer, result *domain.ProjectResult) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(w.convertToSARIF(result)); err != nil {
		return fmt.Errorf("failed to encode result to sarif: %w", err)
	}
	return nil
}

// convertToSARIF converts a domain.ProjectResult to SARIF format.
func (w *Writer) convertToSARIF(result *domain.ProjectResult) map[string]interface{} {
	sarifResults := make([]map[string]interface{}, 0)
	ruleIDs := make(map[string]bool)
	rules := make([]map[string]interface{}, 0)

	for _, record := range result.Records {
		for _, issue := range record.Issues {
			// SARIF requires non-empty message text
			messageText := issue.Description
			if messageText == "" {
				messageText = issue.Title
			}
			if messageText == "" {
				messageText = "No description provided"
			}

			ruleID := issue.RuleID
			if ruleID == "" {
				ruleID = string(issue.Category)
			}
			if !ruleIDs[ruleID] {
				ruleIDs[ruleID] = true
				rules = append(rules, map[string]interface{}{
					"id":               ruleID,
					"shortDescription": map[string]interface{}{"text": issue.Title},
				})
			}

			sarifResult := map[string]interface{}{
				"ruleId": ruleID,
				"level":  convertSeverity(issue.Severity),
				"message": map[string]interface{}{
					"text": messageText,
				},
			}

			if issue.Location.File != "" {
				physicalLocation := map[string]interface{}{
					"artifactLocation": map[string]interface{}{
						"uri": issue.Location.File,
					},
				}

				// Don't fabricate line 1 for findings without a location.
				if issue.Location.LineStart >= 1 {
					startLine := issue.Location.LineStart
					endLine := issue.Location.LineEnd
					if endLine < startLine {
						endLine = startLine
					}
					physicalLocation["region"] = map[string]interface{}{
						"startLine": startLine,
						"endLine":   endLine,
					}
				}

				sarifResult["locations"] = []map[string]interface{}{
					{"physicalLocation": physicalLocation},
				}
			}

			if issue.SuggestedFix != "" {
				sarifResult["properties"] = map[string]interface{}{
					"suggestion": issue.SuggestedFix,
				}
			}

			sarifResults = append(sarifResults, sarifResult)
		}
	}

	return map[string]interface{}{
		"version": "2.1.0",
		"$schema": "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
		"runs": []map[string]interface{}{
			{
				"tool": map[string]interface{}{
					"driver": map[string]interface{}{
						"name":           "code-sage",
						"informationUri": "https://github.com/codesage/code-sage",
						"version":        w.toolVersion,
						"rules":          rules,
					},
				},
				"results": sarifResults,
				"properties": map[string]interface{}{
					"totalFiles":  result.TotalFiles,
					"failedFiles": result.FailedFiles,
					"totalIssues": result.TotalIssues,
				},
			},
		},
	}
}

// convertSeverity maps severities to SARIF levels.
func convertSeverity(severity domain.Severity) string {
	switch severity {
	case domain.SeverityCritical, domain.SeverityHigh:
		return "error"
	case domain.SeverityMedium:
		return "warning"
	case domain.SeverityLow, domain.SeverityInfo:
		return "note"
	default:
		return "warning"
	}
}
