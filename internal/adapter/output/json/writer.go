// Package json renders an analysis result as an indented JSON document.
package json

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/codesage/code-sage/internal/domain"
)

// Writer serializes project results as JSON.
type Writer struct{}

// NewWriter creates a new JSON writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Render writes the result to out as indented JSON.
func (w *Writer) Render(out io.Writer, result *domain.ProjectResult) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to encode result to json: %w", err)
	}
	return nil
}
