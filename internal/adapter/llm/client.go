package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/codesage/code-sage/internal/domain"
	"github.com/codesage/code-sage/internal/usecase/enrich"
)

// Client talks to an OpenAI-compatible chat-completions endpoint to
// produce explanations and fix suggestions for issues.
type Client struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient creates an enrichment client. A zero timeout defaults to 30s.
func NewClient(endpoint, apiKey, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Explain implements enrich.Provider.
func (c *Client) Explain(ctx context.Context, issue domain.Issue) (enrich.Explanation, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(issue)},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return enrich.Explanation{}, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return enrich.Explanation{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return enrich.Explanation{}, fmt.Errorf("enrichment request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return enrich.Explanation{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return enrich.Explanation{}, fmt.Errorf("enrichment request failed: status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return enrich.Explanation{}, fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != nil {
		return enrich.Explanation{}, fmt.Errorf("enrichment provider error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return enrich.Explanation{}, fmt.Errorf("enrichment response contained no choices")
	}

	return parseExplanation(parsed.Choices[0].Message.Content), nil
}

const systemPrompt = "You are a code review assistant. Given a static-analysis finding, " +
	"explain the problem and suggest a fix. Answer in two sections labelled " +
	"EXPLANATION: and FIX:."

func buildPrompt(issue domain.Issue) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Finding: %s (%s/%s)\n", issue.Title, issue.Severity, issue.Category)
	fmt.Fprintf(&b, "File: %s line %d\n", issue.Location.File, issue.Location.LineStart)
	fmt.Fprintf(&b, "Detail: %s\n", issue.Description)
	if issue.CodeSnippet != "" {
		fmt.Fprintf(&b, "Code: %s\n", issue.CodeSnippet)
	}
	return b.String()
}

// parseExplanation splits the model output into the EXPLANATION and FIX
// sections. Output that ignores the section format becomes one plain
// explanation.
func parseExplanation(content string) enrich.Explanation {
	content = strings.TrimSpace(content)

	explanationIdx := strings.Index(content, "EXPLANATION:")
	fixIdx := strings.Index(content, "FIX:")

	if explanationIdx == -1 {
		return enrich.Explanation{Explanation: content}
	}

	explanation := content[explanationIdx+len("EXPLANATION:"):]
	var fix string
	if fixIdx > explanationIdx {
		explanation = content[explanationIdx+len("EXPLANATION:") : fixIdx]
		fix = strings.TrimSpace(content[fixIdx+len("FIX:"):])
	}

	result := enrich.Explanation{
		Explanation:  strings.TrimSpace(explanation),
		SuggestedFix: fix,
	}
	if fix != "" {
		result.FixDescription = "Suggested by enrichment provider"
	}
	return result
}
