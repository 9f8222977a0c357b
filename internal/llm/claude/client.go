// Package claude implements the verification risk summarizer on the
// Anthropic Messages API.
package claude

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/linnemanlabs/vet/internal/report"
	"github.com/linnemanlabs/vet/internal/verify"
)

const maxTokens = 1024

const systemPrompt = `You are a vendor compliance analyst. You are given the raw JSON response
from a government registry verification check. Assess the counterparty risk of doing business
with this vendor based only on the data provided.

Respond with a single JSON object and nothing else:
{"risk_level": "LOW" | "MEDIUM" | "HIGH", "summary": "<3-5 sentence plain-language assessment>"}

Use LOW for active, compliant registrations with no red flags. Use HIGH for cancelled,
suspended, or mismatched registrations. Use MEDIUM when the data is ambiguous or incomplete.`

// Client produces risk summaries via the Anthropic API.
type Client struct {
	client anthropic.Client
	model  anthropic.Model
}

// New creates a summarizer client with the given API key and model name.
func New(apiKey, model string) *Client {
	return &Client{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  anthropic.Model(model),
	}
}

// Summarize asks the model for a risk assessment of one verification.
func (c *Client) Summarize(ctx context.Context, in *verify.SummaryInput) (*verify.Summary, error) {
	prompt := fmt.Sprintf("Vendor: %s\nCheck type: %s\nIdentifying number: %s\n\nRegistry response:\n%s",
		in.VendorName, in.Type, in.Number, string(in.RawResponse))

	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("claude: %w", err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return parseSummary(text.String())
}

// parseSummary extracts the assessment from model output. The model is
// instructed to emit bare JSON but may wrap it in prose or a code fence.
func parseSummary(text string) (*verify.Summary, error) {
	raw := extractJSON(text)
	if raw == "" {
		return nil, fmt.Errorf("claude: no JSON object in response")
	}

	var out struct {
		RiskLevel string `json:"risk_level"`
		Summary   string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("claude: malformed response: %w", err)
	}

	level := report.RiskLevel(strings.ToUpper(strings.TrimSpace(out.RiskLevel)))
	if !level.Valid() {
		return nil, fmt.Errorf("claude: unknown risk level %q", out.RiskLevel)
	}
	if strings.TrimSpace(out.Summary) == "" {
		return nil, fmt.Errorf("claude: empty summary")
	}

	return &verify.Summary{RiskLevel: level, Text: strings.TrimSpace(out.Summary)}, nil
}

// extractJSON returns the first top-level JSON object in text.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}
