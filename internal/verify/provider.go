package verify

import (
	"context"
	"encoding/json"

	"github.com/linnemanlabs/vet/internal/report"
)

// ProviderResult is the outcome of a registry check that reached the
// provider and came back with a payload.
type ProviderResult struct {
	Request  json.RawMessage
	Response json.RawMessage
	Status   string
}

// Provider runs a single check against the external verification registry.
// Implementations return ErrAuthentication for credential rejections and
// *ProviderError for other non-success provider responses.
type Provider interface {
	Check(ctx context.Context, t CheckType, number string) (*ProviderResult, error)
}

// SummaryInput is the context handed to the risk summarizer.
type SummaryInput struct {
	VendorName  string
	Type        CheckType
	Number      string
	RawResponse json.RawMessage
}

// Summary is a risk assessment of a completed verification.
type Summary struct {
	RiskLevel report.RiskLevel
	Text      string
}

// Summarizer produces a risk summary from raw verification output. Errors
// are absorbed by the pipeline, which substitutes a manual-review fallback.
type Summarizer interface {
	Summarize(ctx context.Context, in *SummaryInput) (*Summary, error)
}
