package verify

import (
	"errors"
	"fmt"
)

// Sentinel errors for expected pipeline rejections. These map to specific
// client-facing statuses; anything else is an internal failure.
var (
	// ErrInsufficientCredit rejects a verification before any external call
	// when the org has no credit balance.
	ErrInsufficientCredit = errors.New("insufficient credit")

	// ErrUnsupportedType rejects a check type the registry does not cover.
	ErrUnsupportedType = errors.New("unsupported verification type")

	// ErrAuthentication means the registry rejected our provider credentials.
	ErrAuthentication = errors.New("registry authentication failed")
)

// ProviderError is a registry call that completed with a non-success status.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("registry returned status %d", e.StatusCode)
}

// Stage names how far a verification advanced before an outcome.
type Stage string

const (
	StageReceived       Stage = "RECEIVED"
	StageProviderCalled Stage = "PROVIDER_CALLED"
	StagePersisted      Stage = "PERSISTED"
	StageSummarized     Stage = "SUMMARIZED"
	StageReported       Stage = "REPORTED"
	StageBilled         Stage = "BILLED"
	StageAudited        Stage = "AUDITED"
)

// PipelineError wraps a failure with the stage it occurred in. Failures past
// the provider call leave partial state behind; the stage tells operators
// what was already persisted.
type PipelineError struct {
	Stage Stage
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("verification failed at stage %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }
