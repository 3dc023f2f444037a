package out

import (
	"context"

	"triage_server/core/domain"
)

// FallbackClassifier is the AI escalation path. It receives masked
// text only and never returns an error to the caller: any failure
// mode collapses into the sentinel result (intent unclear,
// confidence 0, Failed=true).
type FallbackClassifier interface {
	Classify(ctx context.Context, subject, maskedBody string) *domain.ExtractionResult
}
