package routing

import (
	"testing"

	"triage_server/core/domain"
)

func TestRoute(t *testing.T) {
	r := NewRouter(DefaultThresholds())

	tests := []struct {
		name   string
		result *domain.ExtractionResult
		want   domain.RouteDecision
	}{
		{
			name: "deterministic above threshold resolves",
			result: &domain.ExtractionResult{
				Intent: domain.IntentCancellation, Confidence: 0.80,
				Provenance: domain.ProvenanceDeterministic,
			},
			want: domain.RouteResolve,
		},
		{
			name: "deterministic at threshold resolves",
			result: &domain.ExtractionResult{
				Intent: domain.IntentBilling, Confidence: 0.75,
				Provenance: domain.ProvenanceDeterministic,
			},
			want: domain.RouteResolve,
		},
		{
			name: "deterministic below threshold escalates",
			result: &domain.ExtractionResult{
				Intent: domain.IntentCancellation, Confidence: 0.50,
				Provenance: domain.ProvenanceDeterministic,
			},
			want: domain.RouteEscalate,
		},
		{
			name: "deterministic with nothing matched escalates",
			result: &domain.ExtractionResult{
				Intent: domain.IntentUnclear, Confidence: 0,
				Provenance: domain.ProvenanceDeterministic,
			},
			want: domain.RouteEscalate,
		},
		{
			name: "ai above floor resolves",
			result: &domain.ExtractionResult{
				Intent: domain.IntentAccess, Confidence: 0.60,
				Provenance: domain.ProvenanceAI,
			},
			want: domain.RouteResolve,
		},
		{
			name: "ai below floor is unresolvable",
			result: &domain.ExtractionResult{
				Intent: domain.IntentAccess, Confidence: 0.10,
				Provenance: domain.ProvenanceAI,
			},
			want: domain.RouteUnresolvable,
		},
		{
			name: "ai unclear intent is unresolvable regardless of confidence",
			result: &domain.ExtractionResult{
				Intent: domain.IntentUnclear, Confidence: 0.90,
				Provenance: domain.ProvenanceAI,
			},
			want: domain.RouteUnresolvable,
		},
		{
			name:   "failed ai sentinel is unresolvable",
			result: domain.FailedExtraction(domain.LanguageNorwegian),
			want:   domain.RouteUnresolvable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Route(tt.result); got != tt.want {
				t.Errorf("Route() = %s, want %s", got, tt.want)
			}
		})
	}
}
