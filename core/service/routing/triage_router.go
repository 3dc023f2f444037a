// Package routing gates classification results by confidence.
package routing

import "triage_server/core/domain"

// Thresholds control the router. ResolveThreshold is the confidence a
// deterministic result needs to skip the AI fallback; ViabilityFloor
// is the minimum an AI result needs to be accepted at all.
type Thresholds struct {
	ResolveThreshold float64
	ViabilityFloor   float64
}

// DefaultThresholds matches the production configuration defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{ResolveThreshold: 0.75, ViabilityFloor: 0.25}
}

// Router decides what happens to an extraction result.
type Router struct {
	thresholds Thresholds
}

func NewRouter(t Thresholds) *Router {
	return &Router{thresholds: t}
}

// Thresholds returns the configured gates.
func (r *Router) Thresholds() Thresholds {
	return r.thresholds
}

// Route applies the confidence gates. Deterministic results either
// resolve outright or escalate to the AI fallback; AI results either
// clear the viability floor or the ticket is unresolvable. A failed
// AI result is always unresolvable.
func (r *Router) Route(result *domain.ExtractionResult) domain.RouteDecision {
	if result.Failed {
		return domain.RouteUnresolvable
	}

	switch result.Provenance {
	case domain.ProvenanceDeterministic:
		if result.Confidence >= r.thresholds.ResolveThreshold {
			return domain.RouteResolve
		}
		return domain.RouteEscalate

	case domain.ProvenanceAI:
		if result.Intent != domain.IntentUnclear && result.Confidence >= r.thresholds.ViabilityFloor {
			return domain.RouteResolve
		}
		return domain.RouteUnresolvable
	}

	return domain.RouteUnresolvable
}
