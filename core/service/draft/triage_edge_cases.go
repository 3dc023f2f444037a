package draft

import (
	"strings"
	"time"

	"triage_server/core/domain"
)

// futureDatedHorizon is how far ahead a move date may lie before the
// request needs manual scheduling instead of immediate processing.
const futureDatedHorizon = 60 * 24 * time.Hour

var institutionalMarkers = []string{
	"borettslag",
	"sameie",
	"bedrift",
	"organisasjonsnummer",
	"org.nr",
	"company account",
	"housing cooperative",
	"bostadsrättsförening",
}

// detectEdgeCase walks the decision table in priority order. The
// first matching row wins; a duplicate of an already-resolved ticket
// outranks everything because no new reply should go out at all.
func detectEdgeCase(result *domain.ExtractionResult, maskedBody string, duplicateResolved bool, now time.Time) domain.EdgeCase {
	if duplicateResolved {
		return domain.EdgeAlreadyResolvedDupe
	}

	lower := strings.ToLower(maskedBody)
	for _, marker := range institutionalMarkers {
		if strings.Contains(lower, marker) {
			return domain.EdgeInstitutionalAcct
		}
	}

	if moveDate, ok := result.Fields[domain.FieldMoveDate]; ok {
		if d, err := time.Parse("2006-01-02", moveDate); err == nil {
			if d.After(now.Add(futureDatedHorizon)) {
				return domain.EdgeFutureDatedRequest
			}
		}
	}

	// A guard firing means the customer is locked out of self-service
	for _, s := range result.Signals {
		if s.Guard {
			return domain.EdgeNoSelfService
		}
	}

	return domain.EdgeNone
}

// edgeCaseApplicability caps draft confidence per edge case: the
// standard template still goes out, but flagged for closer review.
func edgeCaseApplicability(ec domain.EdgeCase) float64 {
	switch ec {
	case domain.EdgeNone:
		return 1.0
	case domain.EdgeNoSelfService:
		return 0.8
	case domain.EdgeInstitutionalAcct:
		return 0.6
	case domain.EdgeFutureDatedRequest:
		return 0.7
	case domain.EdgeAlreadyResolvedDupe:
		return 0.4
	}
	return 1.0
}
