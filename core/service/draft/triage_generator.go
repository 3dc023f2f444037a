package draft

import (
	"math"
	"time"

	"triage_server/core/domain"

	"github.com/google/uuid"
)

// Input carries everything the generator needs for one draft.
type Input struct {
	TicketID   uuid.UUID
	Result     *domain.ExtractionResult
	MaskedBody string

	// DuplicateResolved is set by the orchestrator when the ticket is
	// a re-submission of an already-resolved one.
	DuplicateResolved bool
}

// Generator produces reply drafts from classification results.
type Generator struct {
	now func() time.Time
}

func NewGenerator() *Generator {
	return &Generator{now: time.Now}
}

// NewGeneratorAt pins the clock, for tests and replays.
func NewGeneratorAt(now func() time.Time) *Generator {
	return &Generator{now: now}
}

// Generate dispatches on the classified intent. The switch is closed:
// every known intent has an arm and anything else falls through to
// the generic holding reply. A failed classification produces an
// empty draft with method none so the ticket still reaches review.
func (g *Generator) Generate(in Input) *domain.Draft {
	result := in.Result

	d := &domain.Draft{
		ID:        uuid.New(),
		TicketID:  in.TicketID,
		Language:  result.Language,
		CreatedAt: g.now().UTC(),
	}

	if result.Failed {
		d.Method = domain.MethodNone
		d.Confidence = 0
		return d
	}

	edge := detectEdgeCase(result, in.MaskedBody, in.DuplicateResolved, g.now())
	d.EdgeCase = edge

	var tpl template
	switch result.Intent {
	case domain.IntentRelocationCancellation:
		tpl = relocationTemplate(result.Language)
		d.Method = methodFor(result)
	case domain.IntentCancellation:
		tpl = cancellationTemplate(result.Language)
		d.Method = methodFor(result)
	case domain.IntentBilling:
		tpl = billingTemplate(result.Language)
		d.Method = methodFor(result)
	case domain.IntentAccess:
		tpl = accessTemplate(result.Language)
		d.Method = methodFor(result)
	case domain.IntentOther, domain.IntentUnclear:
		tpl = genericTemplate(result.Language)
		d.Method = domain.MethodGeneric
	default:
		tpl = genericTemplate(result.Language)
		d.Method = domain.MethodGeneric
	}

	d.Body = tpl.render(result.Fields)

	applicability := math.Min(tpl.Applicability, edgeCaseApplicability(edge))
	d.Confidence = math.Min(result.Confidence, applicability)
	return d
}

// methodFor maps provenance onto the generation method for templated
// replies.
func methodFor(result *domain.ExtractionResult) domain.GenerationMethod {
	if result.Provenance == domain.ProvenanceAI {
		return domain.MethodAIAssisted
	}
	return domain.MethodDeterministic
}
