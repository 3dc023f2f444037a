package domain

// Intent is the coarse classification of what the customer wants
type Intent string

const (
	IntentRelocationCancellation Intent = "relocation_cancellation"
	IntentCancellation           Intent = "cancellation"
	IntentBilling                Intent = "billing"
	IntentAccess                 Intent = "access"
	IntentOther                  Intent = "other"
	IntentUnclear                Intent = "unclear"
)

// KnownIntents lists every intent a classifier may emit.
var KnownIntents = []Intent{
	IntentRelocationCancellation,
	IntentCancellation,
	IntentBilling,
	IntentAccess,
	IntentOther,
	IntentUnclear,
}

// Language is the detected customer language
type Language string

const (
	LanguageNorwegian Language = "no"
	LanguageEnglish   Language = "en"
	LanguageSwedish   Language = "sv"
)

// Provenance indicates which engine produced an extraction result
type Provenance string

const (
	ProvenanceDeterministic Provenance = "deterministic"
	ProvenanceAI            Provenance = "ai"
)

// Well-known extracted field keys
const (
	FieldMoveDate      = "move_date"
	FieldCustomerRef   = "customer_ref"
	FieldEffectiveDate = "effective_date"
)

// MatchedSignal is one lexical pattern that fired during extraction.
// Guard signals veto the intent they are attached to instead of
// contributing score.
type MatchedSignal struct {
	Name   string  `json:"name"`
	Intent Intent  `json:"intent"`
	Weight float64 `json:"weight"`
	Guard  bool    `json:"guard"`
}

// ExtractionResult is the full classification outcome for one ticket.
type ExtractionResult struct {
	Intent     Intent            `json:"intent"`
	Language   Language          `json:"language"`
	Fields     map[string]string `json:"fields,omitempty"`
	Signals    []MatchedSignal   `json:"signals,omitempty"`
	Confidence float64           `json:"confidence"`
	Provenance Provenance        `json:"provenance"`

	// Failed marks a degraded AI fallback (timeout, transport,
	// malformed response). Never set by the deterministic engine.
	Failed bool `json:"failed,omitempty"`
}

// FailedExtraction is the sentinel returned when the AI fallback
// cannot produce a usable result.
func FailedExtraction(lang Language) *ExtractionResult {
	return &ExtractionResult{
		Intent:     IntentUnclear,
		Language:   lang,
		Confidence: 0,
		Provenance: ProvenanceAI,
		Failed:     true,
	}
}

// CorroboratingCount returns the number of non-guard signals backing
// the winning intent.
func (r *ExtractionResult) CorroboratingCount() int {
	n := 0
	for _, s := range r.Signals {
		if !s.Guard && s.Intent == r.Intent {
			n++
		}
	}
	return n
}

// RouteDecision is the router's verdict on an extraction result
type RouteDecision string

const (
	RouteResolve      RouteDecision = "resolve"
	RouteEscalate     RouteDecision = "escalate"
	RouteUnresolvable RouteDecision = "unresolvable"
)
