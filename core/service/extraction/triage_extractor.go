package extraction

import (
	"math"
	"sort"
	"strings"

	"triage_server/core/domain"
)

// Confidence weighting: win score dominates, margin over the
// runner-up and corroborating signal count refine it.
const (
	weightWin           = 0.5
	weightMargin        = 0.3
	weightCorroboration = 0.2
	corroborationCap    = 3
)

// Extractor runs the deterministic signal engine over masked text.
type Extractor struct {
	rules    []signalRule
	detector *Detector
}

func NewExtractor(fallbackLang domain.Language) *Extractor {
	return &Extractor{
		rules:    defaultSignalRules(),
		detector: NewDetector(fallbackLang),
	}
}

// Extract matches the signal registry against subject+body, applies
// guard vetoes, promotes cancellation evidence when a relocation
// marker is present, and scores the winner.
func (e *Extractor) Extract(subject, maskedBody string) *domain.ExtractionResult {
	text := strings.ToLower(subject + "\n" + maskedBody)

	scores := make(map[domain.Intent]float64)
	vetoed := make(map[domain.Intent]bool)
	var signals []domain.MatchedSignal

	relocationMarker := false
	cancellationWeight := 0.0

	for _, rule := range e.rules {
		if !strings.Contains(text, rule.Pattern) {
			continue
		}

		scores[rule.Intent] += rule.Weight
		signals = append(signals, domain.MatchedSignal{
			Name:   rule.Name,
			Intent: rule.Intent,
			Weight: rule.Weight,
		})

		switch rule.Intent {
		case domain.IntentRelocationCancellation:
			relocationMarker = true
		case domain.IntentCancellation:
			cancellationWeight += rule.Weight
		}

		if rule.Guard {
			for _, v := range rule.Vetoes {
				vetoed[v] = true
				signals = append(signals, domain.MatchedSignal{
					Name:   rule.Name,
					Intent: v,
					Guard:  true,
				})
			}
		}
	}

	// A cancellation request that mentions moving is a relocation
	// cancellation: the cancellation evidence corroborates it.
	if relocationMarker && cancellationWeight > 0 {
		scores[domain.IntentRelocationCancellation] += cancellationWeight
		for i, s := range signals {
			if !s.Guard && s.Intent == domain.IntentCancellation {
				signals[i].Intent = domain.IntentRelocationCancellation
			}
		}
	}

	for intent := range vetoed {
		scores[intent] = 0
	}

	win, runnerUp, winner := rank(scores)

	result := &domain.ExtractionResult{
		Intent:     winner,
		Language:   e.detector.Detect(subject + "\n" + maskedBody),
		Fields:     ExtractFields(maskedBody),
		Signals:    signals,
		Provenance: domain.ProvenanceDeterministic,
	}
	result.Confidence = Confidence(win, runnerUp, result.CorroboratingCount())
	return result
}

// rank returns the best and second-best scores and the winning
// intent. No positive score at all means the intent is unclear.
func rank(scores map[domain.Intent]float64) (win, runnerUp float64, winner domain.Intent) {
	winner = domain.IntentUnclear

	intents := make([]domain.Intent, 0, len(scores))
	for intent := range scores {
		intents = append(intents, intent)
	}
	// Deterministic iteration so equal scores always pick the same winner
	sort.Slice(intents, func(i, j int) bool { return intents[i] < intents[j] })

	for _, intent := range intents {
		s := scores[intent]
		if s > win {
			runnerUp = win
			win = s
			winner = intent
		} else if s > runnerUp {
			runnerUp = s
		}
	}
	if win == 0 {
		winner = domain.IntentUnclear
	}
	return win, runnerUp, winner
}

// Confidence is a pure function of the winning score, its margin over
// the runner-up and the number of corroborating signals. Strictly
// monotone in corroboration up to the cap, clamped to [0,1], and zero
// when nothing matched.
func Confidence(win, runnerUp float64, corroborating int) float64 {
	if win <= 0 {
		return 0
	}
	winNorm := math.Min(1, win)
	margin := math.Min(1, win-runnerUp)
	corr := math.Min(1, float64(corroborating)/corroborationCap)

	c := weightWin*winNorm + weightMargin*margin + weightCorroboration*corr
	return math.Max(0, math.Min(1, c))
}
