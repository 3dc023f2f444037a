package llm

import (
	"context"
	"strings"
	"time"

	"triage_server/core/domain"
	"triage_server/core/port/out"
	"triage_server/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker"
)

const classifySystemPrompt = `You classify customer support emails for a Scandinavian subscription service.
The text has had personal data replaced with tokens like [EMAIL], [PHONE], [ADDRESS], [IDNUM].

Respond with a JSON object only:
{
  "intent": one of "relocation_cancellation", "cancellation", "billing", "access", "other", "unclear",
  "language": one of "no", "en", "sv",
  "confidence": number between 0 and 1,
  "fields": optional object with "move_date" (ISO date) and "customer_ref" when present in the text
}

Use "relocation_cancellation" when the customer cancels because they are moving.
Use "unclear" when you cannot tell what the customer wants.`

const maxBodyRunes = 4000

// Extractor escalates classification to the LLM. It implements the
// fallback port: every failure mode (timeout, transport, open
// breaker, malformed or out-of-schema response) collapses into the
// sentinel result so the pipeline never branches on an error here.
type Extractor struct {
	client       *Client
	breaker      *gobreaker.CircuitBreaker
	timeout      time.Duration
	fallbackLang domain.Language
	metrics      out.MetricsSink
}

var _ out.FallbackClassifier = (*Extractor)(nil)

func NewExtractor(client *Client, timeout time.Duration, fallbackLang domain.Language, metrics out.MetricsSink) *Extractor {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "llm-classify",
		MaxRequests: 2,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state change")
		},
	})
	return &Extractor{
		client:       client,
		breaker:      breaker,
		timeout:      timeout,
		fallbackLang: fallbackLang,
		metrics:      metrics,
	}
}

type classifyResponse struct {
	Intent     string            `json:"intent"`
	Language   string            `json:"language"`
	Confidence float64           `json:"confidence"`
	Fields     map[string]string `json:"fields"`
}

// Classify sends the masked text to the model. The caller hands over
// masked text only; nothing here re-reads the original ticket.
func (e *Extractor) Classify(ctx context.Context, subject, maskedBody string) *domain.ExtractionResult {
	start := time.Now()
	defer func() {
		e.metrics.Observe(out.MetricLLMLatency, time.Since(start))
	}()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	userPrompt := "Subject: " + subject + "\n\nBody:\n" + truncateBody(maskedBody)

	raw, err := e.breaker.Execute(func() (any, error) {
		return e.client.CompleteJSON(ctx, classifySystemPrompt, userPrompt)
	})
	if err != nil {
		logger.WithError(err).Warn("LLM classification failed")
		return domain.FailedExtraction(e.fallbackLang)
	}

	content := stripJSONFence(raw.(string))

	var resp classifyResponse
	if err := json.Unmarshal([]byte(content), &resp); err != nil {
		logger.WithError(err).Warn("LLM returned malformed JSON")
		return domain.FailedExtraction(e.fallbackLang)
	}

	intent, ok := parseIntent(resp.Intent)
	if !ok {
		logger.WithField("intent", resp.Intent).Warn("LLM returned unknown intent")
		return domain.FailedExtraction(e.fallbackLang)
	}

	result := &domain.ExtractionResult{
		Intent:     intent,
		Language:   parseLanguage(resp.Language, e.fallbackLang),
		Fields:     resp.Fields,
		Confidence: clamp01(resp.Confidence),
		Provenance: domain.ProvenanceAI,
	}
	if len(result.Fields) == 0 {
		result.Fields = nil
	}
	return result
}

func parseIntent(s string) (domain.Intent, bool) {
	for _, intent := range domain.KnownIntents {
		if s == string(intent) {
			return intent, true
		}
	}
	return domain.IntentUnclear, false
}

func parseLanguage(s string, fallback domain.Language) domain.Language {
	switch domain.Language(s) {
	case domain.LanguageNorwegian, domain.LanguageEnglish, domain.LanguageSwedish:
		return domain.Language(s)
	}
	return fallback
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// stripJSONFence removes a markdown code fence around a JSON payload.
func stripJSONFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

func truncateBody(body string) string {
	runes := []rune(body)
	if len(runes) <= maxBodyRunes {
		return body
	}
	return string(runes[:maxBodyRunes]) + "\n[truncated]"
}
