package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"triage_server/core/domain"
	"triage_server/pkg/metrics"

	openai "github.com/sashabaranov/go-openai"
)

// fakeCompletion is a canned chat-completion transport.
type fakeCompletion struct {
	content  string
	err      error
	delay    time.Duration
	lastUser string
}

func (f *fakeCompletion) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	for _, m := range req.Messages {
		if m.Role == openai.ChatMessageRoleUser {
			f.lastUser = m.Content
		}
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return openai.ChatCompletionResponse{}, ctx.Err()
		}
	}
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.content}},
		},
	}, nil
}

func newTestExtractor(fake *fakeCompletion) *Extractor {
	client := &Client{client: fake, model: "test-model", maxTokens: 256}
	return NewExtractor(client, 50*time.Millisecond, domain.LanguageNorwegian, metrics.Noop{})
}

func TestClassifyParsesResponse(t *testing.T) {
	fake := &fakeCompletion{
		content: `{"intent":"relocation_cancellation","language":"no","confidence":0.82,"fields":{"move_date":"2026-03-15"}}`,
	}
	e := newTestExtractor(fake)

	result := e.Classify(context.Background(), "Oppsigelse", "Vi flytter og vil si opp.")

	if result.Failed {
		t.Fatal("result marked failed")
	}
	if result.Intent != domain.IntentRelocationCancellation {
		t.Errorf("Intent = %s, want relocation_cancellation", result.Intent)
	}
	if result.Language != domain.LanguageNorwegian {
		t.Errorf("Language = %s, want no", result.Language)
	}
	if result.Confidence != 0.82 {
		t.Errorf("Confidence = %.2f, want 0.82", result.Confidence)
	}
	if result.Provenance != domain.ProvenanceAI {
		t.Errorf("Provenance = %s, want ai", result.Provenance)
	}
	if result.Fields[domain.FieldMoveDate] != "2026-03-15" {
		t.Errorf("move_date = %q, want 2026-03-15", result.Fields[domain.FieldMoveDate])
	}
}

func TestClassifyStripsCodeFence(t *testing.T) {
	fake := &fakeCompletion{
		content: "```json\n{\"intent\":\"billing\",\"language\":\"en\",\"confidence\":0.7}\n```",
	}
	e := newTestExtractor(fake)

	result := e.Classify(context.Background(), "Invoice", "I was charged twice.")
	if result.Failed {
		t.Fatal("result marked failed")
	}
	if result.Intent != domain.IntentBilling {
		t.Errorf("Intent = %s, want billing", result.Intent)
	}
}

func TestClassifySentinelOnFailure(t *testing.T) {
	tests := []struct {
		name string
		fake *fakeCompletion
	}{
		{"transport error", &fakeCompletion{err: errors.New("connection refused")}},
		{"timeout", &fakeCompletion{delay: time.Second, content: `{"intent":"billing"}`}},
		{"malformed json", &fakeCompletion{content: `not json at all`}},
		{"unknown intent", &fakeCompletion{content: `{"intent":"spam","language":"no","confidence":0.9}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestExtractor(tt.fake)
			result := e.Classify(context.Background(), "Subject", "Body")

			if !result.Failed {
				t.Error("expected sentinel with Failed=true")
			}
			if result.Intent != domain.IntentUnclear {
				t.Errorf("Intent = %s, want unclear", result.Intent)
			}
			if result.Confidence != 0 {
				t.Errorf("Confidence = %.2f, want 0", result.Confidence)
			}
			if result.Provenance != domain.ProvenanceAI {
				t.Errorf("Provenance = %s, want ai", result.Provenance)
			}
		})
	}
}

func TestClassifySendsMaskedTextOnly(t *testing.T) {
	fake := &fakeCompletion{content: `{"intent":"cancellation","language":"no","confidence":0.6}`}
	e := newTestExtractor(fake)

	maskedSubject := "Oppsigelse fra [EMAIL]"
	masked := "Ring meg på [PHONE] eller [EMAIL]. Jeg vil si opp."
	e.Classify(context.Background(), maskedSubject, masked)

	if !strings.Contains(fake.lastUser, masked) {
		t.Error("prompt does not contain the masked body it was given")
	}
	if !strings.Contains(fake.lastUser, maskedSubject) {
		t.Error("prompt does not contain the masked subject it was given")
	}
	if !strings.Contains(fake.lastUser, "[PHONE]") || !strings.Contains(fake.lastUser, "[EMAIL]") {
		t.Error("masking tokens missing from the prompt")
	}
}

func TestClassifyClampsConfidence(t *testing.T) {
	fake := &fakeCompletion{content: `{"intent":"billing","language":"en","confidence":3.5}`}
	e := newTestExtractor(fake)

	result := e.Classify(context.Background(), "s", "b")
	if result.Confidence != 1 {
		t.Errorf("Confidence = %.2f, want clamped to 1", result.Confidence)
	}
}

func TestClassifyUnknownLanguageFallsBack(t *testing.T) {
	fake := &fakeCompletion{content: `{"intent":"billing","language":"dk","confidence":0.5}`}
	e := newTestExtractor(fake)

	result := e.Classify(context.Background(), "s", "b")
	if result.Language != domain.LanguageNorwegian {
		t.Errorf("Language = %s, want fallback no", result.Language)
	}
}

func TestStripJSONFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"padded", "  {\"a\":1}  ", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripJSONFence(tt.in); got != tt.want {
				t.Errorf("stripJSONFence(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
