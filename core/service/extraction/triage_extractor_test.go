package extraction

import (
	"testing"

	"triage_server/core/domain"
)

func TestExtractRelocationCancellation(t *testing.T) {
	e := NewExtractor(domain.LanguageNorwegian)

	subject := "Oppsigelse ved flytting"
	body := "Hei, vi flytter til ny by 15.03.2026 og ønsker derfor å si opp abonnementet vårt. Mvh Ola"

	result := e.Extract(subject, body)

	if result.Intent != domain.IntentRelocationCancellation {
		t.Errorf("Intent = %s, want %s", result.Intent, domain.IntentRelocationCancellation)
	}
	if result.Language != domain.LanguageNorwegian {
		t.Errorf("Language = %s, want no", result.Language)
	}
	if result.Confidence < 0.75 {
		t.Errorf("Confidence = %.3f, want >= 0.75", result.Confidence)
	}
	if result.Provenance != domain.ProvenanceDeterministic {
		t.Errorf("Provenance = %s, want deterministic", result.Provenance)
	}
	if got := result.Fields[domain.FieldMoveDate]; got != "2026-03-15" {
		t.Errorf("move_date = %q, want 2026-03-15", got)
	}

	// Cancellation evidence corroborates the relocation intent
	if n := result.CorroboratingCount(); n < 3 {
		t.Errorf("corroborating signals = %d, want >= 3", n)
	}
}

func TestExtractGuardVetoesCancellation(t *testing.T) {
	e := NewExtractor(domain.LanguageNorwegian)

	subject := "Problemer med Min side"
	body := "Jeg vurderer å avslutte abonnementet, men jeg får ikke logget inn på siden deres. Kan dere hjelpe?"

	result := e.Extract(subject, body)

	if result.Intent != domain.IntentAccess {
		t.Errorf("Intent = %s, want %s", result.Intent, domain.IntentAccess)
	}

	// The cancellation keyword matched but must carry no score
	sawCancelSignal := false
	sawVeto := false
	for _, s := range result.Signals {
		if s.Name == "kw_avslutte" {
			sawCancelSignal = true
		}
		if s.Guard && s.Intent == domain.IntentCancellation {
			sawVeto = true
		}
	}
	if !sawCancelSignal {
		t.Error("expected kw_avslutte in matched signals")
	}
	if !sawVeto {
		t.Error("expected a guard veto against cancellation")
	}
	if result.Confidence < 0.75 {
		t.Errorf("Confidence = %.3f, want >= 0.75 for the access intent", result.Confidence)
	}
}

func TestExtractNoSignals(t *testing.T) {
	e := NewExtractor(domain.LanguageNorwegian)

	result := e.Extract("Hei", "Dette er en generell henvendelse uten noe spesielt.")

	if result.Intent != domain.IntentUnclear {
		t.Errorf("Intent = %s, want unclear", result.Intent)
	}
	if result.Confidence != 0 {
		t.Errorf("Confidence = %.3f, want 0", result.Confidence)
	}
}

func TestExtractSingleWeakSignal(t *testing.T) {
	e := NewExtractor(domain.LanguageEnglish)

	result := e.Extract("Subscription", "Please cancel my subscription.")

	if result.Intent != domain.IntentCancellation {
		t.Errorf("Intent = %s, want cancellation", result.Intent)
	}
	if result.Confidence >= 0.75 || result.Confidence < 0.25 {
		t.Errorf("Confidence = %.3f, want mid-band [0.25, 0.75)", result.Confidence)
	}
}

func TestConfidenceProperties(t *testing.T) {
	tests := []struct {
		name          string
		win, runnerUp float64
		corroborating int
		wantZero      bool
	}{
		{"no score", 0, 0, 0, true},
		{"negative guarded", 0, 0.5, 2, true},
		{"clear winner", 1.2, 0.2, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Confidence(tt.win, tt.runnerUp, tt.corroborating)
			if tt.wantZero && got != 0 {
				t.Errorf("Confidence = %.3f, want 0", got)
			}
			if got < 0 || got > 1 {
				t.Errorf("Confidence = %.3f outside [0,1]", got)
			}
		})
	}
}

func TestConfidenceMonotoneInCorroboration(t *testing.T) {
	prev := -1.0
	for n := 0; n <= 5; n++ {
		c := Confidence(0.8, 0.3, n)
		if c < prev {
			t.Errorf("Confidence decreased at n=%d: %.3f < %.3f", n, c, prev)
		}
		if c < 0 || c > 1 {
			t.Errorf("Confidence(0.8, 0.3, %d) = %.3f outside [0,1]", n, c)
		}
		prev = c
	}

	// Strictly increasing below the cap
	if Confidence(0.8, 0.3, 2) <= Confidence(0.8, 0.3, 1) {
		t.Error("expected strictly higher confidence with more corroboration below the cap")
	}
}

func TestDetectLanguage(t *testing.T) {
	d := NewDetector(domain.LanguageNorwegian)

	tests := []struct {
		name string
		text string
		want domain.Language
	}{
		{"norwegian", "Hei, jeg ønsker å si opp abonnementet mitt. Vennlig hilsen", domain.LanguageNorwegian},
		{"english", "Hello, I would like to cancel my subscription please. Regards", domain.LanguageEnglish},
		{"swedish", "Hej, jag vill säga upp mitt abonnemang. Vänliga hälsningar", domain.LanguageSwedish},
		{"empty falls back", "", domain.LanguageNorwegian},
		{"no markers falls back", "12345 67890", domain.LanguageNorwegian},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.Detect(tt.text); got != tt.want {
				t.Errorf("Detect(%q) = %s, want %s", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractFields(t *testing.T) {
	tests := []struct {
		name string
		text string
		key  string
		want string
	}{
		{"dotted date", "vi flytter 1.3.2026", domain.FieldMoveDate, "2026-03-01"},
		{"iso date", "flyttedato 2026-03-15 bekreftet", domain.FieldMoveDate, "2026-03-15"},
		{"written date", "vi flytter 1. januar", domain.FieldMoveDate, "1. januar"},
		{"customer ref", "kundenummer 483920", domain.FieldCustomerRef, "483920"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := ExtractFields(tt.text)
			if fields == nil {
				t.Fatal("ExtractFields() = nil")
			}
			if got := fields[tt.key]; got != tt.want {
				t.Errorf("%s = %q, want %q", tt.key, got, tt.want)
			}
		})
	}

	if got := ExtractFields("ingenting her"); got != nil {
		t.Errorf("ExtractFields() = %v, want nil", got)
	}
}
