// Package extraction implements the deterministic signal engine:
// lexical signal matching with guard vetoes, language detection,
// field extraction and confidence scoring.
package extraction

import "triage_server/core/domain"

// signalRule is one lexical pattern in the registry. Patterns are
// lowercase substrings matched against the lowercased subject+body.
// A matched rule adds Weight to its intent's score. A matched guard
// additionally zeroes the score of every intent in Vetoes no matter
// what the positive signals say.
type signalRule struct {
	Name    string
	Pattern string
	Intent  domain.Intent
	Weight  float64
	Guard   bool
	Vetoes  []domain.Intent
}

// cancellationVetoes lists the intents a login-problem guard blocks.
// A customer locked out of self-service is asking for access help;
// cancellation wording in the same message is context, not a request.
var cancellationVetoes = []domain.Intent{
	domain.IntentCancellation,
	domain.IntentRelocationCancellation,
}

func defaultSignalRules() []signalRule {
	return []signalRule{
		// --- Relocation markers ---
		{Name: "kw_flytter", Pattern: "flytter", Intent: domain.IntentRelocationCancellation, Weight: 0.5},
		{Name: "kw_flytting", Pattern: "flytting", Intent: domain.IntentRelocationCancellation, Weight: 0.5},
		{Name: "kw_flyttedato", Pattern: "flyttedato", Intent: domain.IntentRelocationCancellation, Weight: 0.6},
		{Name: "kw_flyttar", Pattern: "flyttar", Intent: domain.IntentRelocationCancellation, Weight: 0.5},
		{Name: "kw_moving", Pattern: "moving", Intent: domain.IntentRelocationCancellation, Weight: 0.5},
		{Name: "kw_relocating", Pattern: "relocating", Intent: domain.IntentRelocationCancellation, Weight: 0.5},

		// --- Cancellation ---
		{Name: "kw_si_opp", Pattern: "si opp", Intent: domain.IntentCancellation, Weight: 0.6},
		{Name: "kw_sies_opp", Pattern: "sies opp", Intent: domain.IntentCancellation, Weight: 0.6},
		{Name: "kw_oppsigelse", Pattern: "oppsigelse", Intent: domain.IntentCancellation, Weight: 0.6},
		{Name: "kw_avslutte", Pattern: "avslutte", Intent: domain.IntentCancellation, Weight: 0.5},
		{Name: "kw_kansellere", Pattern: "kansellere", Intent: domain.IntentCancellation, Weight: 0.5},
		{Name: "kw_saga_upp", Pattern: "säga upp", Intent: domain.IntentCancellation, Weight: 0.6},
		{Name: "kw_avsluta", Pattern: "avsluta", Intent: domain.IntentCancellation, Weight: 0.5},
		{Name: "kw_cancel", Pattern: "cancel", Intent: domain.IntentCancellation, Weight: 0.5},
		{Name: "kw_terminate", Pattern: "terminate", Intent: domain.IntentCancellation, Weight: 0.5},

		// --- Billing ---
		{Name: "kw_faktura", Pattern: "faktura", Intent: domain.IntentBilling, Weight: 0.6},
		{Name: "kw_regning", Pattern: "regning", Intent: domain.IntentBilling, Weight: 0.5},
		{Name: "kw_betaling", Pattern: "betaling", Intent: domain.IntentBilling, Weight: 0.5},
		{Name: "kw_belastet", Pattern: "belastet", Intent: domain.IntentBilling, Weight: 0.5},
		{Name: "kw_refusjon", Pattern: "refusjon", Intent: domain.IntentBilling, Weight: 0.5},
		{Name: "kw_invoice", Pattern: "invoice", Intent: domain.IntentBilling, Weight: 0.6},
		{Name: "kw_payment", Pattern: "payment", Intent: domain.IntentBilling, Weight: 0.5},
		{Name: "kw_charged", Pattern: "charged", Intent: domain.IntentBilling, Weight: 0.5},
		{Name: "kw_refund", Pattern: "refund", Intent: domain.IntentBilling, Weight: 0.5},

		// --- Access ---
		{Name: "kw_logge_inn", Pattern: "logge inn", Intent: domain.IntentAccess, Weight: 0.5},
		{Name: "kw_logget_inn", Pattern: "logget inn", Intent: domain.IntentAccess, Weight: 0.5},
		{Name: "kw_innlogging", Pattern: "innlogging", Intent: domain.IntentAccess, Weight: 0.6},
		{Name: "kw_passord", Pattern: "passord", Intent: domain.IntentAccess, Weight: 0.5},
		{Name: "kw_login", Pattern: "login", Intent: domain.IntentAccess, Weight: 0.6},
		{Name: "kw_log_in", Pattern: "log in", Intent: domain.IntentAccess, Weight: 0.5},
		{Name: "kw_password", Pattern: "password", Intent: domain.IntentAccess, Weight: 0.5},
		{Name: "kw_logga_in", Pattern: "logga in", Intent: domain.IntentAccess, Weight: 0.5},

		// --- Guards: locked-out customers are access cases ---
		{Name: "guard_faar_ikke_logget_inn", Pattern: "får ikke logget inn", Intent: domain.IntentAccess, Weight: 0.7, Guard: true, Vetoes: cancellationVetoes},
		{Name: "guard_kan_ikke_logge_inn", Pattern: "kan ikke logge inn", Intent: domain.IntentAccess, Weight: 0.7, Guard: true, Vetoes: cancellationVetoes},
		{Name: "guard_glemt_passord", Pattern: "glemt passord", Intent: domain.IntentAccess, Weight: 0.7, Guard: true, Vetoes: cancellationVetoes},
		{Name: "guard_cannot_log_in", Pattern: "cannot log in", Intent: domain.IntentAccess, Weight: 0.7, Guard: true, Vetoes: cancellationVetoes},
		{Name: "guard_cant_log_in", Pattern: "can't log in", Intent: domain.IntentAccess, Weight: 0.7, Guard: true, Vetoes: cancellationVetoes},
		{Name: "guard_forgot_password", Pattern: "forgot password", Intent: domain.IntentAccess, Weight: 0.7, Guard: true, Vetoes: cancellationVetoes},
		{Name: "guard_kan_inte_logga_in", Pattern: "kan inte logga in", Intent: domain.IntentAccess, Weight: 0.7, Guard: true, Vetoes: cancellationVetoes},
	}
}
