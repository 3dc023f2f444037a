// Package draft turns classification results into reply drafts for
// human review.
package draft

import (
	"strings"

	"triage_server/core/domain"
)

// template is a reply text plus how well it fits when dispatched.
// Applicability caps the draft confidence: a generic holding reply
// never looks more certain than the classification behind it.
type template struct {
	Body          string
	Applicability float64
}

// render substitutes {{move_date}} style placeholders from the
// extracted fields and drops placeholder sentences with no value.
func (t template) render(fields map[string]string) string {
	body := t.Body
	for key, value := range fields {
		body = strings.ReplaceAll(body, "{{"+key+"}}", value)
	}
	// Unfilled placeholders take their whole line with them
	if strings.Contains(body, "{{") {
		lines := strings.Split(body, "\n")
		kept := lines[:0]
		for _, line := range lines {
			if !strings.Contains(line, "{{") {
				kept = append(kept, line)
			}
		}
		body = strings.Join(kept, "\n")
	}
	return body
}

// Intent templates. Keyed by language inside each lookup function so
// the dispatch switch in the generator stays closed over intents.

func relocationTemplate(lang domain.Language) template {
	switch lang {
	case domain.LanguageNorwegian:
		return template{Applicability: 1.0, Body: "Hei,\n\nTakk for beskjed om flyttingen. Vi har registrert oppsigelsen av abonnementet ditt.\nOppsigelsen gjelder fra flyttedatoen {{move_date}}.\nDu vil motta en sluttavregning etter siste fakturaperiode.\n\nVennlig hilsen\nKundeservice"}
	case domain.LanguageSwedish:
		return template{Applicability: 1.0, Body: "Hej,\n\nTack för att du meddelade oss om flytten. Vi har registrerat uppsägningen av ditt abonnemang.\nUppsägningen gäller från flyttdatumet {{move_date}}.\nDu får en slutavräkning efter den sista fakturaperioden.\n\nVänliga hälsningar\nKundservice"}
	case domain.LanguageEnglish:
		return template{Applicability: 1.0, Body: "Hello,\n\nThank you for letting us know about your move. We have registered the cancellation of your subscription.\nThe cancellation takes effect from your moving date {{move_date}}.\nYou will receive a final statement after the last billing period.\n\nKind regards\nCustomer Service"}
	default:
		return relocationTemplate(domain.LanguageEnglish)
	}
}

func cancellationTemplate(lang domain.Language) template {
	switch lang {
	case domain.LanguageNorwegian:
		return template{Applicability: 1.0, Body: "Hei,\n\nVi har mottatt oppsigelsen din og registrert den på kundeforholdet ditt.\nOppsigelsestiden følger vilkårene i avtalen, og du mottar en bekreftelse så snart oppsigelsen er behandlet.\n\nVennlig hilsen\nKundeservice"}
	case domain.LanguageSwedish:
		return template{Applicability: 1.0, Body: "Hej,\n\nVi har tagit emot din uppsägning och registrerat den på ditt kundkonto.\nUppsägningstiden följer villkoren i avtalet, och du får en bekräftelse så snart uppsägningen är behandlad.\n\nVänliga hälsningar\nKundservice"}
	case domain.LanguageEnglish:
		return template{Applicability: 1.0, Body: "Hello,\n\nWe have received your cancellation request and registered it on your account.\nThe notice period follows the terms of your agreement, and you will receive a confirmation once the cancellation has been processed.\n\nKind regards\nCustomer Service"}
	default:
		return cancellationTemplate(domain.LanguageEnglish)
	}
}

func billingTemplate(lang domain.Language) template {
	switch lang {
	case domain.LanguageNorwegian:
		return template{Applicability: 1.0, Body: "Hei,\n\nTakk for henvendelsen om fakturaen din. Vi går gjennom betalingshistorikken på kundeforholdet ditt og kommer tilbake med en avklaring.\nDersom det er trukket for mye, blir beløpet refundert til samme betalingsmiddel.\n\nVennlig hilsen\nKundeservice"}
	case domain.LanguageSwedish:
		return template{Applicability: 1.0, Body: "Hej,\n\nTack för din fråga om fakturan. Vi går igenom betalningshistoriken på ditt kundkonto och återkommer med ett besked.\nOm för mycket har dragits återbetalas beloppet till samma betalningsmedel.\n\nVänliga hälsningar\nKundservice"}
	case domain.LanguageEnglish:
		return template{Applicability: 1.0, Body: "Hello,\n\nThank you for your question about your invoice. We are reviewing the payment history on your account and will get back to you with a clarification.\nIf you have been overcharged, the amount will be refunded to the same payment method.\n\nKind regards\nCustomer Service"}
	default:
		return billingTemplate(domain.LanguageEnglish)
	}
}

func accessTemplate(lang domain.Language) template {
	switch lang {
	case domain.LanguageNorwegian:
		return template{Applicability: 1.0, Body: "Hei,\n\nVi ser at du har problemer med å logge inn. Vi har sendt deg en lenke for å tilbakestille passordet til e-postadressen som er registrert hos oss.\nFår du fortsatt ikke logget inn, hjelper vi deg gjerne videre.\n\nVennlig hilsen\nKundeservice"}
	case domain.LanguageSwedish:
		return template{Applicability: 1.0, Body: "Hej,\n\nVi ser att du har problem med att logga in. Vi har skickat en länk för att återställa lösenordet till den e-postadress som är registrerad hos oss.\nOm du fortfarande inte kan logga in hjälper vi dig gärna vidare.\n\nVänliga hälsningar\nKundservice"}
	case domain.LanguageEnglish:
		return template{Applicability: 1.0, Body: "Hello,\n\nWe can see you are having trouble signing in. We have sent a password reset link to the email address registered with us.\nIf you still cannot sign in, we are happy to help you further.\n\nKind regards\nCustomer Service"}
	default:
		return accessTemplate(domain.LanguageEnglish)
	}
}

// genericTemplate is the holding reply used when no intent template
// fits. Low applicability keeps these drafts flagged as uncertain.
func genericTemplate(lang domain.Language) template {
	switch lang {
	case domain.LanguageNorwegian:
		return template{Applicability: 0.5, Body: "Hei,\n\nTakk for henvendelsen din. Den er mottatt og videresendt til riktig avdeling, som kommer tilbake til deg så snart som mulig.\n\nVennlig hilsen\nKundeservice"}
	case domain.LanguageSwedish:
		return template{Applicability: 0.5, Body: "Hej,\n\nTack för ditt meddelande. Det har tagits emot och skickats vidare till rätt avdelning, som återkommer till dig så snart som möjligt.\n\nVänliga hälsningar\nKundservice"}
	case domain.LanguageEnglish:
		return template{Applicability: 0.5, Body: "Hello,\n\nThank you for contacting us. Your request has been received and forwarded to the right team, who will get back to you as soon as possible.\n\nKind regards\nCustomer Service"}
	default:
		return genericTemplate(domain.LanguageEnglish)
	}
}
