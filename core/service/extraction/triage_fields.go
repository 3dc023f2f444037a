package extraction

import (
	"fmt"
	"regexp"
	"strings"

	"triage_server/core/domain"
)

var (
	dottedDatePattern = regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})\.(\d{4})\b`)
	isoDatePattern    = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)

	// "1. januar", "15 mars", "1st of January" style dates, kept as
	// matched since they carry no year.
	writtenDatePattern = regexp.MustCompile(`(?i)\b(\d{1,2})\.?\s*(?:of\s+)?(januar|februar|mars|april|mai|juni|juli|august|september|oktober|november|desember|january|february|march|may|june|july|october|december|januari|februari|maj|augusti|december)\b`)

	customerRefPattern = regexp.MustCompile(`(?i)\b(?:kundenummer|kundenr\.?|customer\s+(?:number|id)|kundnummer)\s*:?\s*([A-Z]?\d{4,10})\b`)
)

// ExtractFields pulls structured values out of masked text. Move
// dates feed the relocation templates, customer references let the
// reviewer look the account up.
func ExtractFields(text string) map[string]string {
	fields := map[string]string{}

	if m := isoDatePattern.FindStringSubmatch(text); m != nil {
		fields[domain.FieldMoveDate] = fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3])
	} else if m := dottedDatePattern.FindStringSubmatch(text); m != nil {
		// dd.mm.yyyy normalized to ISO
		day, month := m[1], m[2]
		if len(day) == 1 {
			day = "0" + day
		}
		if len(month) == 1 {
			month = "0" + month
		}
		fields[domain.FieldMoveDate] = fmt.Sprintf("%s-%s-%s", m[3], month, day)
	} else if m := writtenDatePattern.FindStringSubmatch(text); m != nil {
		fields[domain.FieldMoveDate] = strings.TrimSpace(m[0])
	}

	if m := customerRefPattern.FindStringSubmatch(text); m != nil {
		fields[domain.FieldCustomerRef] = m[1]
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}
