// Package category unifies freeform expense category strings into a closed
// canonical set, so budget math and notification metadata never split one
// real-world category across spelling variants.
package category

import "strings"

// Canonical spending categories.
const (
	Food          = "food"
	Transport     = "transport"
	Housing       = "housing"
	Utilities     = "utilities"
	Entertainment = "entertainment"
	Shopping      = "shopping"
	Health        = "health"
	Education     = "education"
	Travel        = "travel"
	Other         = "other"
)

// synonyms maps cleaned freeform input to a canonical category. Keys must
// already be in cleaned form (lowercase, single-spaced).
var synonyms = map[string]string{
	"food":           Food,
	"groceries":      Food,
	"grocery":        Food,
	"dining":         Food,
	"dining out":     Food,
	"restaurants":    Food,
	"restaurant":     Food,
	"eating out":     Food,
	"transport":      Transport,
	"transportation": Transport,
	"fuel":           Transport,
	"gas":            Transport,
	"petrol":         Transport,
	"commute":        Transport,
	"taxi":           Transport,
	"uber":           Transport,
	"housing":        Housing,
	"rent":           Housing,
	"mortgage":       Housing,
	"utilities":      Utilities,
	"utility":        Utilities,
	"electricity":    Utilities,
	"water":          Utilities,
	"internet":       Utilities,
	"phone":          Utilities,
	"entertainment":  Entertainment,
	"fun":            Entertainment,
	"movies":         Entertainment,
	"streaming":      Entertainment,
	"subscriptions":  Entertainment,
	"shopping":       Shopping,
	"clothes":        Shopping,
	"clothing":       Shopping,
	"health":         Health,
	"healthcare":     Health,
	"medical":        Health,
	"pharmacy":       Health,
	"fitness":        Health,
	"gym":            Health,
	"education":      Education,
	"tuition":        Education,
	"books":          Education,
	"courses":        Education,
	"travel":         Travel,
	"vacation":       Travel,
	"holiday":        Travel,
	"flights":        Travel,
	"other":          Other,
	"misc":           Other,
	"miscellaneous":  Other,
}

// Normalize maps a freeform category string to its canonical form. Unknown
// input falls through to Other; empty input stays empty so callers can tell
// "uncategorized" apart from "categorized as other".
func Normalize(raw string) string {
	cleaned := clean(raw)
	if cleaned == "" {
		return ""
	}
	if canon, ok := synonyms[cleaned]; ok {
		return canon
	}
	// Tolerate trivial plurals ("snacks" → "snack" won't match, but
	// "restaurants" style entries are covered by the table).
	if canon, ok := synonyms[strings.TrimSuffix(cleaned, "s")]; ok {
		return canon
	}
	return Other
}

// clean lowercases, trims, collapses runs of whitespace, and strips
// characters that freeform UIs tend to smuggle in (emoji, punctuation).
func clean(raw string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(strings.TrimSpace(raw)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		case r == ' ' || r == '\t' || r == '-' || r == '_' || r == '&' || r == '/':
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
		// Everything else (emoji, punctuation) is dropped.
	}
	return strings.TrimRight(b.String(), " ")
}
