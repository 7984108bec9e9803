package facts

import (
	"strings"
	"unicode"

	"github.com/aretw0/tally/pkg/core"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// everyWords are the words that open a recurrence expression, already folded.
// English plus Spanish, French, German and Italian.
var everyWords = []string{
	"every",
	"cada",
	"chaque", "tous les", "toutes les",
	"jeden", "jede", "jedes", "alle",
	"ogni",
}

// unitWords maps folded unit spellings (singular and plural) to a unit.
var unitWords = map[string]core.Unit{
	"day": core.Daily, "days": core.Daily,
	"week": core.Weekly, "weeks": core.Weekly,
	"month": core.Monthly, "months": core.Monthly,
	"year": core.Yearly, "years": core.Yearly,

	"dia": core.Daily, "dias": core.Daily,
	"semana": core.Weekly, "semanas": core.Weekly,
	"mes": core.Monthly, "meses": core.Monthly,
	"ano": core.Yearly, "anos": core.Yearly,

	"jour": core.Daily, "jours": core.Daily,
	"semaine": core.Weekly, "semaines": core.Weekly,
	"mois": core.Monthly,
	"an":   core.Yearly, "ans": core.Yearly, "annee": core.Yearly, "annees": core.Yearly,

	"tag": core.Daily, "tage": core.Daily,
	"woche": core.Weekly, "wochen": core.Weekly,
	"monat": core.Monthly, "monate": core.Monthly,
	"jahr": core.Yearly, "jahre": core.Yearly,

	"giorno": core.Daily, "giorni": core.Daily,
	"settimana": core.Weekly, "settimane": core.Weekly,
	"mese": core.Monthly, "mesi": core.Monthly,
	"anno": core.Yearly, "anni": core.Yearly,
}

var folder = cases.Fold()

// fold lower-cases s with Unicode case folding and strips diacritics,
// so "Día", "DIA" and "dia" compare equal.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return folder.String(stripped)
}

// alternation builds a regexp alternation, longest words first so that
// "weeks" is preferred over "week".
func alternation(words []string) string {
	sorted := append([]string(nil), words...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && len(sorted[j]) > len(sorted[j-1]); j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	parts := make([]string, len(sorted))
	for i, w := range sorted {
		parts[i] = strings.ReplaceAll(w, " ", `\s+`)
	}
	return strings.Join(parts, "|")
}

func unitKeys() []string {
	keys := make([]string, 0, len(unitWords))
	for k := range unitWords {
		keys = append(keys, k)
	}
	return keys
}
