package facts

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/tally/pkg/core"
)

const (
	minYear = 2000
	maxYear = 2100
)

var (
	quantityRe    = regexp.MustCompile(`(?i)\bQ(\d+)\b`)
	calculationRe = regexp.MustCompile(`(?:\b([A-Za-z]{3})\s*)?=\s*([0-9.+\-*/()\s]*[0-9][0-9.+\-*/()\s]*)`)
	staticRe      = regexp.MustCompile(`\b([A-Za-z]{3})(\d+(?:\.\d{1,2})?)\b`)
	dateRe        = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{4}|\d{2}))?\b`)
	recurrenceRe  = regexp.MustCompile(`(?:^|[^\p{L}\p{N}])(` + alternation(everyWords) + `)\s+(?:(\d+)\s+)?(` + alternation(unitKeys()) + `)(?:$|[^\p{L}\p{N}])`)
)

// amountMatch is the result of an amount rule.
type amountMatch struct {
	amount float64
	code   string
}

// amountRules are tried in order; the first match wins.
var amountRules = []func(string) (amountMatch, bool){
	calculationRule,
	staticAmountRule,
}

// quantityRule matches Q<digits>.
func quantityRule(s string) (int, bool) {
	m := quantityRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	q, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return q, true
}

// calculationRule matches [CCC]=<expression> and evaluates the expression.
func calculationRule(s string) (amountMatch, bool) {
	for _, m := range calculationRe.FindAllStringSubmatch(s, -1) {
		v, err := Evaluate(m[2])
		if err != nil {
			continue
		}
		return amountMatch{amount: v, code: strings.ToUpper(m[1])}, true
	}
	return amountMatch{}, false
}

// staticAmountRule matches CCC<number> with at most two decimals.
func staticAmountRule(s string) (amountMatch, bool) {
	for _, idx := range staticRe.FindAllStringSubmatchIndex(s, -1) {
		code := s[idx[2]:idx[3]]
		if strings.EqualFold(code, "due") {
			continue
		}
		// "USD20.505" must not match as USD20.50.
		if rest := s[idx[1]:]; strings.HasPrefix(rest, ".") && len(rest) > 1 && isDigit(rest[1]) {
			continue
		}
		v, err := strconv.ParseFloat(s[idx[4]:idx[5]], 64)
		if err != nil {
			continue
		}
		return amountMatch{amount: v, code: strings.ToUpper(code)}, true
	}
	return amountMatch{}, false
}

// dueDateRule matches D/M, D/M/YY and D/M/YYYY. A date without a year resolves
// to the current year, or the next one when it has already passed.
func dueDateRule(s string, today core.Date) (core.Date, bool) {
	for _, idx := range dateRe.FindAllStringSubmatchIndex(s, -1) {
		// "1/2/345" is not a date.
		if rest := s[idx[1]:]; strings.HasPrefix(rest, "/") && len(rest) > 1 && isDigit(rest[1]) {
			continue
		}
		return resolveDate(s, idx, today)
	}
	return core.Date{}, false
}

// resolveDate validates the first date-shaped token. An invalid date is
// discarded as a whole, never clamped.
func resolveDate(s string, idx []int, today core.Date) (core.Date, bool) {
	day, err1 := strconv.Atoi(s[idx[2]:idx[3]])
	month, err2 := strconv.Atoi(s[idx[4]:idx[5]])
	if err1 != nil || err2 != nil {
		return core.Date{}, false
	}
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return core.Date{}, false
	}

	var year int
	if idx[6] >= 0 {
		raw := s[idx[6]:idx[7]]
		y, err := strconv.Atoi(raw)
		if err != nil {
			return core.Date{}, false
		}
		if len(raw) == 2 {
			y += 2000
		}
		year = y
	} else {
		year = today.Year
		if month < int(today.Month) || (month == int(today.Month) && day < today.Day) {
			year++
		}
	}
	if year < minYear || year > maxYear {
		return core.Date{}, false
	}

	return core.NewDate(year, time.Month(month), day)
}

// recurrenceRule matches "every [N] unit[s]" and its localized forms.
func recurrenceRule(s string) (core.RecurrenceRule, bool) {
	m := recurrenceRe.FindStringSubmatch(fold(s))
	if m == nil {
		return core.RecurrenceRule{}, false
	}
	unit, ok := unitWords[m[3]]
	if !ok {
		return core.RecurrenceRule{}, false
	}
	interval := 1
	if m[2] != "" {
		n, err := strconv.Atoi(m[2])
		if err != nil || n < 1 {
			return core.RecurrenceRule{}, false
		}
		interval = n
	}
	return core.RecurrenceRule{Unit: unit, Interval: interval}, true
}
