// Package facts derives the structured Fact of a note from its text.
//
// Extraction runs an ordered list of independent rules, one per field:
//
//   - Quantity:   Q5
//   - Amount:     USD=(500+200)/12, =12*3, EUR20.50
//   - Due date:   25/12, 25/12/24, 25/12/2024
//   - Recurrence: every 2 weeks, cada mes, jeden Tag
//
// The only coupling between rules is that a found amount defaults the
// quantity to 1. Extraction never fails; fields that do not match stay absent.
package facts

import (
	"time"

	"github.com/aretw0/tally/pkg/core"
)

// Extractor derives facts relative to a clock, which resolves dates written without a year.
type Extractor struct {
	clock core.Clock
	loc   *time.Location
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithClock sets the clock used to resolve dates without a year.
func WithClock(c core.Clock) Option {
	return func(e *Extractor) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithLocation sets the location in which "today" is computed.
func WithLocation(loc *time.Location) Option {
	return func(e *Extractor) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// NewExtractor creates an Extractor using the system clock and local time by default.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{clock: core.SystemClock, loc: time.Local}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract derives the fact record of content.
func (e *Extractor) Extract(content string) core.Fact {
	return ExtractAt(content, e.clock.Now().In(e.loc))
}

// ExtractAt derives the fact record of content as seen at now.
func ExtractAt(content string, now time.Time) core.Fact {
	var f core.Fact

	if q, ok := quantityRule(content); ok {
		f.Quantity = &q
	}

	for _, rule := range amountRules {
		if m, ok := rule(content); ok {
			amount := m.amount
			f.Amount = &amount
			f.CurrencyCode = m.code
			break
		}
	}
	if f.Amount != nil && f.Quantity == nil {
		one := 1
		f.Quantity = &one
	}

	if d, ok := dueDateRule(content, core.DateOf(now)); ok {
		f.DueDate = &d
	}

	if r, ok := recurrenceRule(content); ok {
		f.Recurrence = &r
	}

	return f
}

// Rederive formats d as DD/MM/YYYY and feeds it back through the due-date
// rule. It returns nil if the date is outside the accepted range.
func Rederive(d core.Date) *core.Date {
	got, ok := dueDateRule(d.Format(), d)
	if !ok {
		return nil
	}
	return &got
}
