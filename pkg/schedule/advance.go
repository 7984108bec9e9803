// Package schedule turns due dates and recurrence rules into new notes and
// reminder notifications.
//
// The Projector regenerates recurring notes whose due date has lapsed. The
// Scheduler notifies about notes due today at most once per note per day,
// using a ledger kept in the store, and handles the responses to a
// notification. The Daemon runs the Scheduler on a timer.
package schedule

import "github.com/aretw0/tally/pkg/core"

// Advance moves d forward by one step of r. Month and year steps overflow the
// way time.Date normalises dates, so January 31 plus one month is March 2 or 3.
func Advance(d core.Date, r core.RecurrenceRule) core.Date {
	n := r.Interval
	if n < 1 {
		n = 1
	}
	switch r.Unit {
	case core.Daily:
		return d.AddDays(n)
	case core.Weekly:
		return d.AddDays(7 * n)
	case core.Monthly:
		return d.AddMonths(n)
	case core.Yearly:
		return d.AddYears(n)
	}
	return d
}

// NextOccurrence advances d by r until it is on or after today.
// A d already on or after today is returned unchanged.
func NextOccurrence(d core.Date, r core.RecurrenceRule, today core.Date) core.Date {
	if !r.Unit.Valid() {
		return d
	}
	for d.Before(today) {
		d = Advance(d, r)
	}
	return d
}
