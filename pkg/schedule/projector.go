package schedule

import (
	"time"

	"github.com/aretw0/tally/pkg/core"
	"github.com/aretw0/tally/pkg/facts"
)

// eligible reports whether note is a lapsed, live member of a recurring series.
func eligible(note core.Note, today core.Date) bool {
	return !note.Deleted &&
		note.Recurrence != nil &&
		note.DueDate != nil &&
		note.DueDate.Before(today)
}

// Project builds the next generation of a recurring note whose due date is
// before today. The new note copies content, tags, recurrence, quantity,
// amount and currency, takes id and now as its identity, and carries the due
// date re-derived from the next occurrence. The source note is not modified.
// ok is false when the note is not eligible or the next occurrence falls
// outside the accepted date range.
func Project(note core.Note, today core.Date, id int, now time.Time) (projected core.Note, ok bool) {
	if !eligible(note, today) {
		return core.Note{}, false
	}
	next := NextOccurrence(*note.DueDate, *note.Recurrence, today)
	return generation(note, next, id, now)
}

func generation(note core.Note, next core.Date, id int, now time.Time) (core.Note, bool) {
	due := facts.Rederive(next)
	if due == nil {
		return core.Note{}, false
	}
	src := note.Clone()
	return core.Note{
		ID:        id,
		Content:   src.Content,
		Tags:      src.Tags,
		CreatedAt: now,
		Origin:    note.Series(),
		Fact: core.Fact{
			Quantity:     src.Quantity,
			Amount:       src.Amount,
			CurrencyCode: src.CurrencyCode,
			DueDate:      due,
			Recurrence:   src.Recurrence,
		},
	}, true
}

// ProjectAll runs one projection pass over notes and returns the new notes,
// numbered from nextID. A series gets at most one note per due date: an
// occurrence already held by any note of the series, deleted or not, is not
// projected again. Running the pass twice yields nothing the second time.
func ProjectAll(notes []core.Note, today core.Date, nextID int, now time.Time) []core.Note {
	type occurrence struct {
		series int
		due    core.Date
	}
	held := make(map[occurrence]bool, len(notes))
	for _, n := range notes {
		if n.DueDate != nil {
			held[occurrence{n.Series(), *n.DueDate}] = true
		}
	}

	var out []core.Note
	for _, n := range notes {
		if !eligible(n, today) {
			continue
		}
		next := NextOccurrence(*n.DueDate, *n.Recurrence, today)
		key := occurrence{n.Series(), next}
		if held[key] {
			continue
		}
		p, ok := generation(n, next, nextID, now)
		if !ok {
			continue
		}
		held[key] = true
		out = append(out, p)
		nextID++
	}
	return out
}
