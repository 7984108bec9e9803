// Package core holds the domain entities of tally and the ports the adapters implement.
package core

import (
	"fmt"
	"time"
)

// Unit is the step of a recurrence rule.
type Unit string

const (
	Daily   Unit = "daily"
	Weekly  Unit = "weekly"
	Monthly Unit = "monthly"
	Yearly  Unit = "yearly"
)

// Valid reports whether u is one of the known units.
func (u Unit) Valid() bool {
	switch u {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

// RecurrenceRule describes how often a due date repeats.
type RecurrenceRule struct {
	Unit     Unit
	Interval int
}

func (r RecurrenceRule) String() string {
	if r.Interval == 1 {
		return string(r.Unit)
	}
	return fmt.Sprintf("every %d %s", r.Interval, r.Unit)
}

// Fact is the structured record derived from the text of a note.
// Every field is either present or absent; a Fact is never partially valid.
type Fact struct {
	Quantity     *int
	Amount       *float64
	CurrencyCode string // empty when absent
	DueDate      *Date
	Recurrence   *RecurrenceRule
}

// IsZero reports whether no field of the fact is present.
func (f Fact) IsZero() bool {
	return f.Quantity == nil && f.Amount == nil && f.CurrencyCode == "" &&
		f.DueDate == nil && f.Recurrence == nil
}

// Note is the central entity of the domain.
// Content is the source of truth; the embedded Fact is derived from it.
type Note struct {
	ID        int
	Content   string
	Tags      []string
	CreatedAt time.Time
	Deleted   bool

	// Origin is the id of the first note of a recurring series.
	// Zero means the note was not produced by projection.
	Origin int

	Fact
}

// Series returns the id that identifies the recurring series of the note.
func (n Note) Series() int {
	if n.Origin != 0 {
		return n.Origin
	}
	return n.ID
}

// HasTag reports whether the note carries the given tag.
func (n Note) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the note.
func (n Note) Clone() Note {
	c := n
	if n.Tags != nil {
		c.Tags = append([]string(nil), n.Tags...)
	}
	if n.Quantity != nil {
		q := *n.Quantity
		c.Quantity = &q
	}
	if n.Amount != nil {
		a := *n.Amount
		c.Amount = &a
	}
	if n.DueDate != nil {
		d := *n.DueDate
		c.DueDate = &d
	}
	if n.Recurrence != nil {
		r := *n.Recurrence
		c.Recurrence = &r
	}
	return c
}

// EventType represents the type of change in a store.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change of a key in a store.
type Event struct {
	Type      EventType
	Key       string
	Timestamp int64 // Unix timestamp
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Type, e.Key)
}
