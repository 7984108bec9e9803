// Package codec converts notes to and from their serialized shapes (JSON, CSV, YAML).
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/aretw0/tally/pkg/core"
)

// Record is a decoded note. HasFacts is false for legacy records that carry
// none of the fact fields, whose facts must be derived from the content.
type Record struct {
	Note     core.Note
	HasFacts bool
}

// wireNote is the serialized note shape shared by storage, import and export.
type wireNote struct {
	ID               int             `json:"id" yaml:"id"`
	Content          string          `json:"content" yaml:"content"`
	Tags             []string        `json:"tags" yaml:"tags"`
	Created          string          `json:"created" yaml:"created"`
	CreatedAt        string          `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	Deleted          bool            `json:"deleted" yaml:"deleted"`
	Qty              *int            `json:"qty" yaml:"qty"`
	Amount           *float64        `json:"amount" yaml:"amount"`
	CurrencyCode     *string         `json:"currencyCode" yaml:"currencyCode"`
	DueDateISO       *string         `json:"dueDateISO" yaml:"dueDateISO"`
	DueDateFormatted *string         `json:"dueDateFormatted" yaml:"dueDateFormatted"`
	Recurrence       *wireRecurrence `json:"recurrence" yaml:"recurrence"`
	Origin           int             `json:"origin,omitempty" yaml:"origin,omitempty"`
}

type wireRecurrence struct {
	Rule     string `json:"rule" yaml:"rule"`
	Interval int    `json:"interval" yaml:"interval"`
}

// factKeys are the serialized keys owned by the fact extractor.
var factKeys = []string{"qty", "amount", "currencyCode", "dueDateISO", "dueDateFormatted", "recurrence"}

func toWire(n core.Note) wireNote {
	w := wireNote{
		ID:      n.ID,
		Content: n.Content,
		Tags:    n.Tags,
		Created: n.CreatedAt.UTC().Format(time.RFC3339Nano),
		Deleted: n.Deleted,
		Qty:     n.Quantity,
		Amount:  n.Amount,
		Origin:  n.Origin,
	}
	if w.Tags == nil {
		w.Tags = []string{}
	}
	if n.CurrencyCode != "" {
		code := n.CurrencyCode
		w.CurrencyCode = &code
	}
	if n.DueDate != nil {
		iso, formatted := n.DueDate.ISO(), n.DueDate.Format()
		w.DueDateISO = &iso
		w.DueDateFormatted = &formatted
	}
	if n.Recurrence != nil {
		w.Recurrence = &wireRecurrence{Rule: string(n.Recurrence.Unit), Interval: n.Recurrence.Interval}
	}
	return w
}

func fromWire(w wireNote) (core.Note, error) {
	n := core.Note{
		ID:      w.ID,
		Content: w.Content,
		Tags:    w.Tags,
		Deleted: w.Deleted,
		Origin:  w.Origin,
	}
	n.Quantity = w.Qty
	n.Amount = w.Amount
	if w.CurrencyCode != nil {
		n.CurrencyCode = *w.CurrencyCode
	}

	created := w.Created
	if created == "" {
		created = w.CreatedAt
	}
	if created != "" {
		t, err := time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return core.Note{}, fmt.Errorf("note %d: invalid created timestamp %q: %w", w.ID, created, err)
		}
		n.CreatedAt = t
	}

	switch {
	case w.DueDateISO != nil && *w.DueDateISO != "":
		d, err := core.ParseISO(*w.DueDateISO)
		if err != nil {
			return core.Note{}, fmt.Errorf("note %d: %w", w.ID, err)
		}
		n.DueDate = &d
	case w.DueDateFormatted != nil && *w.DueDateFormatted != "":
		d, err := core.ParseFormatted(*w.DueDateFormatted)
		if err != nil {
			return core.Note{}, fmt.Errorf("note %d: %w", w.ID, err)
		}
		n.DueDate = &d
	}

	if w.Recurrence != nil {
		unit := core.Unit(w.Recurrence.Rule)
		if !unit.Valid() {
			return core.Note{}, fmt.Errorf("note %d: unknown recurrence rule %q", w.ID, w.Recurrence.Rule)
		}
		interval := w.Recurrence.Interval
		if interval < 1 {
			interval = 1
		}
		n.Recurrence = &core.RecurrenceRule{Unit: unit, Interval: interval}
	}
	return n, nil
}

// MarshalNotes encodes notes as an indented JSON array.
func MarshalNotes(notes []core.Note) ([]byte, error) {
	wires := make([]wireNote, len(notes))
	for i, n := range notes {
		wires[i] = toWire(n)
	}
	return json.MarshalIndent(wires, "", "  ")
}

// UnmarshalNotes decodes a JSON array of notes.
func UnmarshalNotes(data []byte) ([]core.Note, error) {
	records, err := DecodeJSON(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	notes := make([]core.Note, len(records))
	for i, r := range records {
		notes[i] = r.Note
	}
	return notes, nil
}

// DecodeJSON reads a JSON array of notes, reporting for each whether it
// carried fact fields.
func DecodeJSON(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var raws []map[string]json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("invalid json: expected an array of notes: %w", err)
	}

	records := make([]Record, 0, len(raws))
	for i, raw := range raws {
		buf, err := json.Marshal(raw)
		if err != nil {
			return nil, err
		}
		var w wireNote
		if err := json.Unmarshal(buf, &w); err != nil {
			return nil, fmt.Errorf("invalid note at index %d: %w", i, err)
		}
		n, err := fromWire(w)
		if err != nil {
			return nil, err
		}
		hasFacts := false
		for _, k := range factKeys {
			if _, ok := raw[k]; ok {
				hasFacts = true
				break
			}
		}
		records = append(records, Record{Note: n, HasFacts: hasFacts})
	}
	return records, nil
}

// EncodeJSON writes notes as an indented JSON array.
func EncodeJSON(w io.Writer, notes []core.Note) error {
	data, err := MarshalNotes(notes)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
