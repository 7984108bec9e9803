package notes

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/tally/pkg/codec"
	"github.com/aretw0/tally/pkg/core"
)

// Format is an import/export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts a format name or a file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(s), ".") {
	case "json", "":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported format %q", s)
}

// ImportMode decides what happens to the existing collection on import.
type ImportMode string

const (
	// ImportMerge keeps existing notes; imported notes whose id is taken are
	// given fresh ids.
	ImportMerge ImportMode = "merge"
	// ImportReplace discards the existing collection.
	ImportReplace ImportMode = "replace"
)

// ImportReport summarises an import.
type ImportReport struct {
	Imported   int
	Reassigned int
	Derived    int
}

// Import reads notes from r and adds them to the collection. Records that
// carry no fact fields get their facts derived from their content.
func (s *Service) Import(ctx context.Context, r io.Reader, format Format, mode ImportMode) (ImportReport, error) {
	records, err := decode(r, format)
	if err != nil {
		return ImportReport{}, err
	}

	var report ImportReport
	err = s.Update(ctx, func(all []core.Note) ([]core.Note, error) {
		report = ImportReport{}
		incoming := make([]core.Note, 0, len(records))
		for _, rec := range records {
			n := rec.Note
			if strings.TrimSpace(n.Content) == "" {
				return nil, fmt.Errorf("%w: imported note %d", core.ErrEmptyContent, n.ID)
			}
			if !rec.HasFacts {
				n.Fact = s.extractor.Extract(n.Content)
				report.Derived++
			}
			if n.CreatedAt.IsZero() {
				n.CreatedAt = s.clock.Now()
			}
			if n.Tags == nil {
				n.Tags = []string{}
			}
			incoming = append(incoming, n)
		}

		switch mode {
		case ImportReplace:
			seen := make(map[int]bool, len(incoming))
			for _, n := range incoming {
				if n.ID < 1 {
					return nil, fmt.Errorf("%w: %d", core.ErrInvalidID, n.ID)
				}
				if seen[n.ID] {
					return nil, fmt.Errorf("%w: %d", core.ErrDuplicateID, n.ID)
				}
				seen[n.ID] = true
			}
			report.Imported = len(incoming)
			return incoming, nil

		case ImportMerge, "":
			existing := make(map[int]bool, len(all))
			taken := make(map[int]bool, len(all)+len(incoming))
			for _, n := range all {
				existing[n.ID] = true
				taken[n.ID] = true
			}
			next := NextID(all)
			for _, n := range incoming {
				if n.ID > next-1 && !taken[n.ID] {
					next = n.ID + 1
				}
			}

			// Series links of imported notes follow their renumbered heads.
			// A link to a head missing from the import must not join an
			// existing series, so it moves to an id nobody holds.
			renamed := make(map[int]int, len(incoming))
			for i, n := range incoming {
				old := n.ID
				if n.ID < 1 || taken[n.ID] {
					n.ID = next
					next++
					report.Reassigned++
				}
				if _, ok := renamed[old]; !ok && old > 0 {
					renamed[old] = n.ID
				}
				taken[n.ID] = true
				incoming[i] = n
			}
			detached := make(map[int]int)
			for i := range incoming {
				origin := incoming[i].Origin
				if origin == 0 {
					continue
				}
				if to, ok := renamed[origin]; ok {
					incoming[i].Origin = to
					continue
				}
				if !existing[origin] {
					continue
				}
				to, ok := detached[origin]
				if !ok {
					to = next
					next++
					detached[origin] = to
				}
				incoming[i].Origin = to
			}

			report.Imported = len(incoming)
			return append(all, incoming...), nil
		}
		return nil, fmt.Errorf("unknown import mode %q", mode)
	})
	if err != nil {
		return ImportReport{}, err
	}
	s.logger.Info("notes imported", "mode", mode, "imported", report.Imported, "reassigned", report.Reassigned)
	return report, nil
}

// Export writes every note, deleted ones included, to w.
func (s *Service) Export(ctx context.Context, w io.Writer, format Format) error {
	all, err := s.All(ctx)
	if err != nil {
		return err
	}
	switch format {
	case FormatJSON, "":
		return codec.EncodeJSON(w, all)
	case FormatCSV:
		return codec.EncodeCSV(w, all)
	case FormatYAML:
		return codec.EncodeYAML(w, all)
	}
	return fmt.Errorf("unsupported format %q", format)
}

func decode(r io.Reader, format Format) ([]codec.Record, error) {
	switch format {
	case FormatJSON, "":
		return codec.DecodeJSON(r)
	case FormatYAML:
		notes, err := codec.DecodeYAML(r)
		if err != nil {
			return nil, err
		}
		records := make([]codec.Record, len(notes))
		for i, n := range notes {
			records[i] = codec.Record{Note: n, HasFacts: true}
		}
		return records, nil
	}
	return nil, fmt.Errorf("import from %q is not supported", format)
}
