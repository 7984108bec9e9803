package codec

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/tally/pkg/core"
)

// csvHeader lists the exported columns. The first five match the layout the
// spreadsheet export has always had; the fact columns follow.
var csvHeader = []string{
	"ID", "Content", "Tags", "Created", "Deleted",
	"Qty", "Amount", "Currency", "DueDate", "Recurrence",
}

// EncodeCSV writes one row per note. Tags are joined with ';'.
func EncodeCSV(w io.Writer, notes []core.Note) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, n := range notes {
		if err := cw.Write(csvRow(n)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRow(n core.Note) []string {
	row := []string{
		strconv.Itoa(n.ID),
		n.Content,
		strings.Join(n.Tags, ";"),
		n.CreatedAt.UTC().Format(time.RFC3339),
		strconv.FormatBool(n.Deleted),
		"", "", n.CurrencyCode, "", "",
	}
	if n.Quantity != nil {
		row[5] = strconv.Itoa(*n.Quantity)
	}
	if n.Amount != nil {
		row[6] = strconv.FormatFloat(*n.Amount, 'f', -1, 64)
	}
	if n.DueDate != nil {
		row[8] = n.DueDate.Format()
	}
	if n.Recurrence != nil {
		row[9] = n.Recurrence.String()
	}
	return row
}
