package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/aretw0/tally/pkg/core"
)

// noteView is the JSON shape printed by list and show.
type noteView struct {
	ID         int      `json:"id"`
	Content    string   `json:"content"`
	Tags       []string `json:"tags"`
	Created    string   `json:"created"`
	Deleted    bool     `json:"deleted"`
	Qty        *int     `json:"qty"`
	Amount     *float64 `json:"amount"`
	Currency   string   `json:"currencyCode,omitempty"`
	Due        string   `json:"due,omitempty"`
	Recurrence string   `json:"recurrence,omitempty"`
	Origin     int      `json:"origin,omitempty"`
}

func view(n core.Note) noteView {
	v := noteView{
		ID:       n.ID,
		Content:  n.Content,
		Tags:     n.Tags,
		Created:  n.CreatedAt.Format("2006-01-02 15:04"),
		Deleted:  n.Deleted,
		Qty:      n.Quantity,
		Amount:   n.Amount,
		Currency: n.CurrencyCode,
		Origin:   n.Origin,
	}
	if v.Tags == nil {
		v.Tags = []string{}
	}
	if n.DueDate != nil {
		v.Due = n.DueDate.Format()
	}
	if n.Recurrence != nil {
		v.Recurrence = n.Recurrence.String()
	}
	return v
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printTable(w io.Writer, list []core.Note) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tQTY\tAMOUNT\tDUE\tREPEATS\tTAGS\tCONTENT")
	for _, n := range list {
		v := view(n)
		id := strconv.Itoa(v.ID)
		if v.Deleted {
			id += "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			id, qty(v.Qty), amount(v.Amount, v.Currency), v.Due, v.Recurrence,
			strings.Join(v.Tags, ","), truncate(v.Content, 60))
	}
	return tw.Flush()
}

func qty(q *int) string {
	if q == nil {
		return ""
	}
	return strconv.Itoa(*q)
}

func amount(a *float64, code string) string {
	if a == nil {
		return ""
	}
	s := strconv.FormatFloat(*a, 'f', 2, 64)
	if code != "" {
		s = code + " " + s
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, a := range args {
		id, err := strconv.Atoi(a)
		if err != nil || id < 1 {
			return nil, fmt.Errorf("invalid note id %q", a)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
