package notes

import (
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/aretw0/tally/pkg/core"
)

// SortKey names the field a listing is ordered by.
type SortKey string

const (
	SortID      SortKey = "id"
	SortCreated SortKey = "created"
	SortContent SortKey = "content"
	SortDue     SortKey = "due"
)

// ParseSortKey validates a sort key given on the command line.
func ParseSortKey(s string) (SortKey, bool) {
	switch k := SortKey(strings.ToLower(s)); k {
	case SortID, SortCreated, SortContent, SortDue:
		return k, true
	case "":
		return SortID, true
	}
	return "", false
}

// Filter selects and orders notes for listing.
type Filter struct {
	Tag    string
	Search string // matched against the content (case-insensitive) or the id

	IncludeDeleted bool
	OnlyDeleted    bool

	Sort SortKey
	Desc bool
}

// Apply returns copies of the matching notes in the requested order.
func (f Filter) Apply(all []core.Note) []core.Note {
	needle := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]core.Note, 0, len(all))
	for _, n := range all {
		switch {
		case f.OnlyDeleted && !n.Deleted:
			continue
		case !f.OnlyDeleted && !f.IncludeDeleted && n.Deleted:
			continue
		case f.Tag != "" && !n.HasTag(f.Tag):
			continue
		case needle != "" && !matches(n, needle):
			continue
		}
		out = append(out, n.Clone())
	}

	cmp := f.compare()
	slices.SortStableFunc(out, func(a, b core.Note) int {
		c := cmp(a, b)
		if f.Desc {
			return -c
		}
		return c
	})
	return out
}

func (f Filter) compare() func(a, b core.Note) int {
	switch f.Sort {
	case SortCreated:
		return func(a, b core.Note) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case SortContent:
		col := collate.New(language.Und, collate.IgnoreCase)
		return func(a, b core.Note) int { return col.CompareString(a.Content, b.Content) }
	case SortDue:
		// Notes without a due date sort last.
		return func(a, b core.Note) int {
			switch {
			case a.DueDate == nil && b.DueDate == nil:
				return a.ID - b.ID
			case a.DueDate == nil:
				return 1
			case b.DueDate == nil:
				return -1
			}
			return a.DueDate.Compare(*b.DueDate)
		}
	default:
		return func(a, b core.Note) int { return a.ID - b.ID }
	}
}

func matches(n core.Note, needle string) bool {
	if strings.Contains(strings.ToLower(n.Content), needle) {
		return true
	}
	return strconv.Itoa(n.ID) == needle
}
