package schedule

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/tally/pkg/core"
)

// ledgerPattern matches every ledger key.
const ledgerPattern = core.LedgerPrefix + "*-*/*/*"

// Ledger records which notes were reminded on which day.
// It has one key per (note, day) and is only appended to, except for pruning.
type Ledger struct {
	store core.Store
}

// NewLedger creates a Ledger on top of store.
func NewLedger(store core.Store) Ledger {
	return Ledger{store: store}
}

// LedgerKey returns the key of the ledger entry for noteID on day.
func LedgerKey(noteID int, day core.Date) string {
	return fmt.Sprintf("%s%d-%s", core.LedgerPrefix, noteID, day.Format())
}

// ParseLedgerKey splits a ledger key into its note id and day.
func ParseLedgerKey(key string) (noteID int, day core.Date, ok bool) {
	rest, found := strings.CutPrefix(key, core.LedgerPrefix)
	if !found {
		return 0, core.Date{}, false
	}
	idPart, datePart, found := strings.Cut(rest, "-")
	if !found {
		return 0, core.Date{}, false
	}
	id, err := strconv.Atoi(idPart)
	if err != nil {
		return 0, core.Date{}, false
	}
	d, err := core.ParseFormatted(datePart)
	if err != nil {
		return 0, core.Date{}, false
	}
	return id, d, true
}

// Seen reports whether noteID was already reminded on day.
func (l Ledger) Seen(ctx context.Context, noteID int, day core.Date) (bool, error) {
	_, ok, err := l.store.Get(ctx, LedgerKey(noteID, day))
	if err != nil {
		return false, fmt.Errorf("read ledger: %w", err)
	}
	return ok, nil
}

// Mark records that noteID was reminded on day.
func (l Ledger) Mark(ctx context.Context, noteID int, day core.Date) error {
	if err := l.store.Set(ctx, LedgerKey(noteID, day), []byte("true")); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}

// Prune deletes the entries of days before today and returns how many it removed.
func (l Ledger) Prune(ctx context.Context, today core.Date) (int, error) {
	keys, err := l.store.Keys(ctx, ledgerPattern)
	if err != nil {
		return 0, fmt.Errorf("list ledger: %w", err)
	}
	pruned := 0
	for _, k := range keys {
		_, day, ok := ParseLedgerKey(k)
		if !ok || !day.Before(today) {
			continue
		}
		if err := l.store.Delete(ctx, k); err != nil {
			return pruned, fmt.Errorf("prune ledger: %w", err)
		}
		pruned++
	}
	return pruned, nil
}
