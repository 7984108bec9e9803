package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/tally/pkg/core"
	"github.com/aretw0/tally/pkg/notes"
)

// ErrUnknownAction is returned by Respond for an action it does not understand.
var ErrUnknownAction = errors.New("unknown reminder action")

// Timer is a pending snooze. *time.Timer satisfies it.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run after d. time.AfterFunc is the default.
type AfterFunc func(d time.Duration, f func()) Timer

// ScanReport summarises one scan.
type ScanReport struct {
	Projected int `json:"projected"`
	Notified  int `json:"notified"`
	Pruned    int `json:"pruned"`
}

// Scheduler projects recurring notes and emits reminders for notes due today.
type Scheduler struct {
	notes     *notes.Service
	ledger    Ledger
	notifier  Notifier
	clock     core.Clock
	loc       *time.Location
	logger    *slog.Logger
	afterFunc AfterFunc

	mu         sync.Mutex
	snoozes    map[int]*snooze
	lastScan   *time.Time
	lastReport ScanReport
	notified   int
}

type snooze struct {
	timer Timer
	until time.Time
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithNotifier sets where reminders are delivered.
func WithNotifier(n Notifier) Option {
	return func(s *Scheduler) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithClock sets the clock that decides what "today" is.
func WithClock(c core.Clock) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLocation sets the location in which days start and end.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithAfterFunc replaces the timer used for snoozes.
func WithAfterFunc(f AfterFunc) Option {
	return func(s *Scheduler) {
		if f != nil {
			s.afterFunc = f
		}
	}
}

// NewScheduler creates a Scheduler over the notes of svc.
// Reminders go to a LogNotifier unless WithNotifier is given.
func NewScheduler(svc *notes.Service, opts ...Option) *Scheduler {
	s := &Scheduler{
		notes:   svc,
		ledger:  NewLedger(svc.Store()),
		clock:   core.SystemClock,
		loc:     time.Local,
		logger:  slog.New(slog.DiscardHandler),
		snoozes: make(map[int]*snooze),
		afterFunc: func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, f)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.notifier == nil {
		s.notifier = LogNotifier{Logger: s.logger}
	}
	return s
}

// Now returns the current time in the scheduler's location.
func (s *Scheduler) Now() time.Time {
	return s.clock.Now().In(s.loc)
}

// Today returns the current day in the scheduler's location.
func (s *Scheduler) Today() core.Date {
	return core.DateOf(s.Now())
}

// Scan runs the projection pass, then notifies about every live note due
// today that has not been reminded today, then prunes the ledger entries of
// past days. The ledger entry is written before the notification is sent.
// A failing notification is logged and does not stop the scan.
func (s *Scheduler) Scan(ctx context.Context) (ScanReport, error) {
	now := s.Now()
	today := core.DateOf(now)
	var report ScanReport

	projected, err := s.project(ctx, today, now)
	if err != nil {
		return report, fmt.Errorf("projection: %w", err)
	}
	report.Projected = projected

	all, err := s.notes.All(ctx)
	if err != nil {
		return report, err
	}
	for _, n := range all {
		if n.Deleted || n.DueDate == nil || *n.DueDate != today {
			continue
		}
		seen, err := s.ledger.Seen(ctx, n.ID, today)
		if err != nil {
			return report, err
		}
		if seen {
			continue
		}
		if err := s.ledger.Mark(ctx, n.ID, today); err != nil {
			return report, err
		}
		if err := s.notifier.Notify(ctx, NewNotification(n)); err != nil {
			s.logger.Error("reminder delivery failed", "note", n.ID, "error", err)
			continue
		}
		report.Notified++
	}

	pruned, err := s.ledger.Prune(ctx, today)
	report.Pruned = pruned
	if err != nil {
		s.logger.Warn("ledger pruning failed", "error", err)
	}

	s.mu.Lock()
	s.lastScan = &now
	s.lastReport = report
	s.notified += report.Notified
	s.mu.Unlock()

	s.logger.Debug("scan finished", "day", today, "projected", report.Projected,
		"notified", report.Notified, "pruned", report.Pruned)
	return report, nil
}

func (s *Scheduler) project(ctx context.Context, today core.Date, now time.Time) (int, error) {
	all, err := s.notes.All(ctx)
	if err != nil {
		return 0, err
	}
	if len(ProjectAll(all, today, notes.NextID(all), now)) == 0 {
		return 0, nil
	}

	projected := 0
	err = s.notes.Update(ctx, func(all []core.Note) ([]core.Note, error) {
		fresh := ProjectAll(all, today, notes.NextID(all), now)
		projected = len(fresh)
		for _, n := range fresh {
			s.logger.Info("recurring note projected", "id", n.ID, "series", n.Origin, "due", n.DueDate)
		}
		return append(all, fresh...), nil
	})
	return projected, err
}

// Respond handles the action chosen on the reminder of noteID.
//
//   - mark-done soft-deletes the note and cancels a pending snooze.
//   - snooze-N reminds again after N minutes, whatever the ledger says.
//     A newer snooze replaces an older one.
func (s *Scheduler) Respond(ctx context.Context, noteID int, action string) error {
	if action == ActionMarkDone {
		if err := s.notes.SoftDelete(ctx, noteID); err != nil {
			return err
		}
		s.cancelSnooze(noteID)
		s.logger.Info("reminder completed", "note", noteID)
		return nil
	}

	minutes, ok := snoozeMinutes(action)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	note, err := s.notes.Get(ctx, noteID)
	if err != nil {
		return err
	}
	if note.Deleted {
		return fmt.Errorf("%w: %d is deleted", core.ErrNotFound, noteID)
	}

	d := time.Duration(minutes) * time.Minute
	sn := &snooze{until: s.clock.Now().Add(d)}
	s.mu.Lock()
	if old, ok := s.snoozes[noteID]; ok {
		old.timer.Stop()
	}
	s.snoozes[noteID] = sn
	sn.timer = s.afterFunc(d, func() { s.fireSnooze(noteID, sn) })
	s.mu.Unlock()

	s.logger.Info("reminder snoozed", "note", noteID, "minutes", minutes)
	return nil
}

func snoozeMinutes(action string) (int, bool) {
	rest, ok := strings.CutPrefix(action, snoozePrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// fireSnooze re-notifies a snoozed note unless it was deleted in the meantime.
func (s *Scheduler) fireSnooze(noteID int, sn *snooze) {
	s.mu.Lock()
	if s.snoozes[noteID] != sn {
		s.mu.Unlock()
		return
	}
	delete(s.snoozes, noteID)
	s.mu.Unlock()

	ctx := context.Background()
	note, err := s.notes.Get(ctx, noteID)
	if err != nil {
		s.logger.Warn("snoozed note unavailable", "note", noteID, "error", err)
		return
	}
	if note.Deleted {
		return
	}
	n := NewNotification(note)
	n.Snoozed = true
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Error("reminder delivery failed", "note", noteID, "error", err)
		return
	}
	s.mu.Lock()
	s.notified++
	s.mu.Unlock()
}

func (s *Scheduler) cancelSnooze(noteID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sn, ok := s.snoozes[noteID]; ok {
		sn.timer.Stop()
		delete(s.snoozes, noteID)
	}
}

// CancelSnoozes stops every pending snooze.
func (s *Scheduler) CancelSnoozes() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sn := range s.snoozes {
		sn.timer.Stop()
		delete(s.snoozes, id)
	}
}

// Snoozed returns the ids of the notes with a pending snooze, sorted.
func (s *Scheduler) Snoozed() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int, 0, len(s.snoozes))
	for id := range s.snoozes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
