package schedule_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/tally/pkg/adapters/memory"
	"github.com/aretw0/tally/pkg/core"
	"github.com/aretw0/tally/pkg/notes"
	"github.com/aretw0/tally/pkg/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a Notifier that keeps what it receives.
type recorder struct {
	mu   sync.Mutex
	sent []schedule.Notification
	err  error
}

func (r *recorder) Notify(ctx context.Context, n schedule.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, n)
	return nil
}

func (r *recorder) notes() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int, len(r.sent))
	for i, n := range r.sent {
		ids[i] = n.Data.NoteID
	}
	return ids
}

// fakeTimers captures snoozes so tests fire them by hand.
type fakeTimers struct {
	mu      sync.Mutex
	pending []*fakeTimer
}

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (ft *fakeTimers) after(d time.Duration, f func()) schedule.Timer {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	ft.pending = append(ft.pending, t)
	return t
}

func (ft *fakeTimers) fireAll() {
	ft.mu.Lock()
	timers := ft.pending
	ft.pending = nil
	ft.mu.Unlock()
	for _, t := range timers {
		if !t.stopped {
			t.f()
		}
	}
}

type fixture struct {
	store  *memory.Store
	notes  *notes.Service
	sched  *schedule.Scheduler
	rec    *recorder
	timers *fakeTimers
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	clock := core.ClockFunc(func() time.Time { return now })
	store := memory.NewStore()
	svc := notes.NewService(store, notes.WithClock(clock))
	rec := &recorder{}
	timers := &fakeTimers{}
	sched := schedule.NewScheduler(svc,
		schedule.WithClock(clock),
		schedule.WithLocation(time.UTC),
		schedule.WithNotifier(rec),
		schedule.WithAfterFunc(timers.after),
	)
	return &fixture{store: store, notes: svc, sched: sched, rec: rec, timers: timers}
}

var scanNow = time.Date(2024, time.April, 15, 9, 30, 0, 0, time.UTC)

func TestScan_AtMostOncePerDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, scanNow)

	due, err := f.notes.Create(ctx, "Call the bank 15/04")
	require.NoError(t, err)
	_, err = f.notes.Create(ctx, "Buy flowers 16/04")
	require.NoError(t, err)

	report, err := f.sched.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Notified)

	report, err = f.sched.Scan(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Notified)

	assert.Equal(t, []int{due.ID}, f.rec.notes())
	keys, err := f.store.Keys(ctx, "reminded-*-*/*/*")
	require.NoError(t, err)
	assert.Equal(t, []string{"reminded-1-15/04/2024"}, keys)
}

func TestScan_SkipsDeleted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, scanNow)

	n, _ := f.notes.Create(ctx, "Call the bank 15/04")
	require.NoError(t, f.notes.SoftDelete(ctx, n.ID))

	report, err := f.sched.Scan(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Notified)
}

func TestScan_ProjectsThenNotifies(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, scanNow)

	require.NoError(t, f.notes.Update(ctx, func(all []core.Note) ([]core.Note, error) {
		src := recurring(1, date(2024, 1, 15), core.Monthly, 1)
		return append(all, src), nil
	}))

	report, err := f.sched.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Projected)
	assert.Equal(t, 1, report.Notified)
	assert.Equal(t, []int{2}, f.rec.notes())

	report, err = f.sched.Scan(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Projected)

	all, err := f.notes.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, date(2024, 1, 15), *all[0].DueDate)
	assert.Equal(t, date(2024, 4, 15), *all[1].DueDate)
	assert.Equal(t, 1, all[1].Origin)
}

func TestScan_NotifyFailureDoesNotStopScan(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, scanNow)
	f.rec.err = assert.AnError

	_, _ = f.notes.Create(ctx, "a 15/04")
	_, _ = f.notes.Create(ctx, "b 15/04")

	report, err := f.sched.Scan(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Notified)

	// The ledger was written before delivery was attempted.
	keys, err := f.store.Keys(ctx, "reminded-*-*/*/*")
	require.NoError(t, err)
	assert.Len(t, keys, 2)
}

func TestScan_PrunesPastDays(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, scanNow)
	require.NoError(t, f.store.Set(ctx, "reminded-1-14/04/2024", []byte("true")))
	require.NoError(t, f.store.Set(ctx, "reminded-1-15/04/2024", []byte("true")))

	report, err := f.sched.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Pruned)
}

func TestScan_StoreUnavailable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, scanNow)
	f.store.FailWith = assert.AnError

	_, err := f.sched.Scan(ctx)
	assert.ErrorIs(t, err, core.ErrStoreUnavailable)
}

func TestRespond_MarkDone(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, scanNow)
	n, _ := f.notes.Create(ctx, "Call the bank 15/04")

	require.NoError(t, f.sched.Respond(ctx, n.ID, "snooze-15"))
	require.NoError(t, f.sched.Respond(ctx, n.ID, schedule.ActionMarkDone))
	assert.Empty(t, f.sched.Snoozed())

	got, err := f.notes.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, got.Deleted)

	f.timers.fireAll()
	assert.Empty(t, f.rec.notes())
}

func TestRespond_SnoozeBypassesLedger(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, scanNow)
	n, _ := f.notes.Create(ctx, "Call the bank 15/04")

	_, err := f.sched.Scan(ctx)
	require.NoError(t, err)
	require.Len(t, f.rec.notes(), 1)

	require.NoError(t, f.sched.Respond(ctx, n.ID, "snooze-60"))
	assert.Equal(t, []int{n.ID}, f.sched.Snoozed())
	require.Len(t, f.timers.pending, 1)
	assert.Equal(t, time.Hour, f.timers.pending[0].d)

	f.timers.fireAll()
	assert.Equal(t, []int{n.ID, n.ID}, f.rec.notes())
	assert.True(t, f.rec.sent[1].Snoozed)
	assert.Empty(t, f.sched.Snoozed())
}

func TestRespond_NewerSnoozeReplacesOlder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, scanNow)
	n, _ := f.notes.Create(ctx, "water plants")

	require.NoError(t, f.sched.Respond(ctx, n.ID, "snooze-15"))
	require.NoError(t, f.sched.Respond(ctx, n.ID, "snooze-1440"))
	assert.True(t, f.timers.pending[0].stopped)

	f.timers.fireAll()
	assert.Len(t, f.rec.notes(), 1)
}

func TestRespond_SnoozedNoteDeletedMeanwhile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, scanNow)
	n, _ := f.notes.Create(ctx, "water plants")

	require.NoError(t, f.sched.Respond(ctx, n.ID, "snooze-15"))
	require.NoError(t, f.notes.SoftDelete(ctx, n.ID))

	f.timers.fireAll()
	assert.Empty(t, f.rec.notes())
}

func TestRespond_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, scanNow)
	n, _ := f.notes.Create(ctx, "water plants")

	for _, action := range []string{"archive", "snooze-", "snooze-0", "snooze-x"} {
		assert.ErrorIs(t, f.sched.Respond(ctx, n.ID, action), schedule.ErrUnknownAction, action)
	}
	assert.ErrorIs(t, f.sched.Respond(ctx, 99, "snooze-15"), core.ErrNotFound)
	assert.ErrorIs(t, f.sched.Respond(ctx, 99, schedule.ActionMarkDone), core.ErrNotFound)
}

func TestNewNotification(t *testing.T) {
	n := schedule.NewNotification(core.Note{ID: 3, Content: "short"})
	assert.Equal(t, "Tally Reminder", n.Title)
	assert.Equal(t, `Reminder: "short"`, n.Body)
	assert.Equal(t, "tally-reminder-3", n.Tag)
	assert.True(t, n.Renotify)
	assert.Equal(t, 3, n.Data.NoteID)
	assert.Len(t, n.Actions, 4)
	assert.NotEmpty(t, n.ID)

	long := schedule.NewNotification(core.Note{ID: 4, Content: strings.Repeat("é", 120)})
	assert.Equal(t, `Reminder: "`+strings.Repeat("é", 100)+`..."`, long.Body)
	assert.NotEqual(t, n.ID, long.ID)
}

func TestScheduler_State(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, scanNow)
	_, _ = f.notes.Create(ctx, "due 15/04")
	_, err := f.sched.Scan(ctx)
	require.NoError(t, err)

	state, ok := f.sched.State().(schedule.SchedulerState)
	require.True(t, ok)
	assert.Equal(t, "15/04/2024", state.Today)
	assert.Equal(t, 1, state.Notified)
	assert.NotNil(t, state.LastScan)
	assert.Equal(t, "scheduler", f.sched.ComponentType())
}
