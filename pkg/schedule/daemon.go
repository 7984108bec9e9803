package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/aretw0/lifecycle/pkg/core/worker"

	"github.com/aretw0/tally/pkg/core"
)

// Defaults of the daemon.
const (
	DefaultPollInterval = time.Hour
	DefaultReminderHour = 9
)

// ControlType names a control message accepted by the daemon.
type ControlType string

const (
	// ControlCheck asks for an immediate scan, outside the reminder hour.
	ControlCheck ControlType = "CHECK_REMINDERS"
	// ControlAction carries the response to a reminder.
	ControlAction ControlType = "ACTION"
)

// Control is a message sent to a running daemon.
type Control struct {
	Type   ControlType `json:"type"`
	NoteID int         `json:"noteId,omitempty"`
	Action string      `json:"action,omitempty"`
}

// Validate reports whether the message is well formed.
func (c Control) Validate() error {
	switch c.Type {
	case ControlCheck:
		return nil
	case ControlAction:
		if c.NoteID < 1 || c.Action == "" {
			return fmt.Errorf("ACTION needs noteId and action")
		}
		return nil
	}
	return fmt.Errorf("unknown control message type %q", c.Type)
}

// DaemonConfig holds the configuration of the daemon.
type DaemonConfig struct {
	// PollInterval is how often the daemon wakes up.
	PollInterval time.Duration
	// ReminderHour is the local hour (0-23) during which wake-ups scan.
	// Nil or out of range means DefaultReminderHour.
	ReminderHour *int
	// Watch, when set, triggers a scan on every change of the note collection.
	Watch core.Watchable

	Logger       *slog.Logger
	ErrorHandler func(error)
}

// Daemon runs a Scheduler in the background: one scan on start, then one
// per poll inside the reminder hour, plus scans and responses on request.
type Daemon struct {
	*worker.BaseWorker
	scheduler *Scheduler
	config    DaemonConfig
	control   chan Control
	hour      int
	cancel    context.CancelFunc
}

// NewDaemon creates a daemon for s. Unset config fields take their defaults.
func NewDaemon(s *Scheduler, config DaemonConfig) *Daemon {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	hour := DefaultReminderHour
	if h := config.ReminderHour; h != nil && *h >= 0 && *h <= 23 {
		hour = *h
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	return &Daemon{
		BaseWorker: worker.NewBaseWorker("tally-reminders"),
		scheduler:  s,
		config:     config,
		control:    make(chan Control, 8),
		hour:       hour,
	}
}

func (d *Daemon) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := d.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("daemon already started (status: %s)", status)
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	d.SetStatus(worker.StatusRunning)
	return d.StartFunc(runCtx, d.run)
}

// Stop halts the daemon and cancels every pending snooze.
func (d *Daemon) Stop(ctx context.Context) error {
	if d.cancel != nil {
		d.StopRequested = true
		d.cancel()
	}
	d.scheduler.CancelSnoozes()
	return d.BaseWorker.Stop(ctx)
}

func (d *Daemon) State() worker.State {
	return d.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
		}
	})
}

// Send queues a control message.
func (d *Daemon) Send(ctx context.Context, c Control) error {
	if err := c.Validate(); err != nil {
		return err
	}
	select {
	case d.control <- c:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CheckNow asks for an immediate scan.
func (d *Daemon) CheckNow(ctx context.Context) error {
	return d.Send(ctx, Control{Type: ControlCheck})
}

// Respond forwards the response to a reminder.
func (d *Daemon) Respond(ctx context.Context, noteID int, action string) error {
	return d.Send(ctx, Control{Type: ControlAction, NoteID: noteID, Action: action})
}

func (d *Daemon) run(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("daemon panic: %v", recovered)
			if d.config.Logger.Enabled(ctx, slog.LevelDebug) {
				d.config.Logger.Error("daemon panic", "error", err, "stack", string(debug.Stack()))
			} else {
				d.config.Logger.Error("daemon panic", "error", err)
			}
		}
	}()

	d.scan(ctx, "startup")

	ticker := time.NewTicker(d.config.PollInterval)
	defer ticker.Stop()

	var changes <-chan core.Event
	if d.config.Watch != nil {
		changes, err = d.config.Watch.Watch(ctx, core.NotesKey)
		if err != nil {
			d.config.Logger.Warn("store watch unavailable", "error", err)
			changes, err = nil, nil
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C:
			if d.scheduler.Now().Hour() == d.hour {
				d.scan(ctx, "poll")
			}

		case c := <-d.control:
			d.handle(ctx, c)

		case e, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			d.config.Logger.Debug("note collection changed", "event", e)
			d.scan(ctx, "store change")
		}
	}
}

func (d *Daemon) handle(ctx context.Context, c Control) {
	switch c.Type {
	case ControlCheck:
		d.scan(ctx, "check requested")
	case ControlAction:
		if err := d.scheduler.Respond(ctx, c.NoteID, c.Action); err != nil {
			d.fail(fmt.Errorf("respond %s to note %d: %w", c.Action, c.NoteID, err))
		}
	}
}

func (d *Daemon) scan(ctx context.Context, reason string) {
	report, err := d.scheduler.Scan(ctx)
	if err != nil {
		d.fail(fmt.Errorf("scan (%s): %w", reason, err))
		return
	}
	d.config.Logger.Info("reminders checked", "reason", reason,
		"projected", report.Projected, "notified", report.Notified, "pruned", report.Pruned)
}

func (d *Daemon) fail(err error) {
	d.config.Logger.Error("reminder daemon error", "error", err)
	if d.config.ErrorHandler != nil {
		d.config.ErrorHandler(err)
	}
}
