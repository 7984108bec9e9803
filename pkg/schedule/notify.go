package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/aretw0/tally/pkg/core"
)

// Action identifiers understood by Scheduler.Respond.
const (
	ActionMarkDone = "mark-done"
	snoozePrefix   = "snooze-"
)

// NotificationTitle is the title of every reminder.
const NotificationTitle = "Tally Reminder"

// bodyLimit is the number of runes of content quoted in a reminder body.
const bodyLimit = 100

// Action is a button offered by a notification.
type Action struct {
	Action string `json:"action"`
	Title  string `json:"title"`
}

// DefaultActions are offered by every reminder.
var DefaultActions = []Action{
	{Action: ActionMarkDone, Title: "Yes, Done"},
	{Action: "snooze-15", Title: "Snooze 15m"},
	{Action: "snooze-60", Title: "Snooze 1h"},
	{Action: "snooze-1440", Title: "Tomorrow"},
}

// NotificationData is the payload carried back with a response.
type NotificationData struct {
	NoteID int `json:"noteId"`
}

// Notification is a reminder about one note.
type Notification struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Body     string           `json:"body"`
	Tag      string           `json:"tag"`
	Renotify bool             `json:"renotify"`
	Snoozed  bool             `json:"snoozed,omitempty"`
	Actions  []Action         `json:"actions"`
	Data     NotificationData `json:"data"`
}

// NewNotification builds the reminder of note. The tag is stable per note so
// that a newer reminder replaces an older one on the display surface.
func NewNotification(note core.Note) Notification {
	return Notification{
		ID:       uuid.NewString(),
		Title:    NotificationTitle,
		Body:     reminderBody(note.Content),
		Tag:      NotificationTag(note.ID),
		Renotify: true,
		Actions:  append([]Action(nil), DefaultActions...),
		Data:     NotificationData{NoteID: note.ID},
	}
}

// NotificationTag returns the display tag of the reminders of a note.
func NotificationTag(noteID int) string {
	return fmt.Sprintf("tally-reminder-%d", noteID)
}

func reminderBody(content string) string {
	if r := []rune(content); len(r) > bodyLimit {
		content = string(r[:bodyLimit]) + "..."
	}
	return fmt.Sprintf("Reminder: \"%s\"", content)
}

// Notifier delivers notifications to the user.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, n Notification) error

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, n Notification) error { return f(ctx, n) }

// LogNotifier writes notifications to a structured logger.
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify implements Notifier.
func (l LogNotifier) Notify(ctx context.Context, n Notification) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, n.Title,
		"note", n.Data.NoteID,
		"body", n.Body,
		"tag", n.Tag,
		"snoozed", n.Snoozed,
	)
	return nil
}

// WriterNotifier writes each notification as one JSON line.
type WriterNotifier struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewWriterNotifier creates a WriterNotifier writing to w.
func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{enc: json.NewEncoder(w)}
}

// Notify implements Notifier.
func (w *WriterNotifier) Notify(ctx context.Context, n Notification) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enc.Encode(n)
}
