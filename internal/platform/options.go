package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/tally/pkg/core"
	"github.com/aretw0/tally/pkg/schedule"
)

// Adapter names accepted by WithAdapter.
const (
	AdapterFS       = "fs"
	AdapterSQLite   = "sqlite"
	AdapterPostgres = "postgres"
	AdapterMemory   = "memory"
)

// options holds the internal configuration for tally.
type options struct {
	store        core.Store
	logger       *slog.Logger
	adapter      string
	clock        core.Clock
	location     *time.Location
	notifier     schedule.Notifier
	pollInterval time.Duration
	reminderHour int
	watch        bool
	config       map[string]interface{}
}

// Option defines a functional option for configuring tally.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		adapter:      AdapterFS,
		clock:        core.SystemClock,
		location:     time.Local,
		pollInterval: schedule.DefaultPollInterval,
		reminderHour: schedule.DefaultReminderHour,
		config:       make(map[string]interface{}),
	}
}

func resolve(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStore injects a custom store. The adapter and its path are then ignored.
func WithStore(store core.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithAdapter selects the storage adapter by name: fs, sqlite, postgres or memory.
// Defaults to "fs".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithTable sets the table of the SQL adapters.
func WithTable(name string) Option {
	return func(o *options) {
		o.config["table"] = name
	}
}

// WithClock sets the clock used for timestamps, year inference and "today".
func WithClock(c core.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithLocation sets the location in which days and the reminder hour are computed.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.location = loc
		}
	}
}

// WithNotifier sets where reminders are delivered. Defaults to the logger.
func WithNotifier(n schedule.Notifier) Option {
	return func(o *options) {
		o.notifier = n
	}
}

// WithPollInterval sets how often the reminder daemon wakes up.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.pollInterval = d
		}
	}
}

// WithReminderHour sets the local hour during which polls scan for reminders.
func WithReminderHour(hour int) Option {
	return func(o *options) {
		o.reminderHour = hour
	}
}

// WithWatch makes the daemon scan whenever another process changes the notes,
// for stores that can report changes.
func WithWatch(enabled bool) Option {
	return func(o *options) {
		o.watch = enabled
	}
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.config["temp_dir"] = force
	}
}

// WithMustExist requires the store directory to exist already.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.config["must_exist"] = must
	}
}

// WithErrorHandler registers a callback for failures of background work
// (store watching, daemon scans) which are otherwise only logged.
func WithErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.config["error_handler"] = fn
	}
}

// WithReadOnly enables read-only mode.
// In this mode:
// 1. Writes to the fs store return core.ErrReadOnly.
// 2. The store directory is not created.
// 3. Dev Safety Lock (go run temp dir) is BYPASSED (uses real path).
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.config["read_only"] = enabled
	}
}

// WithDevSafety controls the "Sandbox" safety mechanism when running via `go run`.
// By default (true), tally forces a temporary directory to prevent accidental data loss.
// Setting this to false allows operating on the real store even during `go run`.
//
// CAUTION: Only disable this if you are sure your code is safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.config["dev_safety"] = enabled
	}
}
