package tally

import (
	"log/slog"
	"time"

	"github.com/aretw0/tally/internal/platform"
	"github.com/aretw0/tally/pkg/core"
	"github.com/aretw0/tally/pkg/notes"
	"github.com/aretw0/tally/pkg/schedule"
)

// Version exposes the version of the library.
// See version.go for the implementation using go:embed.

// --- Types ---

// Service is the note service returned by New.
type Service = notes.Service

// Scheduler projects recurring notes and emits reminders.
type Scheduler = schedule.Scheduler

// Daemon runs a Scheduler in the background.
type Daemon = schedule.Daemon

// Config is the content of a tally.yaml file.
type Config = platform.Config

// --- Configuration ---

// Option defines a functional option for configuring tally.
type Option = platform.Option

// Adapter names.
const (
	AdapterFS       = platform.AdapterFS
	AdapterSQLite   = platform.AdapterSQLite
	AdapterPostgres = platform.AdapterPostgres
	AdapterMemory   = platform.AdapterMemory
)

// DirName is the default store directory; ConfigFileName the optional configuration file.
const (
	DirName        = platform.DirName
	ConfigFileName = platform.ConfigFileName
)

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithStore injects a custom store.
func WithStore(store core.Store) Option {
	return platform.WithStore(store)
}

// WithAdapter selects the storage adapter by name.
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithTable sets the table of the SQL adapters.
func WithTable(name string) Option {
	return platform.WithTable(name)
}

// WithClock sets the clock used for timestamps, year inference and "today".
func WithClock(c core.Clock) Option {
	return platform.WithClock(c)
}

// WithLocation sets the location in which days and the reminder hour are computed.
func WithLocation(loc *time.Location) Option {
	return platform.WithLocation(loc)
}

// WithNotifier sets where reminders are delivered.
func WithNotifier(n schedule.Notifier) Option {
	return platform.WithNotifier(n)
}

// WithPollInterval sets how often the reminder daemon wakes up.
func WithPollInterval(d time.Duration) Option {
	return platform.WithPollInterval(d)
}

// WithReminderHour sets the local hour during which polls scan for reminders.
func WithReminderHour(hour int) Option {
	return platform.WithReminderHour(hour)
}

// WithWatch makes the daemon react to changes made by other processes.
func WithWatch(enabled bool) Option {
	return platform.WithWatch(enabled)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithMustExist requires the store directory to exist already.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithErrorHandler registers a callback for failures of background work.
func WithErrorHandler(fn func(error)) Option {
	return platform.WithErrorHandler(fn)
}

// WithReadOnly enables read-only mode.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithDevSafety controls the sandbox used when running via `go run`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// --- Factory ---

// New opens the store at uri and returns the note service.
func New(uri string, opts ...Option) (*Service, error) {
	return platform.New(uri, opts...)
}

// Open opens and initializes the store at uri.
func Open(uri string, opts ...Option) (core.Store, error) {
	return platform.Open(uri, opts...)
}

// NewScheduler returns the reminder scheduler of svc.
func NewScheduler(svc *Service, opts ...Option) *Scheduler {
	return platform.NewScheduler(svc, opts...)
}

// NewDaemon returns a reminder daemon over svc.
func NewDaemon(svc *Service, opts ...Option) *Daemon {
	return platform.NewDaemon(svc, opts...)
}

// LoadConfig reads a tally.yaml file.
func LoadConfig(path string) (Config, error) {
	return platform.LoadConfig(path)
}

// --- Safety & Utils ---

// ResolveStorePath determines the actual path of a file-based store based on safety rules.
func ResolveStorePath(userPath string, forceTemp bool) string {
	return platform.ResolveStorePath(userPath, forceTemp)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// FindRoot looks upwards for a directory holding .tally or tally.yaml.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
