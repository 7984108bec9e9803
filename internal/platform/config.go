package platform

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the content of a tally.yaml file.
//
//	store:
//	  adapter: sqlite
//	  path: .tally/notes.db
//	reminders:
//	  hour: 8
//	  interval: 30m
//	  location: Europe/Madrid
//	  watch: true
type Config struct {
	Store     StoreConfig    `yaml:"store"`
	Reminders ReminderConfig `yaml:"reminders"`
	Log       LogConfig      `yaml:"log"`
}

// StoreConfig selects the persistence adapter.
type StoreConfig struct {
	Adapter string `yaml:"adapter"`
	Path    string `yaml:"path"`
	DSN     string `yaml:"dsn"`
	Table   string `yaml:"table"`
}

// ReminderConfig tunes the reminder daemon.
type ReminderConfig struct {
	Hour     *int   `yaml:"hour"`
	Interval string `yaml:"interval"`
	Location string `yaml:"location"`
	Watch    bool   `yaml:"watch"`
}

// LogConfig sets the log level (debug, info, warn, error).
type LogConfig struct {
	Level string `yaml:"level"`
}

// LoadConfig reads a configuration file. Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	return DecodeConfig(f)
}

// DecodeConfig parses configuration from r. An empty document is a zero Config.
func DecodeConfig(r io.Reader) (Config, error) {
	var c Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.Options(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// URI returns the adapter-specific location of the configured store.
func (c Config) URI() string {
	if c.Store.Adapter == AdapterPostgres {
		return c.Store.DSN
	}
	return c.Store.Path
}

// Options converts the configuration into functional options.
func (c Config) Options() ([]Option, error) {
	var opts []Option

	switch a := strings.ToLower(c.Store.Adapter); a {
	case "":
	case AdapterFS, AdapterSQLite, AdapterPostgres, AdapterMemory:
		opts = append(opts, WithAdapter(a))
	default:
		return nil, fmt.Errorf("invalid config: unknown adapter %q", c.Store.Adapter)
	}
	if c.Store.Table != "" {
		opts = append(opts, WithTable(c.Store.Table))
	}

	if h := c.Reminders.Hour; h != nil {
		if *h < 0 || *h > 23 {
			return nil, fmt.Errorf("invalid config: reminder hour %d out of range", *h)
		}
		opts = append(opts, WithReminderHour(*h))
	}
	if c.Reminders.Interval != "" {
		d, err := time.ParseDuration(c.Reminders.Interval)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid config: reminder interval %q", c.Reminders.Interval)
		}
		opts = append(opts, WithPollInterval(d))
	}
	if c.Reminders.Location != "" {
		loc, err := time.LoadLocation(c.Reminders.Location)
		if err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		opts = append(opts, WithLocation(loc))
	}
	if c.Reminders.Watch {
		opts = append(opts, WithWatch(true))
	}
	return opts, nil
}
