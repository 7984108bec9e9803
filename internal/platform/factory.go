package platform

import (
	"github.com/aretw0/tally/pkg/core"
	"github.com/aretw0/tally/pkg/facts"
	"github.com/aretw0/tally/pkg/notes"
	"github.com/aretw0/tally/pkg/schedule"
)

// New opens the store and returns the note service on top of it.
//
//	svc, err := tally.New(".tally", tally.WithLogger(logger))
func New(uri string, opts ...Option) (*notes.Service, error) {
	o := resolve(opts)
	store, err := open(uri, o)
	if err != nil {
		return nil, err
	}
	return newService(store, o), nil
}

func newService(store core.Store, o *options) *notes.Service {
	extractor := facts.NewExtractor(
		facts.WithClock(o.clock),
		facts.WithLocation(o.location),
	)
	return notes.NewService(store,
		notes.WithLogger(o.logger),
		notes.WithClock(o.clock),
		notes.WithExtractor(extractor),
	)
}

// NewScheduler returns the reminder scheduler of svc.
func NewScheduler(svc *notes.Service, opts ...Option) *schedule.Scheduler {
	return newScheduler(svc, resolve(opts))
}

func newScheduler(svc *notes.Service, o *options) *schedule.Scheduler {
	return schedule.NewScheduler(svc,
		schedule.WithClock(o.clock),
		schedule.WithLocation(o.location),
		schedule.WithLogger(o.logger),
		schedule.WithNotifier(o.notifier),
	)
}

// NewDaemon returns a reminder daemon running a new scheduler over svc.
func NewDaemon(svc *notes.Service, opts ...Option) *schedule.Daemon {
	o := resolve(opts)
	errorHandler, _ := o.config["error_handler"].(func(error))

	hour := o.reminderHour
	config := schedule.DaemonConfig{
		PollInterval: o.pollInterval,
		ReminderHour: &hour,
		Logger:       o.logger,
		ErrorHandler: errorHandler,
	}
	if o.watch {
		if w, ok := svc.Store().(core.Watchable); ok {
			config.Watch = w
		} else {
			o.logger.Warn("store cannot report changes, watch disabled")
		}
	}
	return schedule.NewDaemon(newScheduler(svc, o), config)
}
