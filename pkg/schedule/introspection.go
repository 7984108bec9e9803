package schedule

import (
	"time"

	"github.com/aretw0/introspection"
)

// SchedulerState exposes internal state for observability.
type SchedulerState struct {
	Today      string     `json:"today"`
	LastScan   *time.Time `json:"last_scan,omitempty"`
	LastReport ScanReport `json:"last_report"`
	Notified   int        `json:"notified"`
	Snoozed    []int      `json:"snoozed"`
}

// State implements introspection.Introspectable.
func (s *Scheduler) State() any {
	snoozed := s.Snoozed()

	s.mu.Lock()
	defer s.mu.Unlock()
	return SchedulerState{
		Today:      s.Today().Format(),
		LastScan:   s.lastScan,
		LastReport: s.lastReport,
		Notified:   s.notified,
		Snoozed:    snoozed,
	}
}

// ComponentType implements introspection.Component.
func (s *Scheduler) ComponentType() string {
	return "scheduler"
}

var _ introspection.Introspectable = (*Scheduler)(nil)
var _ introspection.Component = (*Scheduler)(nil)
