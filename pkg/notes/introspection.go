package notes

import (
	"time"

	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	StoreType    string     `json:"store_type"`
	Mutations    int        `json:"mutations"`
	LastMutation *time.Time `json:"last_mutation,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.Lock()
	defer s.mu.Unlock()

	storeType := "store"
	if comp, ok := s.repo.Store().(introspection.Component); ok {
		storeType = comp.ComponentType()
	}
	return ServiceState{
		StoreType:    storeType,
		Mutations:    s.mutations,
		LastMutation: s.lastMutation,
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
