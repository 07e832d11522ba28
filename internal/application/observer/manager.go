package observer

import (
	"fmt"
	"sync"

	"github.com/dagflow-io/dagflow/internal/infrastructure/logger"
	"github.com/dagflow-io/dagflow/pkg/engine"
)

// Manager fans execution events out to registered observers. It implements
// engine.Notifier; observer errors are logged and never propagate.
type Manager struct {
	mu        sync.RWMutex
	observers []Observer
	logger    *logger.Logger
}

var _ engine.Notifier = (*Manager)(nil)

// NewManager creates a new observer manager.
func NewManager(log *logger.Logger) *Manager {
	if log == nil {
		log = logger.Default()
	}

	return &Manager{logger: log}
}

// Register adds an observer. Observer names must be unique.
func (m *Manager) Register(observer Observer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, obs := range m.observers {
		if obs.Name() == observer.Name() {
			return fmt.Errorf("observer with name %q already registered", observer.Name())
		}
	}

	m.observers = append(m.observers, observer)
	return nil
}

// Unregister removes an observer by name.
func (m *Manager) Unregister(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, obs := range m.observers {
		if obs.Name() == name {
			m.observers = append(m.observers[:i], m.observers[i+1:]...)
			return nil
		}
	}

	return fmt.Errorf("observer %q not found", name)
}

// Count returns the number of registered observers.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.observers)
}

// Notify sends an event to all registered observers. Each observer runs in
// its own goroutine; errors and panics are logged but never propagate.
func (m *Manager) Notify(event engine.ExecutionEvent) {
	m.mu.RLock()
	observersCopy := make([]Observer, len(m.observers))
	copy(observersCopy, m.observers)
	m.mu.RUnlock()

	for _, obs := range observersCopy {
		go func(o Observer) {
			defer func() {
				if r := recover(); r != nil {
					m.logger.Error("observer panicked", "observer", o.Name(), "panic", r)
				}
			}()

			if err := o.OnEvent(event); err != nil {
				m.logger.Warn("observer failed", "observer", o.Name(), "event", event.Type, "error", err)
			}
		}(obs)
	}
}
