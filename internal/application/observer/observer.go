// Package observer provides execution event observation: a manager fans
// engine events out to registered observers without ever blocking or
// failing the execution that produced them.
package observer

import (
	"github.com/dagflow-io/dagflow/pkg/engine"
)

// Observer receives workflow execution events.
type Observer interface {
	// OnEvent is called for every execution event.
	OnEvent(event engine.ExecutionEvent) error

	// Name returns the observer's unique identifier.
	Name() string
}
