package observer

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagflow-io/dagflow/pkg/engine"
)

type recordingObserver struct {
	name string

	mu     sync.Mutex
	events []engine.ExecutionEvent
	fail   bool
}

func (o *recordingObserver) Name() string { return o.name }

func (o *recordingObserver) OnEvent(event engine.ExecutionEvent) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
	if o.fail {
		panic("observer exploded")
	}
	return nil
}

func (o *recordingObserver) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.events)
}

func TestManager_RegisterUnregister(t *testing.T) {
	m := NewManager(nil)

	require.NoError(t, m.Register(&recordingObserver{name: "a"}))
	require.NoError(t, m.Register(&recordingObserver{name: "b"}))
	assert.Equal(t, 2, m.Count())

	assert.Error(t, m.Register(&recordingObserver{name: "a"}), "duplicate name rejected")

	require.NoError(t, m.Unregister("a"))
	assert.Equal(t, 1, m.Count())
	assert.Error(t, m.Unregister("ghost"))
}

func TestManager_NotifyFansOut(t *testing.T) {
	m := NewManager(nil)

	first := &recordingObserver{name: "first"}
	second := &recordingObserver{name: "second"}
	require.NoError(t, m.Register(first))
	require.NoError(t, m.Register(second))

	m.Notify(engine.ExecutionEvent{Type: engine.EventTypeExecutionStarted, ExecutionID: "e1"})

	require.Eventually(t, func() bool {
		return first.count() == 1 && second.count() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestManager_PanickingObserverDoesNotPropagate(t *testing.T) {
	m := NewManager(nil)

	bad := &recordingObserver{name: "bad", fail: true}
	good := &recordingObserver{name: "good"}
	require.NoError(t, m.Register(bad))
	require.NoError(t, m.Register(good))

	assert.NotPanics(t, func() {
		m.Notify(engine.ExecutionEvent{Type: engine.EventTypeNodeCompleted})
	})

	require.Eventually(t, func() bool {
		return good.count() == 1
	}, time.Second, 5*time.Millisecond)
}
