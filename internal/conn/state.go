package conn

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/matheus3301/pawchat/internal/bus"
)

// State represents the lifecycle of the dialog channel.
type State string

const (
	Connecting State = "CONNECTING"
	Open       State = "OPEN"
	Closed     State = "CLOSED"
)

// validTransitions defines allowed state transitions. Closed is terminal:
// the client never reconnects; a fresh session must be started instead.
var validTransitions = map[State][]State{
	Connecting: {Open, Closed},
	Open:       {Closed},
	Closed:     {},
}

// Machine tracks and enforces channel state transitions.
type Machine struct {
	mu      sync.RWMutex
	current State
	bus     *bus.Bus
}

// NewMachine creates a state machine starting in Connecting.
func NewMachine(b *bus.Bus) *Machine {
	return &Machine{
		current: Connecting,
		bus:     b,
	}
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Transition attempts to move to a new state. Returns an error if the
// transition is invalid.
func (m *Machine) Transition(to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	allowed := validTransitions[m.current]
	if !slices.Contains(allowed, to) {
		return fmt.Errorf("invalid transition from %s to %s", m.current, to)
	}
	from := m.current
	m.current = to
	if m.bus != nil {
		m.bus.Publish(bus.Event{
			Topic: bus.TopicConnState,
			At:    time.Now(),
			Payload: StateChange{
				From: from,
				To:   to,
			},
		})
	}
	return nil
}

// StateChange is the payload for conn.state events.
type StateChange struct {
	From State
	To   State
}
