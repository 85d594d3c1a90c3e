package conn

import (
	"testing"
	"time"

	"github.com/matheus3301/pawchat/internal/bus"
)

func TestInitialState(t *testing.T) {
	m := NewMachine(nil)
	if m.Current() != Connecting {
		t.Errorf("initial state = %s, want CONNECTING", m.Current())
	}
}

func TestValidTransitions(t *testing.T) {
	tests := []struct {
		walk []State
	}{
		{[]State{Open}},
		{[]State{Closed}},
		{[]State{Open, Closed}},
	}
	for _, tt := range tests {
		m := NewMachine(nil)
		for _, s := range tt.walk {
			if err := m.Transition(s); err != nil {
				t.Errorf("walk %v: transition to %s failed: %v", tt.walk, s, err)
			}
		}
	}
}

func TestClosedIsTerminal(t *testing.T) {
	m := NewMachine(nil)
	if err := m.Transition(Closed); err != nil {
		t.Fatal(err)
	}
	if err := m.Transition(Open); err == nil {
		t.Error("CLOSED -> OPEN should fail: no reconnection")
	}
	if err := m.Transition(Connecting); err == nil {
		t.Error("CLOSED -> CONNECTING should fail: no reconnection")
	}
}

func TestOpenCannotRegress(t *testing.T) {
	m := NewMachine(nil)
	if err := m.Transition(Open); err != nil {
		t.Fatal(err)
	}
	if err := m.Transition(Connecting); err == nil {
		t.Error("OPEN -> CONNECTING should fail")
	}
}

func TestTransitionEmitsEvent(t *testing.T) {
	b := bus.New()
	ch, unsub := b.Subscribe(bus.TopicConnState, 10)
	defer unsub()

	m := NewMachine(b)
	if err := m.Transition(Open); err != nil {
		t.Fatal(err)
	}

	select {
	case evt := <-ch:
		sc, ok := evt.Payload.(StateChange)
		if !ok {
			t.Fatalf("payload = %T, want StateChange", evt.Payload)
		}
		if sc.From != Connecting || sc.To != Open {
			t.Errorf("change = %+v", sc)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for state event")
	}
}
