package status

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/matheus3301/tsched/internal/bus"
)

// State is the client's session state.
type State string

const (
	Booting   State = "BOOTING"
	SignedOut State = "SIGNED_OUT"
	SigningIn State = "SIGNING_IN"
	Syncing   State = "SYNCING"
	Ready     State = "READY"
	Offline   State = "OFFLINE"
	Error     State = "ERROR"
)

// ErrInvalidTransition is wrapped by Transition when the move is not allowed.
var ErrInvalidTransition = errors.New("invalid status transition")

var validTransitions = map[State][]State{
	Booting:   {SignedOut, Syncing, Error},
	SignedOut: {SigningIn, Error},
	SigningIn: {Syncing, SignedOut, Error},
	Syncing:   {Ready, Offline, SignedOut, Error},
	Ready:     {Syncing, Offline, SignedOut, Error},
	Offline:   {Syncing, Ready, SignedOut, Error},
	Error:     {Booting},
}

// Label is the short form shown in the status bar.
func (s State) Label() string {
	switch s {
	case SignedOut:
		return "signed out"
	case SigningIn:
		return "signing in"
	case Syncing:
		return "syncing"
	case Ready:
		return "online"
	case Offline:
		return "offline"
	case Error:
		return "error"
	default:
		return "starting"
	}
}

// Machine tracks and enforces session state transitions.
type Machine struct {
	mu      sync.RWMutex
	current State
	bus     *bus.Bus
}

// NewMachine creates a machine in the Booting state.
func NewMachine(b *bus.Bus) *Machine {
	return &Machine{
		current: Booting,
		bus:     b,
	}
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Transition moves to a new state. Moving to the current state is a no-op.
func (m *Machine) Transition(to State) error {
	m.mu.Lock()
	from := m.current
	if from == to {
		m.mu.Unlock()
		return nil
	}
	if !slices.Contains(validTransitions[from], to) {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, to)
	}
	m.current = to
	m.mu.Unlock()

	m.bus.Emit(bus.KindStatusChanged, StatusChange{From: from, To: to})
	return nil
}

// StatusChange is the payload of session.status_changed events.
type StatusChange struct {
	From State
	To   State
}
