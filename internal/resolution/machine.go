// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package resolution

import (
	"sync"

	"github.com/jonboulle/clockwork"
)

// Observer is notified after every successful transition.
type Observer func(from, to State)

// Machine holds the single ResolutionState of a session. Transitions are the only mutations.
type Machine struct {
	clock clockwork.Clock

	mu        sync.Mutex
	state     State
	observers []Observer
}

// NewMachine returns a Machine in the Idle state.
func NewMachine(clock clockwork.Clock) *Machine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Machine{
		clock: clock,
		state: Idle{},
	}
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Busy reports whether a cycle is outstanding.
func (m *Machine) Busy() bool {
	return InProgress(m.State())
}

// Subscribe registers an observer. Observers are called synchronously in registration order.
func (m *Machine) Subscribe(observer Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, observer)
}

// Fire applies the event and returns the new state. On error the state is left unchanged.
func (m *Machine) Fire(e Event) (State, error) {
	m.mu.Lock()
	from := m.state
	to, err := Transition(from, e, m.clock.Now())
	if err != nil {
		m.mu.Unlock()
		return from, err
	}
	m.state = to
	observers := make([]Observer, len(m.observers))
	copy(observers, m.observers)
	m.mu.Unlock()

	for _, observer := range observers {
		observer(from, to)
	}
	return to, nil
}
