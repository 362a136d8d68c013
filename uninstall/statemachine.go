// Package uninstall implements the Uninstall State Machine (spec.md
// §4.J): a small generic state-machine engine, generalized from the
// teacher's common/statemachine Builder/Rule/Callback pattern, plus
// the framework-wide DeregisterStep built on top of it.
package uninstall

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
)

// State is a named state in a state machine.
type State string

// Callback is invoked after a successful transition, outside the
// state machine's own lock, mirroring the Registry/Manager discipline
// of never calling back into user code while holding a lock.
type Callback func(from, to State)

// Rule describes the single allowed "from" state for a transition and
// the state it leads to. Each State may have at most one outbound Rule
// per event name; callers key rules by the event that triggers them.
type Rule struct {
	From State
	To   State
}

// Builder assembles a StateMachine, mirroring the teacher's fluent
// construction API.
type Builder struct {
	name     string
	current  State
	rules    map[string]*Rule
	callback Callback
}

// NewBuilder creates a new state machine builder.
func NewBuilder() *Builder {
	return &Builder{rules: make(map[string]*Rule)}
}

func (b *Builder) WithName(name string) *Builder {
	b.name = name
	return b
}

func (b *Builder) WithCurrentState(current State) *Builder {
	b.current = current
	return b
}

// AddRule registers a transition reachable via event, from Rule.From to Rule.To.
func (b *Builder) AddRule(event string, rule *Rule) *Builder {
	b.rules[event] = rule
	return b
}

func (b *Builder) WithTransitionCallback(callback Callback) *Builder {
	b.callback = callback
	return b
}

// Build checks that a current state was set and returns the assembled
// StateMachine. It does not check that rules reach or leave that state.
func (b *Builder) Build() (*StateMachine, error) {
	if b.current == "" {
		return nil, errors.New("state machine requires a current state")
	}
	return &StateMachine{
		name:     b.name,
		current:  b.current,
		rules:    b.rules,
		callback: b.callback,
	}, nil
}

// StateMachine is a tiny named-event transition engine: each call to
// Transition(event) checks whether the registered rule for that event
// applies from the current state, and if so moves to the rule's
// target state and fires the transition callback outside the lock.
type StateMachine struct {
	mu       sync.Mutex
	name     string
	current  State
	rules    map[string]*Rule
	callback Callback
}

// ErrInvalidTransition is returned when event does not apply from the
// machine's current state.
var ErrInvalidTransition = errors.New("invalid state transition")

// Transition applies event if its rule's From state matches Current.
func (m *StateMachine) Transition(event string) error {
	m.mu.Lock()
	rule, ok := m.rules[event]
	if !ok || rule.From != m.current {
		current := m.current
		m.mu.Unlock()
		return errors.Wrapf(ErrInvalidTransition, "%s: event %q from state %s", m.name, event, current)
	}
	from := m.current
	m.current = rule.To
	callback := m.callback
	m.mu.Unlock()

	if callback != nil {
		callback(from, rule.To)
	}
	return nil
}

// Current returns the machine's current state.
func (m *StateMachine) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *StateMachine) String() string {
	return fmt.Sprintf("%s[%s]", m.name, m.Current())
}
