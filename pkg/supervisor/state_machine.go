package supervisor

import (
	"fmt"
	"sync"
	"time"

	"github.com/browser-tools/browserhost-go/pkg/errors"
	"github.com/browser-tools/browserhost-go/pkg/logging"
)

// State represents the supervisor lifecycle state
type State string

const (
	// StateStarting is the initial state before the browser is launched
	StateStarting State = "starting"

	// StateLaunched means the browser process is running, readiness unknown
	StateLaunched State = "launched"

	// StateSupervising means the supervisor is hosting the browser process.
	// Readiness polling is a sub-phase of this state and never blocks the
	// transition into the wait phase.
	StateSupervising State = "supervising"

	// StateTerminating means shutdown is in progress, entered either through
	// a termination signal or through the child exiting on its own
	StateTerminating State = "terminating"

	// StateExited is terminal. The supervisor never returns to starting:
	// this is a single-shot supervisor, not a restart loop.
	StateExited State = "exited"
)

// StateTransition records one transition with its trigger
type StateTransition struct {
	From      State
	To        State
	Operation string
	Timestamp time.Time
}

// StateMachine validates and records supervisor state transitions
type StateMachine struct {
	currentState     State
	transitions      []StateTransition
	validTransitions map[State][]State
	mutex            sync.RWMutex
	logger           logging.Logger
}

// NewStateMachine creates a supervisor state machine in the starting state
func NewStateMachine(logger logging.Logger) *StateMachine {
	sm := &StateMachine{
		currentState: StateStarting,
		transitions:  make([]StateTransition, 0),
		logger:       logger,
	}

	sm.validTransitions = map[State][]State{
		StateStarting: {
			StateLaunched, // launch success
			StateExited,   // resolution or launch failure
		},
		StateLaunched: {
			StateSupervising, // hosting begins
		},
		StateSupervising: {
			StateTerminating, // signal received or child exited
		},
		StateTerminating: {
			StateExited, // shutdown complete
		},
		StateExited: {},
	}

	return sm
}

// Current returns the current state (thread-safe)
func (sm *StateMachine) Current() State {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()
	return sm.currentState
}

// CanTransition checks whether a transition is valid (thread-safe)
func (sm *StateMachine) CanTransition(to State) bool {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()
	return sm.canTransitionUnsafe(to)
}

// Transition changes the state with validation (thread-safe)
func (sm *StateMachine) Transition(to State, operation string) error {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	if !sm.canTransitionUnsafe(to) {
		return errors.NewValidationError(
			fmt.Sprintf("invalid state transition from '%s' to '%s'", sm.currentState, to),
			nil,
		).WithContext("from_state", string(sm.currentState)).
			WithContext("to_state", string(to)).
			WithContext("operation", operation)
	}

	from := sm.currentState
	sm.transitions = append(sm.transitions, StateTransition{
		From:      from,
		To:        to,
		Operation: operation,
		Timestamp: time.Now(),
	})
	sm.currentState = to

	sm.logger.Infof("Supervisor state transition, %s->%s, operation: %s", from, to, operation)

	return nil
}

func (sm *StateMachine) canTransitionUnsafe(to State) bool {
	for _, validState := range sm.validTransitions[sm.currentState] {
		if validState == to {
			return true
		}
	}
	return false
}

// History returns a copy of the recorded transitions (thread-safe)
func (sm *StateMachine) History() []StateTransition {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()

	history := make([]StateTransition, len(sm.transitions))
	copy(history, sm.transitions)
	return history
}
