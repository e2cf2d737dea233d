package supervisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateMachine_InitialState(t *testing.T) {
	sm := NewStateMachine(&testLogger{})
	assert.Equal(t, StateStarting, sm.Current())
}

func TestStateMachine_FullLifecycle(t *testing.T) {
	sm := NewStateMachine(&testLogger{})

	require.NoError(t, sm.Transition(StateLaunched, "launch"))
	require.NoError(t, sm.Transition(StateSupervising, "supervise"))
	require.NoError(t, sm.Transition(StateTerminating, "signal"))
	require.NoError(t, sm.Transition(StateExited, "signal"))

	assert.Equal(t, StateExited, sm.Current())
	assert.Len(t, sm.History(), 4)
}

func TestStateMachine_FailedStartup(t *testing.T) {
	sm := NewStateMachine(&testLogger{})

	require.NoError(t, sm.Transition(StateExited, "launch-failed"))
	assert.Equal(t, StateExited, sm.Current())
}

func TestStateMachine_InvalidTransitions(t *testing.T) {
	tests := []struct {
		name string
		path []State
		next State
	}{
		{"starting cannot supervise", nil, StateSupervising},
		{"starting cannot terminate", nil, StateTerminating},
		{"launched cannot exit directly", []State{StateLaunched}, StateExited},
		{"supervising cannot restart", []State{StateLaunched, StateSupervising}, StateStarting},
		{"exited is terminal", []State{StateExited}, StateStarting},
		{"no restart loop after exit", []State{StateLaunched, StateSupervising, StateTerminating, StateExited}, StateLaunched},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := NewStateMachine(&testLogger{})
			for _, state := range tt.path {
				require.NoError(t, sm.Transition(state, "setup"))
			}

			assert.False(t, sm.CanTransition(tt.next))
			assert.Error(t, sm.Transition(tt.next, "test"))
		})
	}
}

func TestStateMachine_HistoryIsCopied(t *testing.T) {
	sm := NewStateMachine(&testLogger{})
	require.NoError(t, sm.Transition(StateLaunched, "launch"))

	history := sm.History()
	require.Len(t, history, 1)
	history[0].Operation = "mutated"

	assert.Equal(t, "launch", sm.History()[0].Operation)
}
