package task

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// State constants for statekit integration.
// These must remain as untyped string constants for statekit.StateID compatibility.
// Values are kept in sync with the Status constants in task.go.
const (
	StatePending   = "pending"
	StateApplied   = "applied"
	StateCommitted = "committed"
	StateUndone    = "undone"
)

// init validates at startup that FSM state constants match Status values.
// This ensures the FSM and value object stay in sync.
func init() {
	stateMap := map[string]Status{
		StatePending:   StatusPending,
		StateApplied:   StatusApplied,
		StateCommitted: StatusCommitted,
		StateUndone:    StatusUndone,
	}

	for fsmState, status := range stateMap {
		if fsmState != string(status) {
			panic(fmt.Sprintf("FSM state %q does not match Status %q - constants are out of sync", fsmState, status))
		}
	}
}

// MachineContext carries state data.
type MachineContext struct {
	TaskID string
	Guard  func(taskID string, event string) bool
}

// StateMachine enforces the task lifecycle.
type StateMachine struct {
	taskID      string
	interpreter *statekit.Interpreter[MachineContext]
}

// NewStateMachine builds a lifecycle machine positioned at initialState.
// The guard is consulted before commit and undo; nil means always allow.
func NewStateMachine(initialState string, taskID string, guard func(string, string) bool) (*StateMachine, error) {
	if guard == nil {
		guard = func(string, string) bool { return true }
	}

	builder := statekit.NewMachine[MachineContext]("task-lifecycle").
		WithInitial(statekit.StateID(initialState)).
		WithContext(MachineContext{
			TaskID: taskID,
			Guard:  guard,
		}).
		WithGuard("lifecycleGuard", func(ctx MachineContext, e statekit.Event) bool {
			return ctx.Guard(ctx.TaskID, string(e.Type))
		})

	builder.State(StatePending).
		On("apply").Target(StateApplied).
		Done()

	// Applying again stays in applied; commit and undo need the guard's
	// blessing because both have already-performed side effects behind them.
	builder.State(StateApplied).
		On("apply").Target(StateApplied).
		On("commit").Target(StateCommitted).Guard("lifecycleGuard").
		On("undo").Target(StateUndone).Guard("lifecycleGuard").
		Done()

	// Committed and undone tasks reopen when new operations arrive.
	builder.State(StateCommitted).
		On("apply").Target(StateApplied).
		Done()

	builder.State(StateUndone).
		On("apply").Target(StateApplied).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build state machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &StateMachine{taskID: taskID, interpreter: interpreter}, nil
}

// Transition attempts to move the task to a new state.
func (sm *StateMachine) Transition(event string) error {
	current := sm.CurrentStatus()
	if !current.CanTransitionWith(event) {
		return &TransitionError{TaskID: sm.taskID, From: current, Event: event}
	}

	before := sm.Current()
	sm.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	after := sm.Current()

	// Self-transitions legitimately land on the same state; anything else
	// that did not move was stopped by a guard.
	if before == after && !current.transitionsToSelf(event) {
		return &TransitionError{TaskID: sm.taskID, From: current, Event: event}
	}
	return nil
}

func (sm *StateMachine) Current() string {
	return string(sm.interpreter.State().Value)
}

// CurrentStatus returns the current state as a Status value object.
func (sm *StateMachine) CurrentStatus() Status {
	return Status(sm.Current())
}

// CanTransition checks if the given event is valid for the current state.
// This delegates to the Status value object for consistency.
func (sm *StateMachine) CanTransition(event string) bool {
	return sm.CurrentStatus().CanTransitionWith(event)
}

// ValidEvents returns the valid events for the current state.
// This delegates to the Status value object for consistency.
func (sm *StateMachine) ValidEvents() []string {
	return sm.CurrentStatus().ValidEvents()
}
