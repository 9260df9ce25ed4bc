package trigger

import (
	"context"
	"fmt"
	"time"
)

// Priority controls dispatch order within an event type's trigger bucket.
// Lower numeric value runs first.
type Priority int

// PriorityNormal is the zero value so a Trigger constructed without setting
// Priority defaults to normal, not high.
const (
	PriorityHigh   Priority = -1
	PriorityNormal Priority = 0
	PriorityLow    Priority = 1
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityNormal:
		return "normal"
	case PriorityLow:
		return "low"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// Condition is an optional, pure predicate evaluated against the event
// payload before a trigger's actions run. A Condition that panics or is
// omitted entirely is treated according to Trigger.Condition's doc.
type Condition func(data any) bool

// Action is a unit of work a trigger performs once its Condition (if any)
// passes. Actions within a trigger execute sequentially in declared order;
// a failing action does not stop its siblings.
type Action func(ctx context.Context, data any) error

// Trigger is a registered subscription: an event type, an optional
// predicate, and an ordered list of actions.
type Trigger struct {
	// ID uniquely identifies this trigger. Register assigns one
	// automatically when left blank.
	ID string

	// EventType is the event this trigger fires on. Required, non-empty.
	EventType string

	// Description is operator-facing free text; never interpreted.
	Description string

	// Priority determines dispatch order relative to other triggers on the
	// same EventType. Defaults to PriorityNormal.
	Priority Priority

	// Condition, if set, is evaluated before Actions run. A nil Condition
	// always passes. A Condition that panics is treated as returning false:
	// the panic is logged and the trigger is skipped.
	Condition Condition

	// Actions must be non-empty. They run in order; each is fault-isolated
	// from its siblings.
	Actions []Action

	// ActionTimeout optionally bounds each action's execution with a
	// derived context deadline. Zero disables the timeout, which is the
	// default and matches running actions to completion with no per-action
	// deadline.
	ActionTimeout time.Duration
}

// validate checks the registration-time invariants: non-empty EventType and
// at least one Action.
func (t Trigger) validate() error {
	if t.EventType == "" {
		return fmt.Errorf("%w: event type is empty", ErrInvalidTrigger)
	}
	if len(t.Actions) == 0 {
		return fmt.Errorf("%w: trigger %q has no actions", ErrInvalidTrigger, t.ID)
	}
	return nil
}
