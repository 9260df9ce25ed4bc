package trigger

import "errors"

// Errors returned synchronously to callers. Faults that occur during
// dispatch (predicate and action failures) are never returned this way;
// they are contained and logged, see lifecycle.Dispatcher.
var (
	// ErrInvalidTrigger is returned by Register when a Trigger fails basic
	// validation: empty EventType or no Actions.
	ErrInvalidTrigger = errors.New("trigger: invalid trigger")

	// ErrEngineStopped is returned by Register and Emit once the engine has
	// been shut down via Close.
	ErrEngineStopped = errors.New("trigger: engine stopped")

	// ErrListenerLimitReached is returned by RegisterObserver once
	// MaxListeners ancillary observers are already registered.
	ErrListenerLimitReached = errors.New("trigger: observer limit reached")
)
