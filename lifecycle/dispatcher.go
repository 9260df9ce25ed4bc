package lifecycle

import (
	"context"
	"time"

	"github.com/Miles0sage/trigger-engine/registry"
)

// Logger is the minimal structured logging surface the dispatcher needs.
// Defined locally (rather than imported) so this package has no dependency
// on the root trigger package; any trigger.Logger satisfies it structurally.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Debug(msg string, args ...any)
}

// Executable is the view of a registered trigger the dispatcher needs to
// run it: resolved out of registry.Trigger.Raw by the caller's Resolve
// function, keeping this package decoupled from the root Trigger type.
type Executable struct {
	ID            string
	EventType     string
	Condition     func(data any) bool
	Actions       []func(ctx context.Context, data any) error
	ActionTimeout time.Duration
}

// Resolve converts a registry.Trigger's opaque Raw payload into an
// Executable. Supplied by the caller (the root package) at Dispatcher
// construction time.
type Resolve func(raw any) Executable

// Dispatcher runs priority-ordered trigger snapshots in background
// goroutines under a global concurrency ceiling, isolating predicate and
// action faults so neither stops sibling actions, sibling triggers, nor
// other dispatches.
type Dispatcher struct {
	limiter *Limiter
	logger  Logger
	resolve Resolve
}

// NewDispatcher builds a Dispatcher bounded by limiter, logging through
// logger, and resolving registry.Trigger.Raw values via resolve.
func NewDispatcher(limiter *Limiter, logger Logger, resolve Resolve) *Dispatcher {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Dispatcher{limiter: limiter, logger: logger, resolve: resolve}
}

// Dispatch schedules a background execution of snapshot against data and
// returns immediately; it never waits for the limiter or for any trigger to
// finish. snapshot is expected to already be in dispatch order (the
// registry package guarantees this).
func (d *Dispatcher) Dispatch(eventType string, snapshot []registry.Trigger, data any) {
	if len(snapshot) == 0 {
		return
	}
	go d.run(eventType, snapshot, data)
}

func (d *Dispatcher) run(eventType string, snapshot []registry.Trigger, data any) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("dispatch task panicked", "eventType", eventType, "panic", r)
		}
	}()

	ctx := context.Background()
	release, err := d.limiter.Acquire(ctx)
	if err != nil {
		d.logger.Error("dispatch admission failed", "eventType", eventType, "error", err)
		return
	}
	defer release()

	for _, rt := range snapshot {
		d.runTrigger(ctx, rt, data)
	}
}

func (d *Dispatcher) runTrigger(ctx context.Context, rt registry.Trigger, data any) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("trigger execution panicked", "triggerID", rt.ID, "panic", r)
		}
	}()

	ex := d.resolve(rt.Raw)

	pass, err := runCondition(ex.Condition, data)
	if err != nil {
		d.logger.Error("predicate fault", "triggerID", ex.ID, "eventType", ex.EventType, "error", err)
		return
	}
	if !pass {
		d.logger.Debug("trigger skipped by condition", "triggerID", ex.ID, "eventType", ex.EventType)
		return
	}

	for i, action := range ex.Actions {
		actionCtx := ctx
		var cancel context.CancelFunc
		if ex.ActionTimeout > 0 {
			actionCtx, cancel = context.WithTimeout(ctx, ex.ActionTimeout)
		}
		err := runAction(actionCtx, action, data)
		if cancel != nil {
			cancel()
		}
		if err != nil {
			d.logger.Error("action fault", "triggerID", ex.ID, "eventType", ex.EventType, "actionIndex", i, "error", err)
		}
	}
}

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Debug(string, ...any) {}
