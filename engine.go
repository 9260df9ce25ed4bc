package trigger

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/Miles0sage/trigger-engine/config"
	"github.com/Miles0sage/trigger-engine/lifecycle"
	"github.com/Miles0sage/trigger-engine/registry"
)

// Stats summarizes the engine's current occupancy and load for
// introspection.
type Stats struct {
	TotalTriggers   int
	TriggersByEvent map[string]int
	ExecutingCount  int
}

// Engine is the public trigger engine facade: registry, dispatcher,
// diagnostic observer list, and configuration, wired together.
type Engine struct {
	cfg     config.EngineConfig
	logger  Logger
	source  string
	reg     *registry.Registry
	limiter *lifecycle.Limiter
	disp    *lifecycle.Dispatcher

	obsMu     sync.RWMutex
	observers []Observer
	obsInfo   map[string]ObserverInfo

	watchCancel context.CancelFunc
	closed      atomic.Bool
}

// NewEngine builds an Engine from cfg, logging through logger (a no-op
// logger is used if logger is nil).
func NewEngine(cfg config.EngineConfig, logger Logger) *Engine {
	if logger == nil {
		logger = nopLogger{}
	}
	if err := cfg.Validate(); err != nil {
		// NewEngine never returns an error; an invalid config falls back to
		// defaults so the engine is always usable, and the problem is
		// logged loudly instead.
		logger.Error("invalid engine config, falling back to defaults", "error", err)
		cfg = config.DefaultEngineConfig()
	}

	e := &Engine{
		cfg:     cfg,
		logger:  logger,
		source:  "com.triggerengine.engine",
		reg:     registry.New(),
		limiter: lifecycle.NewLimiter(cfg.MaxConcurrentExecutions),
		obsInfo: make(map[string]ObserverInfo),
	}
	e.disp = lifecycle.NewDispatcher(e.limiter, logger, e.resolve)
	return e
}

// notifyLifecycle republishes an engine lifecycle transition to observers,
// the same pass-through path Emit uses for ordinary events.
func (e *Engine) notifyLifecycle(ctx context.Context, action string, metadata map[string]any) {
	evt := NewEngineLifecycleEvent(e.source, action, metadata)
	if err := ValidateCloudEvent(evt); err != nil {
		e.logger.Error("invalid lifecycle event", "action", action, "error", err)
		return
	}
	if err := e.NotifyObservers(ctx, evt); err != nil {
		e.logger.Warn("lifecycle observer notification failed", "action", action, "error", err)
	}
}

// resolve converts a registry.Trigger.Raw value (always a Trigger, set by
// Register) into the lifecycle package's execution view.
func (e *Engine) resolve(raw any) lifecycle.Executable {
	t := raw.(Trigger)
	actions := make([]func(context.Context, any) error, len(t.Actions))
	for i, a := range t.Actions {
		actions[i] = func(ctx context.Context, data any) error { return a(ctx, data) }
	}
	var cond func(any) bool
	if t.Condition != nil {
		cond = func(data any) bool { return t.Condition(data) }
	}
	return lifecycle.Executable{
		ID:            t.ID,
		EventType:     t.EventType,
		Condition:     cond,
		Actions:       actions,
		ActionTimeout: t.ActionTimeout,
	}
}

// Register validates and adds t to the registry, assigning an id if t.ID is
// blank (prefixed with cfg.IDPrefix when set, otherwise the event type,
// always suffixed with the registry's own monotonic counter so auto-assigned
// ids stay unique no matter how many triggers share a prefix or event type).
// Returns ErrInvalidTrigger (wrapped) if t fails validation.
func (e *Engine) Register(t Trigger) (string, error) {
	if e.closed.Load() {
		return "", ErrEngineStopped
	}
	if err := t.validate(); err != nil {
		return "", err
	}
	id, err := e.reg.Register(registry.Trigger{
		ID:        t.ID,
		EventType: t.EventType,
		Priority:  int(t.Priority),
		IDPrefix:  e.cfg.IDPrefix,
		Raw:       t,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidTrigger, err)
	}
	e.logger.Info("trigger registered", "id", id, "eventType", t.EventType, "priority", t.Priority.String())
	return id, nil
}

// Unregister removes the trigger with the given id. Returns true if found.
func (e *Engine) Unregister(id string) bool {
	ok := e.reg.Unregister(id)
	if ok {
		e.logger.Info("trigger unregistered", "id", id)
	}
	return ok
}

// Emit takes a registry snapshot for eventType, republishes a diagnostic
// CloudEvent to any registered observers, and schedules asynchronous
// dispatch. It returns as soon as the background dispatch is scheduled; it
// never waits for trigger actions to complete. It returns ErrEngineStopped
// after Close, or ctx's error if ctx is already done before the synchronous
// observer notification; otherwise it returns nil.
func (e *Engine) Emit(ctx context.Context, eventType string, data any) error {
	if e.closed.Load() {
		return ErrEngineStopped
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	evt := NewCloudEvent(eventType, e.source, data, nil)
	if err := e.NotifyObservers(ctx, evt); err != nil {
		e.logger.Warn("observer notification failed", "eventType", eventType, "error", err)
	}

	snapshot := e.reg.Snapshot(eventType)
	if len(snapshot) == 0 {
		e.logger.Debug("emit: no triggers registered", "eventType", eventType)
		return nil
	}
	e.disp.Dispatch(eventType, snapshot, data)
	return nil
}

// Triggers returns the currently registered triggers, optionally filtered
// to the given event types. With no arguments it returns every trigger.
func (e *Engine) Triggers(eventType ...string) []Trigger {
	var snaps []registry.Trigger
	if len(eventType) == 0 {
		snaps = e.reg.Snapshot("")
	} else {
		for _, et := range eventType {
			snaps = append(snaps, e.reg.Snapshot(et)...)
		}
	}
	out := make([]Trigger, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, s.Raw.(Trigger))
	}
	return out
}

// TriggerCount returns how many triggers are registered, optionally scoped
// to the given event types.
func (e *Engine) TriggerCount(eventType ...string) int {
	if len(eventType) == 0 {
		return e.reg.Count("")
	}
	total := 0
	for _, et := range eventType {
		total += e.reg.Count(et)
	}
	return total
}

// ClearEvent removes every trigger for eventType, returning how many were
// removed.
func (e *Engine) ClearEvent(eventType string) int {
	n := e.reg.ClearEvent(eventType)
	e.logger.Info("event cleared", "eventType", eventType, "removed", n)
	return n
}

// ClearAll empties the registry.
func (e *Engine) ClearAll() {
	e.reg.ClearAll()
	e.logger.Info("registry cleared")
}

// Stats reports current registry occupancy and dispatch concurrency.
func (e *Engine) Stats() Stats {
	rs := e.reg.Stats()
	return Stats{
		TotalTriggers:   rs.TotalTriggers,
		TriggersByEvent: rs.TriggersByEvent,
		ExecutingCount:  e.limiter.InUse(),
	}
}

// RegisterObserver adds a diagnostic observer, up to MaxListeners.
func (e *Engine) RegisterObserver(o Observer) error {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()

	if len(e.observers) >= e.cfg.MaxListeners {
		return ErrListenerLimitReached
	}
	e.observers = append(e.observers, o)
	e.obsInfo[o.ObserverID()] = ObserverInfo{ID: o.ObserverID(), RegisteredAt: time.Now()}
	return nil
}

// UnregisterObserver removes a previously registered observer. Idempotent.
func (e *Engine) UnregisterObserver(o Observer) error {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()

	for i, existing := range e.observers {
		if existing.ObserverID() == o.ObserverID() {
			e.observers = append(e.observers[:i], e.observers[i+1:]...)
			delete(e.obsInfo, o.ObserverID())
			return nil
		}
	}
	return nil
}

// GetObservers returns metadata about currently registered observers.
func (e *Engine) GetObservers() []ObserverInfo {
	e.obsMu.RLock()
	defer e.obsMu.RUnlock()

	out := make([]ObserverInfo, 0, len(e.obsInfo))
	for _, info := range e.obsInfo {
		out = append(out, info)
	}
	return out
}

// NotifyObservers synchronously delivers event to every registered
// observer. A panicking or erroring observer is recovered, logged exactly
// like an action fault, and never stops the remaining observers.
func (e *Engine) NotifyObservers(ctx context.Context, event cloudevents.Event) error {
	e.obsMu.RLock()
	observers := make([]Observer, len(e.observers))
	copy(observers, e.observers)
	e.obsMu.RUnlock()

	for _, o := range observers {
		e.notifyOne(ctx, o, event)
	}
	return nil
}

func (e *Engine) notifyOne(ctx context.Context, o Observer, event cloudevents.Event) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("observer panicked", "observerID", o.ObserverID(), "panic", r)
		}
	}()
	if err := o.OnEvent(ctx, event); err != nil {
		e.logger.Error("observer fault", "observerID", o.ObserverID(), "error", err)
	}
}

// WatchConfig starts an fsnotify-backed watch on path, hot-reloading
// MaxConcurrentExecutions and MaxListeners as the file changes, until ctx is
// canceled or Close is called.
func (e *Engine) WatchConfig(ctx context.Context, path string) error {
	w, err := config.NewWatcher(path)
	if err != nil {
		return fmt.Errorf("watch config: %w", err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	e.watchCancel = cancel
	go w.Run(watchCtx)

	go func() {
		for {
			select {
			case <-watchCtx.Done():
				return
			case cfg := <-w.Changes:
				e.limiter.Resize(cfg.MaxConcurrentExecutions)
				e.cfg.MaxConcurrentExecutions = cfg.MaxConcurrentExecutions
				e.cfg.MaxListeners = cfg.MaxListeners
				e.logger.Info("engine config reloaded", "maxConcurrentExecutions", cfg.MaxConcurrentExecutions, "maxListeners", cfg.MaxListeners)
				e.notifyLifecycle(watchCtx, "config_reloaded", map[string]any{
					"maxConcurrentExecutions": cfg.MaxConcurrentExecutions,
					"maxListeners":            cfg.MaxListeners,
				})
			case err := <-w.Errors:
				e.logger.Error("config reload failed", "error", err)
			}
		}
	}()
	return nil
}

// Close stops any in-flight config watch, notifies observers that the engine
// is shutting down, and rejects subsequent Register and Emit calls with
// ErrEngineStopped. In-flight dispatch tasks are not waited on; Close only
// tears down the engine's own background goroutines and admission.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	if e.watchCancel != nil {
		e.watchCancel()
	}
	e.notifyLifecycle(context.Background(), "stopped", nil)
	return nil
}
