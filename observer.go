// Package trigger: Observer pattern for diagnostic pass-through. Every Emit
// is republished as a CloudEvent to zero or more registered Observers. This
// is purely observational — an Observer failure never affects dispatch.
package trigger

import (
	"context"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
)

// Observer receives a CloudEvent notification for every Emit call, in
// addition to whatever the matching triggers themselves do.
type Observer interface {
	// OnEvent is called synchronously from Emit. Observers should return
	// quickly; a panic or error here is recovered and logged exactly like
	// an action fault, and never stops other observers or the caller.
	OnEvent(ctx context.Context, event cloudevents.Event) error

	// ObserverID uniquely identifies this observer for registration and
	// logging.
	ObserverID() string
}

// Subject is implemented by Engine; split out as an interface so tests can
// substitute a fake.
type Subject interface {
	RegisterObserver(observer Observer) error
	UnregisterObserver(observer Observer) error
	NotifyObservers(ctx context.Context, event cloudevents.Event) error
	GetObservers() []ObserverInfo
}

// ObserverInfo describes a registered observer for introspection.
type ObserverInfo struct {
	ID           string    `json:"id"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// FunctionalObserver adapts a plain function to the Observer interface.
type FunctionalObserver struct {
	id      string
	handler func(ctx context.Context, event cloudevents.Event) error
}

// NewFunctionalObserver is a convenience constructor for simple observers
// that don't need their own type.
func NewFunctionalObserver(id string, handler func(ctx context.Context, event cloudevents.Event) error) Observer {
	return &FunctionalObserver{id: id, handler: handler}
}

func (f *FunctionalObserver) OnEvent(ctx context.Context, event cloudevents.Event) error {
	return f.handler(ctx, event)
}

func (f *FunctionalObserver) ObserverID() string {
	return f.id
}
