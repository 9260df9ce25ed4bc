package trigger

import (
	"fmt"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
)

// CloudEvent is an alias for convenience at call sites.
type CloudEvent = cloudevents.Event

// NewCloudEvent builds a CloudEvent for the diagnostic observer
// pass-through: ID, Source, Type, Time, and SpecVersion are filled in; data is
// attached as JSON, and metadata becomes CloudEvents extension attributes.
func NewCloudEvent(eventType, source string, data any, metadata map[string]any) cloudevents.Event {
	event := cloudevents.NewEvent()

	event.SetID(generateEventID())
	event.SetSource(source)
	event.SetType(eventType)
	event.SetTime(time.Now())
	event.SetSpecVersion(cloudevents.VersionV1)

	if data != nil {
		_ = event.SetData(cloudevents.ApplicationJSON, data)
	}

	for key, value := range metadata {
		event.SetExtension(key, value)
	}

	return event
}

// EmitDiagnosticSchema identifies the payload shape used for the
// engine-lifecycle diagnostic event (engine stopped/config reloaded).
const EmitDiagnosticSchema = "triggerengine.lifecycle.v1"

// EngineLifecyclePayload is the structured payload for engine lifecycle
// diagnostic events (the engine publishes "stopped" on Close and
// "config_reloaded" on hot-reload), delivered to observers alongside the
// per-Emit pass-through events.
type EngineLifecyclePayload struct {
	Action    string         `json:"action"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewEngineLifecycleEvent builds the CloudEvent for an engine lifecycle
// transition (e.g. "started", "stopped", "config_reloaded").
func NewEngineLifecycleEvent(source, action string, metadata map[string]any) cloudevents.Event {
	payload := EngineLifecyclePayload{
		Action:    action,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}
	evt := cloudevents.NewEvent()
	evt.SetID(generateEventID())
	evt.SetSource(source)
	evt.SetType("com.triggerengine.engine." + action)
	evt.SetTime(payload.Timestamp)
	evt.SetSpecVersion(cloudevents.VersionV1)
	_ = evt.SetData(cloudevents.ApplicationJSON, payload)
	evt.SetExtension("payloadschema", EmitDiagnosticSchema)
	return evt
}

// generateEventID produces a time-ordered unique CloudEvent ID, falling
// back to UUIDv4 if UUIDv7 generation ever fails.
func generateEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return id.String()
}

// ValidateCloudEvent runs the CloudEvents SDK's structural validation.
func ValidateCloudEvent(event cloudevents.Event) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("cloudevent validation failed: %w", err)
	}
	return nil
}
