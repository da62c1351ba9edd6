package platform

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
)

// Observer receives platform events. Observers register with a Subject and
// are notified synchronously; they should return quickly to avoid blocking
// other observers. Events use the CloudEvents specification.
type Observer interface {
	// OnEvent is called for each event the observer subscribed to.
	OnEvent(ctx context.Context, event cloudevents.Event) error

	// ObserverID returns a unique identifier used for registration
	// tracking and debugging.
	ObserverID() string
}

// Subject is an event emitter observers can attach to. The registry and
// the configwatch module emit through a Subject when one is wired.
type Subject interface {
	// RegisterObserver adds an observer, optionally filtered to specific
	// event types. No types means all events.
	RegisterObserver(observer Observer, eventTypes ...string) error

	// UnregisterObserver removes an observer. Removing an observer that
	// was never registered is a no-op.
	UnregisterObserver(observer Observer) error

	// NotifyObservers delivers an event to every matching observer.
	// Observer errors are collected, not short-circuited: every observer
	// sees the event.
	NotifyObservers(ctx context.Context, event cloudevents.Event) error
}

// Event type constants emitted by the platform core, in CloudEvents
// reverse-domain notation.
const (
	EventTypeModuleRegistered   = "com.provenhq.platform.module.registered"
	EventTypeModuleFailed       = "com.provenhq.platform.module.failed"
	EventTypeBootstrapCompleted = "com.provenhq.platform.bootstrap.completed"
	EventTypeConfigChanged      = "com.provenhq.platform.config.changed"
)

const registryEventSource = "platform.registry"

// moduleEventData is the payload for module registration and failure events.
type moduleEventData struct {
	Module string `json:"module"`
	Phase  string `json:"phase,omitempty"`
	Error  string `json:"error,omitempty"`
}

// bootstrapEventData is the payload for bootstrap completion events.
type bootstrapEventData struct {
	Initialized int `json:"initialized"`
	Failed      int `json:"failed"`
}

// NewEvent builds a CloudEvent with the platform's conventions: a UUIDv7
// id for time-ordered uniqueness, the current time, and JSON-encoded data.
func NewEvent(eventType, source string, data any) cloudevents.Event {
	event := cloudevents.NewEvent()
	event.SetID(newEventID())
	event.SetSource(source)
	event.SetType(eventType)
	event.SetTime(time.Now())
	event.SetSpecVersion(cloudevents.VersionV1)
	if data != nil {
		_ = event.SetData(cloudevents.ApplicationJSON, data)
	}
	return event
}

func newEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Extremely unlikely; fall back to random v4.
		return uuid.NewString()
	}
	return id.String()
}

// Broker is an in-process Subject: a synchronous fan-out of events to
// registered observers with optional per-observer type filters. It is safe
// for concurrent use.
type Broker struct {
	mu        sync.RWMutex
	logger    Logger
	observers []brokerEntry
}

type brokerEntry struct {
	observer Observer
	types    map[string]struct{} // nil means all events
	added    time.Time
}

// NewBroker creates an empty broker logging through logger.
func NewBroker(logger Logger) *Broker {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Broker{logger: logger}
}

// RegisterObserver adds an observer, optionally filtered by event type.
// Registering the same observer id twice fails with
// ErrObserverAlreadyRegistered.
func (b *Broker) RegisterObserver(observer Observer, eventTypes ...string) error {
	if observer == nil {
		return ErrObserverNil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, entry := range b.observers {
		if entry.observer.ObserverID() == observer.ObserverID() {
			return fmt.Errorf("%w: %q", ErrObserverAlreadyRegistered, observer.ObserverID())
		}
	}
	var filter map[string]struct{}
	if len(eventTypes) > 0 {
		filter = make(map[string]struct{}, len(eventTypes))
		for _, t := range eventTypes {
			filter[t] = struct{}{}
		}
	}
	b.observers = append(b.observers, brokerEntry{observer: observer, types: filter, added: time.Now()})
	b.logger.Debug("Registered observer", "observer", observer.ObserverID(), "eventTypes", eventTypes)
	return nil
}

// UnregisterObserver removes the observer with the same id, if present.
func (b *Broker) UnregisterObserver(observer Observer) error {
	if observer == nil {
		return ErrObserverNil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, entry := range b.observers {
		if entry.observer.ObserverID() == observer.ObserverID() {
			b.observers = append(b.observers[:i], b.observers[i+1:]...)
			break
		}
	}
	return nil
}

// NotifyObservers delivers event to every observer whose filter matches.
// All observers are notified even when some fail; the returned error joins
// the individual failures.
func (b *Broker) NotifyObservers(ctx context.Context, event cloudevents.Event) error {
	b.mu.RLock()
	entries := make([]brokerEntry, len(b.observers))
	copy(entries, b.observers)
	b.mu.RUnlock()

	var errs []string
	for _, entry := range entries {
		if entry.types != nil {
			if _, match := entry.types[event.Type()]; !match {
				continue
			}
		}
		if err := entry.observer.OnEvent(ctx, event); err != nil {
			b.logger.Warn("Observer failed",
				"observer", entry.observer.ObserverID(), "type", event.Type(), "error", err)
			errs = append(errs, fmt.Sprintf("%s: %v", entry.observer.ObserverID(), err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("observer errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc struct {
	ID string
	Fn func(ctx context.Context, event cloudevents.Event) error
}

// OnEvent invokes the wrapped function.
func (o ObserverFunc) OnEvent(ctx context.Context, event cloudevents.Event) error {
	return o.Fn(ctx, event)
}

// ObserverID returns the adapter's id.
func (o ObserverFunc) ObserverID() string {
	return o.ID
}
