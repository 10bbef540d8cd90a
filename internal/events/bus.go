package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/avelin/comite/pkg/logger"
)

// Handler receives emitted events. Handlers must not block; slow consumers
// should buffer on their side.
type Handler func(event *Event)

// Bus is the in-process pub/sub bus. Subscriptions are per event type.
type Bus struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[EventType][]subscription
	log      zerolog.Logger
}

type subscription struct {
	id      uint64
	handler Handler
}

// NewBus creates an event bus.
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		handlers: make(map[EventType][]subscription),
		log:      logger.ForComponent(log, "events"),
	}
}

// Subscribe registers a handler for one event type. The returned function
// removes the subscription; calling it more than once is harmless.
// Per-connection consumers (SSE, websocket) must unsubscribe on disconnect
// or the handler list grows for the life of the process.
func (b *Bus) Subscribe(eventType EventType, handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.handlers[eventType] = append(b.handlers[eventType], subscription{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.handlers[eventType]
		for i, s := range subs {
			if s.id == id {
				b.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Emit publishes an event to all handlers of its type.
func (b *Bus) Emit(eventType EventType, module string, data map[string]interface{}) {
	event := &Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
		Module:    module,
	}

	b.mu.RLock()
	subs := make([]subscription, len(b.handlers[eventType]))
	copy(subs, b.handlers[eventType])
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(event)
	}

	b.log.Debug().
		Str("event_type", string(eventType)).
		Str("module", module).
		Int("handlers", len(subs)).
		Msg("Event emitted")
}

// Publish adapts arbitrary payloads to the bus. The topic becomes the event
// type and the payload is flattened to a map through JSON.
func (b *Bus) Publish(topic string, payload any) {
	b.Emit(EventType(topic), "report", toMap(payload))
}

func toMap(payload any) map[string]interface{} {
	if payload == nil {
		return nil
	}
	if m, ok := payload.(map[string]interface{}); ok {
		return m
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	var out map[string]interface{}
	if err := json.Unmarshal(encoded, &out); err != nil {
		return nil
	}
	return out
}
