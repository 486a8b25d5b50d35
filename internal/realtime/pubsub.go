package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/quizhub/quizctl/internal/model"
)

// Handler receives the raw payload of a published event
type Handler func(data json.RawMessage)

// HandlerID identifies a registered handler for unsubscription
type HandlerID int

type handlerEntry struct {
	id HandlerID
	fn Handler
}

// registry is an ordered publish/subscribe table keyed by event name.
// Handlers run synchronously in registration order; a panicking handler
// does not stop the ones registered after it.
type registry struct {
	mu       sync.Mutex
	handlers map[model.EventType][]handlerEntry
	nextID   HandlerID
	logger   *slog.Logger
}

func newRegistry(logger *slog.Logger) *registry {
	return &registry{
		handlers: make(map[model.EventType][]handlerEntry),
		nextID:   1,
		logger:   logger,
	}
}

func (r *registry) on(event model.EventType, fn Handler) HandlerID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.handlers[event] = append(r.handlers[event], handlerEntry{id: id, fn: fn})
	return id
}

// off removes a handler; removing an unknown id is a no-op
func (r *registry) off(event model.EventType, id HandlerID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.handlers[event]
	for i, e := range entries {
		if e.id == id {
			r.handlers[event] = append(entries[:i:i], entries[i+1:]...)
			return
		}
	}
}

func (r *registry) publish(event model.EventType, data json.RawMessage) {
	r.mu.Lock()
	entries := make([]handlerEntry, len(r.handlers[event]))
	copy(entries, r.handlers[event])
	r.mu.Unlock()

	for _, e := range entries {
		r.invoke(event, e, data)
	}
}

func (r *registry) invoke(event model.EventType, e handlerEntry, data json.RawMessage) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn("event handler panicked",
				slog.String("event", string(event)),
				slog.Any("panic", rec))
		}
	}()
	e.fn(data)
}
