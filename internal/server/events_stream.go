package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/avelin/comite/internal/events"
	"github.com/avelin/comite/pkg/logger"
)

// allEventTypes are the types forwarded when no filter is requested.
var allEventTypes = []events.EventType{
	events.ReportGenerated,
	events.ReportPersisted,
	events.ReevaluationCompleted,
	events.DossierCreated,
	events.DossierUpdated,
	events.DossierDeleted,
	events.BackupCompleted,
	events.MaintenanceCompleted,
	events.ErrorOccurred,
}

// EventsStreamHandler streams system events over Server-Sent Events.
type EventsStreamHandler struct {
	bus *events.Bus
	log zerolog.Logger
}

// NewEventsStreamHandler creates the SSE handler.
func NewEventsStreamHandler(bus *events.Bus, log zerolog.Logger) *EventsStreamHandler {
	return &EventsStreamHandler{
		bus: bus,
		log: logger.ForComponent(log, "events_stream"),
	}
}

// ServeHTTP handles GET /api/events/stream. The optional "types" query
// parameter is a comma-separated event type filter.
func (h *EventsStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	subscribed := parseTypesFilter(r.URL.Query().Get("types"))
	h.log.Info().Int("types", len(subscribed)).Msg("Client connected to event stream")

	eventChan := make(chan *events.Event, 100)
	handler := func(event *events.Event) {
		// Non-blocking send, drop when the client lags.
		select {
		case eventChan <- event:
		default:
			h.log.Warn().Str("event_type", string(event.Type)).Msg("Event channel full, dropping event")
		}
	}
	unsubscribes := make([]func(), 0, len(subscribed))
	for _, eventType := range subscribed {
		unsubscribes = append(unsubscribes, h.bus.Subscribe(eventType, handler))
	}
	defer func() {
		for _, unsubscribe := range unsubscribes {
			unsubscribe()
		}
	}()

	done := r.Context().Done()

	fmt.Fprintf(w, "data: %s\n\n", h.encode(map[string]any{
		"type":    "connected",
		"message": "Connected to event stream",
	}))
	flusher.Flush()

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-done:
			h.log.Info().Msg("Client disconnected from event stream")
			return

		case event := <-eventChan:
			fmt.Fprintf(w, "data: %s\n\n", h.encode(map[string]any{
				"type":      string(event.Type),
				"module":    event.Module,
				"timestamp": event.Timestamp.Format(time.RFC3339),
				"data":      event.Data,
			}))
			flusher.Flush()

		case <-heartbeat.C:
			fmt.Fprintf(w, "data: %s\n\n", h.encode(map[string]any{
				"type":      "heartbeat",
				"timestamp": time.Now().Format(time.RFC3339),
			}))
			flusher.Flush()
		}
	}
}

func parseTypesFilter(raw string) []events.EventType {
	if raw == "" {
		return allEventTypes
	}
	var out []events.EventType
	for _, t := range strings.Split(raw, ",") {
		out = append(out, events.EventType(strings.TrimSpace(t)))
	}
	return out
}

func (h *EventsStreamHandler) encode(payload map[string]any) string {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to encode event")
		return "{}"
	}
	return string(data)
}
