package server

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/avelin/comite/internal/events"
	"github.com/avelin/comite/pkg/logger"
)

// EventsWebsocketHandler pushes system events over a websocket. Same payload
// shape as the SSE stream, for clients that need bidirectional transport or
// proxies that buffer SSE.
type EventsWebsocketHandler struct {
	bus *events.Bus
	log zerolog.Logger
}

// NewEventsWebsocketHandler creates the websocket handler.
func NewEventsWebsocketHandler(bus *events.Bus, log zerolog.Logger) *EventsWebsocketHandler {
	return &EventsWebsocketHandler{
		bus: bus,
		log: logger.ForComponent(log, "events_ws"),
	}
}

// ServeHTTP handles GET /api/events/ws.
func (h *EventsWebsocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("Websocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream closed")

	subscribed := parseTypesFilter(r.URL.Query().Get("types"))
	h.log.Info().Int("types", len(subscribed)).Msg("Client connected to websocket event stream")

	eventChan := make(chan *events.Event, 100)
	handler := func(event *events.Event) {
		select {
		case eventChan <- event:
		default:
			h.log.Warn().Str("event_type", string(event.Type)).Msg("Websocket channel full, dropping event")
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

	ctx := r.Context()
	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			h.log.Info().Msg("Client disconnected from websocket event stream")
			return

		case event := <-eventChan:
			payload := map[string]any{
				"type":      string(event.Type),
				"module":    event.Module,
				"timestamp": event.Timestamp.Format(time.RFC3339),
				"data":      event.Data,
			}
			if err := wsjson.Write(ctx, conn, payload); err != nil {
				h.log.Debug().Err(err).Msg("Websocket write failed")
				return
			}

		case <-heartbeat.C:
			payload := map[string]any{
				"type":      "heartbeat",
				"timestamp": time.Now().Format(time.RFC3339),
			}
			if err := wsjson.Write(ctx, conn, payload); err != nil {
				return
			}
		}
	}
}
