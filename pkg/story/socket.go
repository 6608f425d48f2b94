package story

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Events.
const (
	EventStart    = "story-start"
	EventUpdate   = "update-scene"
	EventError    = "error-message"
	EventChoice   = "choice-selected"
	EventRestart  = "restart"
	writeDeadline = 5 * time.Second
)

// Envelope is one websocket frame.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ErrorMessage is the data of an error-message event.
type ErrorMessage struct {
	Message string `json:"message"`
}

// Handler upgrades connections and walks each client through the graph.
// Sessions are independent; the graph is read-only.
type Handler struct {
	graph    *Graph
	logger   *log.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a handler for graph.
func NewHandler(graph *Graph, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Handler{
		graph:  graph,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	start, _ := h.graph.Node(StartID)
	if err := send(conn, EventStart, start); err != nil {
		return
	}
	for {
		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Printf("story: read: %v", err)
			}
			return
		}
		if err := h.dispatch(conn, env); err != nil {
			return
		}
	}
}

func (h *Handler) dispatch(conn *websocket.Conn, env Envelope) error {
	switch env.Event {
	case EventChoice:
		var id string
		if err := json.Unmarshal(env.Data, &id); err != nil {
			return send(conn, EventError, ErrorMessage{Message: fmt.Sprintf("Unknown choice id: %s", env.Data)})
		}
		next, ok := h.graph.Node(id)
		if !ok {
			return send(conn, EventError, ErrorMessage{Message: "Unknown choice id: " + id})
		}
		return send(conn, EventUpdate, next)
	case EventRestart:
		start, _ := h.graph.Node(StartID)
		return send(conn, EventUpdate, start)
	default:
		return send(conn, EventError, ErrorMessage{Message: "Unknown event: " + env.Event})
	}
}

func send(conn *websocket.Conn, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	return conn.WriteJSON(Envelope{Event: event, Data: data})
}
