package ws

import (
	"context"
	"net/http"

	"github.com/HerbHall/pollnow/internal/auth"
	"github.com/HerbHall/pollnow/internal/pulse"
	"github.com/HerbHall/pollnow/pkg/plugin"
	"github.com/coder/websocket"
	"go.uber.org/zap"
)

// TokenValidator validates access tokens passed on the query string.
type TokenValidator interface {
	ValidateAccessToken(token string) (*auth.Claims, error)
}

// Handler provides the WebSocket endpoint for live Execute now updates.
type Handler struct {
	hub    *Hub
	tokens TokenValidator
	logger *zap.Logger
	unsubs []func()
}

// Compile-time check that Handler implements the server interface.
var _ interface {
	RegisterRoutes(mux *http.ServeMux)
} = (*Handler)(nil)

// NewHandler creates a WebSocket handler and subscribes to execute events.
// A nil tokens validator accepts unauthenticated clients.
func NewHandler(tokens TokenValidator, bus plugin.Subscriber, logger *zap.Logger) *Handler {
	h := &Handler{
		hub:    NewHub(logger),
		tokens: tokens,
		logger: logger,
	}
	h.subscribeToEvents(bus)
	return h
}

// RegisterRoutes registers WebSocket routes on the server mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/ws/execute", h.handleExecuteStream)
}

// Close detaches the handler from the event bus.
func (h *Handler) Close() {
	for _, unsub := range h.unsubs {
		unsub()
	}
	h.unsubs = nil
}

func (h *Handler) handleExecuteStream(w http.ResponseWriter, r *http.Request) {
	types, err := parseTypes(r.URL.Query().Get("types"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user := "anonymous"
	if h.tokens != nil {
		// Browsers cannot set headers on the WebSocket handshake.
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "missing token parameter", http.StatusUnauthorized)
			return
		}
		claims, err := h.tokens.ValidateAccessToken(token)
		if err != nil {
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}
		user = claims.Username
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Error("websocket accept failed", zap.Error(err))
		return
	}

	client := &Client{
		conn:   conn,
		user:   user,
		types:  types,
		send:   make(chan Message, sendBuffer),
		logger: h.logger,
	}
	h.hub.Register(client)

	ctx := r.Context()
	done := make(chan struct{})
	go func() {
		client.writePump(ctx)
		close(done)
	}()

	client.readPump(ctx)

	h.hub.Unregister(client)
	conn.Close(websocket.StatusNormalClosure, "")
	<-done
}

func (h *Handler) subscribeToEvents(bus plugin.Subscriber) {
	if bus == nil {
		return
	}

	h.unsubs = append(h.unsubs, bus.Subscribe(pulse.TopicExecuteRequested, func(_ context.Context, event plugin.Event) {
		payload, ok := event.Payload.(pulse.ExecuteRequestedEvent)
		if !ok {
			return
		}
		h.hub.Broadcast(Message{
			Type:      MessageExecuteRequested,
			Timestamp: event.Timestamp,
			Data:      payload,
		})
	}))

	h.unsubs = append(h.unsubs, bus.Subscribe(pulse.TopicExecuteCompleted, func(_ context.Context, event plugin.Event) {
		payload, ok := event.Payload.(pulse.ExecuteCompletedEvent)
		if !ok {
			return
		}
		h.hub.Broadcast(Message{
			Type:      MessageExecuteCompleted,
			Timestamp: event.Timestamp,
			Data:      payload,
		})
	}))

	h.logger.Info("subscribed to execute events for WebSocket broadcasting")
}
