// Package webchat serves the booking assistant over a WebSocket, with an
// HTTP fallback for clients that cannot hold a socket open.
package webchat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/websocket"

	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/booking"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/conversation"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/pkg/logging"
)

// Handler bridges widget connections to the chat service.
type Handler struct {
	service  conversation.ChatService
	logger   *logging.Logger
	widgetJS []byte
	now      func() time.Time
}

// InboundMessage is what the widget sends.
type InboundMessage struct {
	Type string `json:"type"` // "message", "reset", "ping"
	Text string `json:"text"`
}

// OutboundMessage is what we send to the widget.
type OutboundMessage struct {
	Type      string           `json:"type"` // "session", "message", "typing", "history", "pong", "error"
	Text      string           `json:"text,omitempty"`
	Role      string           `json:"role,omitempty"`
	SessionID string           `json:"session_id,omitempty"`
	Step      booking.Step     `json:"booking_step,omitempty"`
	Timestamp string           `json:"timestamp,omitempty"`
	Messages  []HistoryMessage `json:"messages,omitempty"`
}

// HistoryMessage is one prior turn replayed to a reconnecting widget.
type HistoryMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// NewHandler creates a web chat handler.
func NewHandler(service conversation.ChatService, widgetJS []byte, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger, widgetJS: widgetJS, now: time.Now}
}

// HandleWebSocket upgrades to WebSocket and runs one chat session per connection.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	ctx := r.Context()
	sessionID, greeting, history, err := h.attach(ctx, r.URL.Query().Get("session"))
	if err != nil {
		h.logger.Error("webchat: failed to open session", "error", err)
		_ = websocket.JSON.Send(conn, OutboundMessage{Type: "error", Text: "Unable to start a chat session."})
		return
	}

	_ = websocket.JSON.Send(conn, OutboundMessage{Type: "session", SessionID: sessionID})
	if len(history) > 0 {
		_ = websocket.JSON.Send(conn, OutboundMessage{Type: "history", Messages: history})
	}
	if greeting != nil {
		_ = websocket.JSON.Send(conn, h.assistant(greeting))
	}

	h.logger.Info("webchat: connection opened", "session_id", sessionID)
	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("webchat: connection closed", "session_id", sessionID, "error", err)
			return
		}

		switch msg.Type {
		case "ping":
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "pong"})
		case "reset":
			reply, err := h.service.Reset(ctx, sessionID)
			if err != nil {
				h.logger.Error("webchat: reset failed", "session_id", sessionID, "error", err)
				_ = websocket.JSON.Send(conn, OutboundMessage{Type: "error", Text: "Could not reset the conversation."})
				continue
			}
			_ = websocket.JSON.Send(conn, h.assistant(reply))
		case "message":
			if strings.TrimSpace(msg.Text) == "" {
				continue
			}
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "typing"})
			reply, err := h.service.ProcessMessage(ctx, sessionID, msg.Text)
			if err != nil {
				h.logger.Error("webchat: failed to process message", "session_id", sessionID, "error", err)
				_ = websocket.JSON.Send(conn, OutboundMessage{Type: "error", Text: "Sorry, something went wrong. Please try again."})
				continue
			}
			_ = websocket.JSON.Send(conn, h.assistant(reply))
		}
	}
}

// attach resumes sessionID when it is still known, otherwise starts a new
// session and returns its greeting.
func (h *Handler) attach(ctx context.Context, sessionID string) (string, *conversation.Reply, []HistoryMessage, error) {
	if sessionID != "" {
		bc, err := h.service.State(ctx, sessionID)
		if err == nil {
			return sessionID, nil, historyOf(bc), nil
		}
		if !errors.Is(err, conversation.ErrSessionNotFound) {
			return "", nil, nil, err
		}
	}
	reply, err := h.service.StartSession(ctx)
	if err != nil {
		return "", nil, nil, err
	}
	return reply.SessionID, reply, nil, nil
}

func (h *Handler) assistant(reply *conversation.Reply) OutboundMessage {
	return OutboundMessage{
		Type:      "message",
		Role:      "assistant",
		Text:      reply.Message,
		SessionID: reply.SessionID,
		Step:      reply.Step,
		Timestamp: h.now().UTC().Format(time.RFC3339),
	}
}

func historyOf(bc *booking.Context) []HistoryMessage {
	out := make([]HistoryMessage, 0, len(bc.History))
	for _, entry := range bc.History {
		switch {
		case strings.HasPrefix(entry, "User: "):
			out = append(out, HistoryMessage{Role: "user", Text: strings.TrimPrefix(entry, "User: ")})
		case strings.HasPrefix(entry, "Assistant: "):
			out = append(out, HistoryMessage{Role: "assistant", Text: strings.TrimPrefix(entry, "Assistant: ")})
		}
	}
	return out
}

// HandleMessage is the HTTP fallback for sending messages.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
		Text      string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}

	if req.SessionID == "" {
		started, err := h.service.StartSession(r.Context())
		if err != nil {
			h.logger.Error("webchat: failed to start session", "error", err)
			http.Error(w, "failed to start session", http.StatusInternalServerError)
			return
		}
		req.SessionID = started.SessionID
	}

	reply, err := h.service.ProcessMessage(r.Context(), req.SessionID, req.Text)
	switch {
	case errors.Is(err, conversation.ErrSessionNotFound):
		http.Error(w, "session not found", http.StatusNotFound)
		return
	case err != nil:
		h.logger.Error("webchat: failed to process message", "error", err)
		http.Error(w, "failed to process message", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.assistant(reply))
}

// HandleHistory returns chat history for a session.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	bc, err := h.service.State(r.Context(), sessionID)
	switch {
	case errors.Is(err, conversation.ErrSessionNotFound):
		http.Error(w, "session not found", http.StatusNotFound)
		return
	case err != nil:
		h.logger.Error("webchat: failed to load history", "error", err)
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"messages": historyOf(bc)})
}

// HandleWidgetJS serves the embeddable widget JavaScript.
func (h *Handler) HandleWidgetJS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	_, _ = w.Write(h.widgetJS)
}
