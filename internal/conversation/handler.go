package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/booking"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/pkg/logging"
)

// ChatService is the turn API used by the HTTP and WebSocket transports.
type ChatService interface {
	StartSession(ctx context.Context) (*Reply, error)
	ProcessMessage(ctx context.Context, sessionID, text string) (*Reply, error)
	Reset(ctx context.Context, sessionID string) (*Reply, error)
	State(ctx context.Context, sessionID string) (*booking.Context, error)
}

// MessageRequest is the body of POST /chat/sessions/{sessionID}/messages.
type MessageRequest struct {
	Message string `json:"message"`
}

// Handler wires HTTP requests to the conversation service.
type Handler struct {
	service ChatService
	logger  *logging.Logger
}

// NewHandler creates a conversation handler.
func NewHandler(service ChatService, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Routes mounts the chat endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/chat/sessions", h.Start)
	r.Get("/chat/sessions/{sessionID}", h.State)
	r.Delete("/chat/sessions/{sessionID}", h.Reset)
	r.Post("/chat/sessions/{sessionID}/messages", h.Message)
}

// Start handles POST /chat/sessions.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.StartSession(r.Context())
	if err != nil {
		h.logger.Error("failed to start session", "error", err)
		http.Error(w, "Failed to start session", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusCreated, resp)
}

// Message handles POST /chat/sessions/{sessionID}/messages.
func (h *Handler) Message(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode message request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.ProcessMessage(r.Context(), chi.URLParam(r, "sessionID"), req.Message)
	if err != nil {
		h.writeError(w, "failed to process message", err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// State handles GET /chat/sessions/{sessionID}.
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	bc, err := h.service.State(r.Context(), sessionID)
	if err != nil {
		h.writeError(w, "failed to load session", err)
		return
	}
	h.writeJSON(w, http.StatusOK, Reply{SessionID: sessionID, Step: bc.Step, Context: bc})
}

// Reset handles DELETE /chat/sessions/{sessionID}.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Reset(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, "failed to reset session", err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		http.Error(w, "Session not found", http.StatusNotFound)
	case errors.Is(err, ErrEmptyMessage):
		http.Error(w, "Message is required", http.StatusBadRequest)
	default:
		h.logger.Error(msg, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
