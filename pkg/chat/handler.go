package chat

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
)

const maxRequestBody = 1 << 20

// Handler serves the chat proxy and its health check.
type Handler struct {
	provider Provider
	store    MemoryStore
	logger   *log.Logger
}

// NewHandler creates a handler. A nil logger discards output.
func NewHandler(provider Provider, store MemoryStore, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Handler{provider: provider, store: store, logger: logger}
}

// Register mounts POST /api/chat and GET /api/health.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/chat", h.handleChat)
	mux.HandleFunc("GET /api/health", h.handleHealth)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: ErrorInvalidRequest})
		return
	}
	if !h.provider.Status().HasKey {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: ErrorMissingKey})
		return
	}

	char, err := h.store.Advance(r.Context(), req.AgentID, req.Persona)
	if err != nil {
		h.logger.Printf("chat memory error: %v", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: ErrorChatFailed})
		return
	}

	text, err := h.provider.Generate(r.Context(), BuildPrompt(char, req.Messages))
	switch {
	case errors.Is(err, ErrMissingCredential):
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: ErrorMissingKey})
	case err != nil:
		h.logger.Printf("chat error: %v", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: ErrorChatFailed})
	default:
		writeJSON(w, http.StatusOK, Response{Text: text})
	}
}

type healthResponse struct {
	OK bool `json:"ok"`
	Status
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{OK: true, Status: h.provider.Status()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
