package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/messagely/apiserver/internal/authz"
	"github.com/messagely/apiserver/internal/services"
	"github.com/rs/zerolog"
)

// MessageHandler serves /messages. Every route requires auth.
type MessageHandler struct {
	messages *services.MessageService
}

func NewMessageHandler(messages *services.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// MessageRouter registers message routes on the given router.
func MessageRouter(r chi.Router, h *MessageHandler, authMiddleware func(http.Handler) http.Handler, log zerolog.Logger) {
	r.Use(authMiddleware)
	r.Post("/", handle(log, h.Create))
	r.Get("/{id}", handle(log, h.Get))
	r.Post("/{id}/read", handle(log, h.MarkRead))
}

type CreateMessageRequest struct {
	ToUsername string `json:"to_username" validate:"required"`
	Body       string `json:"body" validate:"required"`
}

type MessageResponse struct {
	Message any `json:"message"`
}

func (h *MessageHandler) Get(w http.ResponseWriter, r *http.Request) error {
	caller, ok := identityFromContext(r.Context())
	if !ok {
		return authz.ErrUnauthorized
	}
	id, err := parseMessageID(r)
	if err != nil {
		return err
	}

	msg, err := h.messages.Get(r.Context(), caller, id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: msg})
	return nil
}

func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) error {
	caller, ok := identityFromContext(r.Context())
	if !ok {
		return authz.ErrUnauthorized
	}
	var req CreateMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	msg, err := h.messages.Create(r.Context(), caller, services.NewMessage{
		ToUsername: req.ToUsername,
		Body:       req.Body,
	})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: msg})
	return nil
}

func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) error {
	caller, ok := identityFromContext(r.Context())
	if !ok {
		return authz.ErrUnauthorized
	}
	id, err := parseMessageID(r)
	if err != nil {
		return err
	}

	receipt, err := h.messages.MarkRead(r.Context(), caller, id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: receipt})
	return nil
}
