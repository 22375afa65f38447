package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/messagely/apiserver/internal/authz"
	"github.com/messagely/apiserver/internal/services"
	"github.com/messagely/apiserver/types"
	"github.com/rs/zerolog"
)

// UserHandler serves /users. Everything but the listing is restricted to
// the account owner.
type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func UserRouter(r chi.Router, h *UserHandler, authMiddleware func(http.Handler) http.Handler, log zerolog.Logger) {
	r.Use(authMiddleware)
	r.Get("/", handle(log, h.List))
	r.Route("/{username}", func(r chi.Router) {
		r.Get("/", handle(log, h.Get))
		r.Get("/to", handle(log, h.MessagesTo))
		r.Get("/from", handle(log, h.MessagesFrom))
	})
}

type UsersResponse struct {
	Users []types.UserProfile `json:"users"`
}

type UserResponse struct {
	User types.User `json:"user"`
}

type MessagesResponse struct {
	Messages any `json:"messages"`
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) error {
	users, err := h.users.All(r.Context())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, UsersResponse{Users: users})
	return nil
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) error {
	username, err := h.owner(r)
	if err != nil {
		return err
	}
	user, err := h.users.Get(r.Context(), username)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, UserResponse{User: user})
	return nil
}

func (h *UserHandler) MessagesTo(w http.ResponseWriter, r *http.Request) error {
	username, err := h.owner(r)
	if err != nil {
		return err
	}
	messages, err := h.users.MessagesTo(r.Context(), username)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, MessagesResponse{Messages: messages})
	return nil
}

func (h *UserHandler) MessagesFrom(w http.ResponseWriter, r *http.Request) error {
	username, err := h.owner(r)
	if err != nil {
		return err
	}
	messages, err := h.users.MessagesFrom(r.Context(), username)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, MessagesResponse{Messages: messages})
	return nil
}

// owner returns the {username} path value if it is the caller.
func (h *UserHandler) owner(r *http.Request) (string, error) {
	caller, ok := identityFromContext(r.Context())
	if !ok {
		return "", authz.ErrUnauthorized
	}
	username := chi.URLParam(r, "username")
	if err := authz.CanViewUser(caller, username); err != nil {
		return "", err
	}
	return username, nil
}
