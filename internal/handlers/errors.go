package handlers

import (
	"errors"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/messagely/apiserver/internal/authz"
	"github.com/messagely/apiserver/internal/services"
	"github.com/messagely/apiserver/internal/store"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const errMessageInternal = "internal server error"

type ErrorBody struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// requestError is a client mistake detected before reaching a service.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(msg string) error {
	return &requestError{msg: msg}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorBody{Message: message, Status: status}})
}

// handlerFunc is an http.HandlerFunc that reports failure by returning it.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle turns a returned error into a JSON error response. 5xx errors are
// logged; unknown kinds render as a generic 500.
func handle(log zerolog.Logger, fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}
		status, message := classify(err)
		if status >= http.StatusInternalServerError {
			log.Error().Err(err).
				Str("request_id", chimw.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("request failed")
		}
		writeError(w, status, message)
	}
}

func classify(err error) (int, string) {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest, reqErr.msg
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, authz.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, bcrypt.ErrPasswordTooLong):
		return http.StatusBadRequest, "password is too long"
	case errors.Is(err, services.ErrBadCredentials):
		return http.StatusBadRequest, services.ErrBadCredentials.Error()
	case errors.Is(err, store.ErrDuplicateKey):
		return http.StatusConflict, "username already taken"
	case errors.Is(err, store.ErrForeignKeyViolation):
		return http.StatusBadRequest, "unknown recipient"
	case errors.Is(err, services.ErrMessageNotCreated):
		return http.StatusInternalServerError, services.ErrMessageNotCreated.Error()
	default:
		return http.StatusInternalServerError, errMessageInternal
	}
}
