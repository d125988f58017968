package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rentpal/rentpal-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// TokenEnvelope wraps responses that carry a bearer token.
type TokenEnvelope struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// RedirectEnvelope carries the provider authorization URL for a federated
// flow.
type RedirectEnvelope struct {
	URL string `json:"url"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// httpError maps domain sentinels to HTTP responses. Unclassified errors are
// logged server-side and returned as an opaque internal error so driver
// details never reach clients.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrBadRequest),
		errors.Is(err, domain.ErrInvalidPhoneNumber),
		errors.Is(err, domain.ErrPasswordMismatch),
		errors.Is(err, domain.ErrPasswordUnchanged),
		errors.Is(err, domain.ErrOTPInvalid),
		errors.Is(err, domain.ErrOTPExpired):
		writeError(w, http.StatusBadRequest, sentinelMessage(err))
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, sentinelMessage(err))
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, sentinelMessage(err))
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrEmailNotFound):
		writeError(w, http.StatusNotFound, sentinelMessage(err))
	case errors.Is(err, domain.ErrEmailExists),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrOTPAlreadyUsed):
		writeError(w, http.StatusConflict, sentinelMessage(err))
	case errors.Is(err, domain.ErrDelivery),
		errors.Is(err, domain.ErrOAuthExchange):
		writeError(w, http.StatusBadGateway, sentinelMessage(err))
	default:
		slog.Error("internal error", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// sentinelMessage strips wrapping context so clients see the stable sentinel
// text only.
func sentinelMessage(err error) string {
	for _, sentinel := range []error{
		domain.ErrInvalidCredentials, domain.ErrEmailExists, domain.ErrEmailNotFound,
		domain.ErrInvalidPhoneNumber, domain.ErrPasswordMismatch, domain.ErrPasswordUnchanged,
		domain.ErrInvalidToken, domain.ErrOTPInvalid, domain.ErrOTPExpired,
		domain.ErrOTPAlreadyUsed, domain.ErrDelivery, domain.ErrOAuthExchange,
		domain.ErrUnauthorized, domain.ErrForbidden, domain.ErrNotFound,
		domain.ErrConflict, domain.ErrBadRequest,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
