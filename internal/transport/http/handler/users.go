package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rentpal/rentpal-api/internal/application/auth"
	"github.com/rentpal/rentpal-api/internal/pkg/validate"
	"github.com/rentpal/rentpal-api/internal/transport/http/middleware"
)

// UserHandler handles the authenticated user endpoints.
type UserHandler struct {
	svc auth.Service
}

func NewUserHandler(svc auth.Service) *UserHandler { return &UserHandler{svc: svc} }

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.SubjectFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	u, err := h.svc.CurrentUser(r.Context(), email)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

type updatePhoneRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required"`
}

// UpdatePhone completes a federated signup whose provider profile carried no
// phone number.
func (h *UserHandler) UpdatePhone(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.SubjectFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req updatePhoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.svc.CompletePhoneNumber(r.Context(), email, req.PhoneNumber); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "phone number updated"})
}
