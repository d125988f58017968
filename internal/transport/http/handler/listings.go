package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rentpal/rentpal-api/internal/application/auth"
	"github.com/rentpal/rentpal-api/internal/application/listing"
	"github.com/rentpal/rentpal-api/internal/domain"
	"github.com/rentpal/rentpal-api/internal/pkg/validate"
	"github.com/rentpal/rentpal-api/internal/transport/http/middleware"
)

// maxPhotoSize bounds listing photo uploads to 10 MiB.
const maxPhotoSize = 10 << 20

// ListingHandler handles property-listing endpoints.
type ListingHandler struct {
	svc  listing.Service
	auth auth.Service
}

func NewListingHandler(svc listing.Service, authSvc auth.Service) *ListingHandler {
	return &ListingHandler{svc: svc, auth: authSvc}
}

// currentUser resolves the token subject stored by the auth middleware to a
// full user record.
func (h *ListingHandler) currentUser(r *http.Request) (*domain.User, error) {
	email, ok := middleware.SubjectFromContext(r.Context())
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return h.auth.CurrentUser(r.Context(), email)
}

func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	u, err := h.currentUser(r)
	if err != nil {
		httpError(w, err)
		return
	}
	var req domain.CreateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	l, err := h.svc.Create(r.Context(), u, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	listings, err := h.svc.List(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

func (h *ListingHandler) Save(w http.ResponseWriter, r *http.Request) {
	u, err := h.currentUser(r)
	if err != nil {
		httpError(w, err)
		return
	}
	if err := h.svc.Save(r.Context(), u, chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "listing saved"})
}

func (h *ListingHandler) ListSaved(w http.ResponseWriter, r *http.Request) {
	u, err := h.currentUser(r)
	if err != nil {
		httpError(w, err)
		return
	}
	listings, err := h.svc.ListSaved(r.Context(), u)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

func (h *ListingHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	u, err := h.currentUser(r)
	if err != nil {
		httpError(w, err)
		return
	}
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		writeError(w, http.StatusBadRequest, "photo file required")
		return
	}
	defer file.Close()

	key, err := h.svc.UploadPhoto(r.Context(), u, chi.URLParam(r, "id"), header.Filename, file)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"photo_key": key})
}

func (h *ListingHandler) PhotoURL(w http.ResponseWriter, r *http.Request) {
	url, err := h.svc.PhotoURL(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RedirectEnvelope{URL: url})
}
