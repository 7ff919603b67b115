package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	profilesvc "github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/services/profiles"
	"github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/transport/http/dto"
	httperrors "github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/transport/http/errors"
)

// UsersHandler serves the unrestricted read endpoints: lookups, listings and
// name search.
type UsersHandler struct {
	service *profilesvc.Service
}

func NewUsersHandler(service *profilesvc.Service) *UsersHandler {
	return &UsersHandler{service: service}
}

func (h *UsersHandler) Usernames(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	usernames, err := h.service.ListUsernames(r.Context())
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list usernames")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.UsernamesResponse{Usernames: usernames})
}

func (h *UsersHandler) All(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	records, err := h.service.ListAll(r.Context())
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list profiles")
		return
	}

	httperrors.Write(w, http.StatusOK, profilesResponse(records))
}

func (h *UsersHandler) Verified(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	records, err := h.service.ListVerified(r.Context())
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list verified profiles")
		return
	}

	httperrors.Write(w, http.StatusOK, profilesResponse(records))
}

func (h *UsersHandler) Search(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	name := r.URL.Query().Get("name")
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	records, err := h.service.SearchByName(r.Context(), name, offset, limit)
	if err != nil {
		if errors.Is(err, profilesvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "name query parameter is required")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to search profiles")
		return
	}

	httperrors.Write(w, http.StatusOK, profilesResponse(records))
}

func (h *UsersHandler) ByUsername(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	record, err := h.service.GetByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		if errors.Is(err, profilesvc.ErrNotFound) {
			writeNotFound(w, "NOT_FOUND", "profile not found")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to get profile")
		return
	}

	httperrors.Write(w, http.StatusOK, profileResponse(record))
}

func (h *UsersHandler) ByEmail(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	email := r.URL.Query().Get("email")
	if email == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "email query parameter is required")
		return
	}

	record, err := h.service.GetByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, profilesvc.ErrNotFound) {
			writeNotFound(w, "NOT_FOUND", "profile not found")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to get profile")
		return
	}

	httperrors.Write(w, http.StatusOK, profileResponse(record))
}
