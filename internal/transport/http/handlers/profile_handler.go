package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/services/auth"
	profilesvc "github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/services/profiles"
	"github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/transport/http/dto"
	httperrors "github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/transport/http/errors"
)

// ProfileHandler serves the self-service profile endpoints. The caller's
// email always comes from the auth identity in the request context.
type ProfileHandler struct {
	service *profilesvc.Service
}

func NewProfileHandler(service *profilesvc.Service) *ProfileHandler {
	return &ProfileHandler{service: service}
}

func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	created, err := h.service.Create(r.Context(), identity.Email, in)
	if err != nil {
		switch {
		case errors.Is(err, profilesvc.ErrAlreadyExists):
			writeConflict(w, "ALREADY_EXISTS", "profile already exists")
		case errors.Is(err, profilesvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "profile validation failed")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to create profile")
		}
		return
	}

	httperrors.Write(w, http.StatusCreated, profileResponse(created))
}

func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	record, err := h.service.GetOwn(r.Context(), identity.Email)
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

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	updated, err := h.service.Update(r.Context(), identity.Email, in)
	if err != nil {
		switch {
		case errors.Is(err, profilesvc.ErrNotFound):
			writeNotFound(w, "NOT_FOUND", "profile not found")
		case errors.Is(err, profilesvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "profile validation failed")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to update profile")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, profileResponse(updated))
}

func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	removed, err := h.service.Delete(r.Context(), identity.Email)
	if err != nil {
		if errors.Is(err, profilesvc.ErrNotFound) {
			writeNotFound(w, "NOT_FOUND", "profile not found")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to delete profile")
		return
	}

	httperrors.Write(w, http.StatusOK, profileResponse(removed))
}

func (h *ProfileHandler) decodeInput(w http.ResponseWriter, r *http.Request) (profilesvc.ProfileInput, bool) {
	var req dto.ProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return profilesvc.ProfileInput{}, false
	}

	dateOfBirth, ok := parseDateOfBirth(req.DateOfBirth)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "date_of_birth must be YYYY-MM-DD")
		return profilesvc.ProfileInput{}, false
	}

	return profilesvc.ProfileInput{
		Name:        req.Name,
		Username:    req.Username,
		Surname:     req.Surname,
		Location:    req.Location,
		Description: req.Description,
		DateOfBirth: dateOfBirth,
		Interests:   req.Interests,
	}, true
}
