package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	profilesvc "github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/services/profiles"
	"github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/transport/http/dto"
	httperrors "github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/transport/http/errors"
)

type AdminHandler struct {
	service *profilesvc.Service
}

func NewAdminHandler(service *profilesvc.Service) *AdminHandler {
	return &AdminHandler{service: service}
}

func (h *AdminHandler) Verify(w http.ResponseWriter, r *http.Request) {
	h.setVerified(w, r, true, "user verified successfully")
}

func (h *AdminHandler) Unverify(w http.ResponseWriter, r *http.Request) {
	h.setVerified(w, r, false, "user verification removed successfully")
}

func (h *AdminHandler) setVerified(w http.ResponseWriter, r *http.Request, verified bool, message string) {
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	username := chi.URLParam(r, "username")

	var err error
	if verified {
		err = h.service.Verify(r.Context(), username)
	} else {
		err = h.service.Unverify(r.Context(), username)
	}
	if err != nil {
		switch {
		case errors.Is(err, profilesvc.ErrNotFound):
			writeNotFound(w, "NOT_FOUND", "profile not found")
		case errors.Is(err, profilesvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", err.Error())
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to update verification status")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MessageResponse{Message: message})
}
