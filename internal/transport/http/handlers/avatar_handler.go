package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/services/auth"
	avatarsvc "github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/services/avatars"
	"github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/transport/http/dto"
	httperrors "github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/transport/http/errors"
)

type AvatarHandler struct {
	service *avatarsvc.Service
}

func NewAvatarHandler(service *avatarsvc.Service) *AvatarHandler {
	return &AvatarHandler{service: service}
}

func (h *AvatarHandler) Upload(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "AVATAR_SERVICE_UNAVAILABLE", "avatar service is unavailable")
		return
	}

	if r.ContentLength <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "request body is required")
		return
	}

	body := http.MaxBytesReader(w, r.Body, avatarsvc.MaxAvatarBytes)
	defer func() {
		_ = body.Close()
	}()

	err := h.service.Upload(r.Context(), identity.Email, body, r.ContentLength, r.Header.Get("Content-Type"))
	if err != nil {
		switch {
		case errors.Is(err, avatarsvc.ErrNotFound):
			writeNotFound(w, "NOT_FOUND", "profile not found")
		case errors.Is(err, avatarsvc.ErrUnsupportedFormat):
			httperrors.Write(w, http.StatusUnsupportedMediaType, httperrors.APIError{
				Code:    "UNSUPPORTED_FORMAT",
				Message: "avatar must be a jpeg, png or webp image",
			})
		case errors.Is(err, avatarsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", err.Error())
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to upload avatar")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MessageResponse{Message: "avatar uploaded successfully"})
}

func (h *AvatarHandler) URL(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "AVATAR_SERVICE_UNAVAILABLE", "avatar service is unavailable")
		return
	}

	url, err := h.service.URL(r.Context(), identity.Email)
	if err != nil {
		switch {
		case errors.Is(err, avatarsvc.ErrNotFound):
			writeNotFound(w, "NOT_FOUND", "profile not found")
		case errors.Is(err, avatarsvc.ErrNoAvatar):
			writeNotFound(w, "NO_AVATAR", "profile has no avatar")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to resolve avatar url")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.AvatarURLResponse{URL: url})
}
