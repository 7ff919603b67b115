package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	authsvc "github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/services/auth"
	followsvc "github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/services/follows"
	"github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/transport/http/dto"
	httperrors "github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/transport/http/errors"
)

type FollowHandler struct {
	service *followsvc.Service
}

func NewFollowHandler(service *followsvc.Service) *FollowHandler {
	return &FollowHandler{service: service}
}

func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.requireDeps(w, r)
	if !ok {
		return
	}

	if err := h.service.Follow(r.Context(), identity.Email, chi.URLParam(r, "username")); err != nil {
		h.writeFollowError(w, err, "failed to follow user")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MessageResponse{Message: "user followed successfully"})
}

func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.requireDeps(w, r)
	if !ok {
		return
	}

	if err := h.service.Unfollow(r.Context(), identity.Email, chi.URLParam(r, "username")); err != nil {
		h.writeFollowError(w, err, "failed to unfollow user")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MessageResponse{Message: "user unfollowed successfully"})
}

func (h *FollowHandler) Followed(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.requireDeps(w, r)
	if !ok {
		return
	}

	usernames, err := h.service.Followed(r.Context(), identity.Email, chi.URLParam(r, "username"))
	if err != nil {
		h.writeFollowError(w, err, "failed to list followed users")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ConnectionsResponse{Usernames: usernames})
}

func (h *FollowHandler) Followers(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.requireDeps(w, r)
	if !ok {
		return
	}

	usernames, err := h.service.Followers(r.Context(), identity.Email, chi.URLParam(r, "username"))
	if err != nil {
		h.writeFollowError(w, err, "failed to list followers")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ConnectionsResponse{Usernames: usernames})
}

func (h *FollowHandler) FollowersWithTime(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.requireDeps(w, r)
	if !ok {
		return
	}

	records, err := h.service.FollowersWithTime(r.Context(), identity.Email, chi.URLParam(r, "username"))
	if err != nil {
		h.writeFollowError(w, err, "failed to list followers")
		return
	}

	resp := dto.FollowersWithTimeResponse{Followers: make([]dto.FollowerWithTimeResponse, 0, len(records))}
	for _, record := range records {
		resp.Followers = append(resp.Followers, dto.FollowerWithTimeResponse{
			Username:  record.Username,
			CreatedAt: record.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	httperrors.Write(w, http.StatusOK, resp)
}

func (h *FollowHandler) requireDeps(w http.ResponseWriter, r *http.Request) (authsvc.Identity, bool) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return authsvc.Identity{}, false
	}
	if h.service == nil {
		writeInternal(w, "FOLLOW_SERVICE_UNAVAILABLE", "follow service is unavailable")
		return authsvc.Identity{}, false
	}
	return identity, true
}

func (h *FollowHandler) writeFollowError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, followsvc.ErrNotFound):
		writeNotFound(w, "NOT_FOUND", "profile not found")
	case errors.Is(err, followsvc.ErrSelfFollow):
		writeConflict(w, "SELF_FOLLOW", "users cannot follow themselves")
	case errors.Is(err, followsvc.ErrAlreadyFollowing):
		writeConflict(w, "ALREADY_FOLLOWING", "user is already followed")
	case errors.Is(err, followsvc.ErrNotFollowing):
		writeConflict(w, "NOT_FOLLOWING", "user is not followed")
	case errors.Is(err, followsvc.ErrNotVisible):
		writeForbidden(w, "NOT_VISIBLE", "connections are only visible to mutual connections")
	default:
		writeInternal(w, "INTERNAL_ERROR", fallback)
	}
}
