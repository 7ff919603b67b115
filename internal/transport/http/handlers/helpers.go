package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	pgrepo "github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/repo/postgres"
	"github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/transport/http/dto"
	httperrors "github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/transport/http/errors"
)

const dateLayout = "2006-01-02"

func decodeJSON(r *http.Request, target any) error {
	defer func() {
		_ = r.Body.Close()
	}()
	return json.NewDecoder(r.Body).Decode(target)
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{Code: code, Message: message})
}

func writeForbidden(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusForbidden, httperrors.APIError{Code: code, Message: message})
}

func writeNotFound(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusNotFound, httperrors.APIError{Code: code, Message: message})
}

func writeConflict(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusConflict, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}

func profileResponse(record pgrepo.ProfileRecord) dto.ProfileResponse {
	resp := dto.ProfileResponse{
		Email:       record.Email,
		Username:    record.Username,
		Name:        record.Name,
		Surname:     record.Surname,
		Location:    record.Location,
		Description: record.Description,
		Interests:   record.Interests,
		IsVerified:  record.IsVerified,
	}
	if resp.Interests == nil {
		resp.Interests = []string{}
	}
	if record.DateOfBirth != nil {
		formatted := record.DateOfBirth.Format(dateLayout)
		resp.DateOfBirth = &formatted
	}
	return resp
}

func profilesResponse(records []pgrepo.ProfileRecord) dto.ProfilesResponse {
	resp := dto.ProfilesResponse{Profiles: make([]dto.ProfileResponse, 0, len(records))}
	for _, record := range records {
		resp.Profiles = append(resp.Profiles, profileResponse(record))
	}
	return resp
}

func parseDateOfBirth(value *string) (*time.Time, bool) {
	if value == nil || *value == "" {
		return nil, true
	}
	parsed, err := time.Parse(dateLayout, *value)
	if err != nil {
		return nil, false
	}
	return &parsed, true
}
