package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/branchledger/cashbook/internal/apperrors"
	mW "github.com/branchledger/cashbook/internal/middleware"
	"github.com/branchledger/cashbook/internal/models"
	"github.com/branchledger/cashbook/internal/services"
)

const maxBodyBytes = 1_048_576

// decodeJSON reads exactly one JSON object into dst and writes the error
// response itself when it cannot
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return false
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return false
	}
	return true
}

// actorFrom returns the authenticated user or answers 401
func actorFrom(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	user, ok := mW.UserFromContext(r.Context())
	if !ok || user.ID == 0 {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return models.User{}, false
	}
	return user, true
}

// idParam parses a positive integer URL parameter
func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		services.SendAppError(w, nil, apperrors.NewFieldValidationError("validation failed", map[string]string{
			name: name + " must be a positive integer",
		}))
		return 0, false
	}
	return id, true
}

func parseQueryID(value, field string, fields map[string]string) *int64 {
	if value == "" {
		return nil
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		fields[field] = field + " must be a positive integer"
		return nil
	}
	return &id
}

func parseQueryDate(value, field string, fields map[string]string) *time.Time {
	if value == "" {
		return nil
	}
	d, err := time.Parse(models.DateLayout, value)
	if err != nil {
		fields[field] = field + " must be a date in YYYY-MM-DD format"
		return nil
	}
	return &d
}
