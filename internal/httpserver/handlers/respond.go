package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/linkhoard/linkhoard/internal/domain"
	"github.com/linkhoard/linkhoard/internal/logger"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps domain errors onto HTTP statuses. Unrecognized errors are
// storage failures; their detail goes to the log, never to the client.
func writeError(w http.ResponseWriter, log logger.Logger, err error) {
	var (
		ve  *domain.ValidationError
		nf  *domain.NotFoundError
		ese *domain.ExternalServiceError
	)
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: ve.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
	case errors.Is(err, domain.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: domain.ErrForbidden.Error()})
	case errors.As(err, &nf):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: nf.Error()})
	case errors.As(err, &ese):
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: ese.Error()})
	default:
		log.Error("storage error", logger.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "a storage error occurred"})
	}
}

// decodeJSON reads the request body into v; malformed JSON is a validation
// error, not a server fault.
func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.Validationf("body", "invalid JSON: %v", err)
	}
	return nil
}

// tagList accepts either a JSON array of strings or a single
// comma-separated string, matching what the UI and the bookmarklet send.
type tagList []string

func (t *tagList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = list
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = domain.ParseTagList(s)
	return nil
}
