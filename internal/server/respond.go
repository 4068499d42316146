package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"fjacquet/statement-categorizer/internal/parsererror"
)

const maxJSONBody = 5 << 20

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error onto the HTTP status reported to the caller.
func statusFor(err error) int {
	switch {
	case parsererror.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, parsererror.ErrTransactionNotFound):
		return http.StatusNotFound
	case parsererror.IsConversion(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.WithError(err).Error("Request failed")
		msg = "Internal server error"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

// decode reads a JSON body into v; a malformed body is a validation error.
func decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		return &parsererror.ValidationError{Reason: fmt.Sprintf("invalid request body: %v", err)}
	}
	return nil
}
