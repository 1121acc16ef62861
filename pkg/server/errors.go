package server

import (
	"encoding/json"
	"net/http"
)

// APIError is a standardized error response structure.
type APIError struct {
	Message string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

const (
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
	ErrCodeInvalidQuery     = "INVALID_QUERY"
	ErrCodeValidationError  = "VALIDATION_ERROR"
	ErrCodeBackendError     = "BACKEND_ERROR"
	ErrCodeNotConfigured    = "NOT_CONFIGURED"
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
)

// writeJSON writes a JSON response with a given status code.
func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to write json response", "err", err)
	}
}

// writeError writes a standardized APIError response.
func (s *Server) writeError(w http.ResponseWriter, statusCode int, code, message string) {
	s.writeJSON(w, statusCode, APIError{
		Code:    code,
		Message: message,
	})
}

// allowMethod writes a 405 and returns false when the method differs.
func (s *Server) allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	s.writeError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Only "+method+" method is allowed")
	return false
}
