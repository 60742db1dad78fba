package handlers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/votely/votely/internal/errors"
	"github.com/votely/votely/internal/services"
)

// Error codes for standardized API error responses
const (
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeConflict            = "CONFLICT"
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeInternalServer      = "INTERNAL_SERVER_ERROR"
	ErrCodePollNotActive       = "POLL_NOT_ACTIVE"
	ErrCodeAlreadyVoted        = "ALREADY_VOTED"
	ErrCodeInvalidSelections   = "INVALID_SELECTION_COUNT"
	ErrCodeUnknownOption       = "UNKNOWN_OPTION"
	ErrCodeResultsNotVisible   = "RESULTS_NOT_VISIBLE"
	ErrCodeVoterRequired       = "VOTER_REQUIRED"
)

// APIError represents an error with an HTTP status code and error code
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new API error with custom message and code
func NewAPIError(status int, code, message string) *APIError {
	return &APIError{Status: status, Code: code, Message: message}
}

// BadRequest creates a 400 error with custom message
func BadRequest(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: ErrCodeBadRequest, Message: message}
}

// Unauthorized creates a 401 error with custom message
func Unauthorized(message string) *APIError {
	return &APIError{Status: http.StatusUnauthorized, Code: ErrCodeUnauthorized, Message: message}
}

// NotFound creates a 404 error with custom message
func NotFound(message string) *APIError {
	return &APIError{Status: http.StatusNotFound, Code: ErrCodeNotFound, Message: message}
}

// Conflict creates a 409 error with custom message
func Conflict(message string) *APIError {
	return &APIError{Status: http.StatusConflict, Code: ErrCodeConflict, Message: message}
}

// InternalError creates a 500 error, logs the original error
func InternalError(err error) *APIError {
	log.Printf("Internal error: %v", err)
	return &APIError{Status: http.StatusInternalServerError, Code: ErrCodeInternalServer, Message: "Internal server error"}
}

// respondJSON writes a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondOK writes a 200 OK JSON response
func respondOK(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusOK, data)
}

// respondCreated writes a 201 Created JSON response
func respondCreated(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusCreated, data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, err error) {
	if apiErr, ok := err.(*APIError); ok {
		respondJSON(w, apiErr.Status, apiErr)
		return
	}
	// Convert service errors to appropriate API errors
	apiErr := ToAPIError(err)
	respondJSON(w, apiErr.Status, apiErr)
}

// decodeJSON decodes JSON from request body into the target
func decodeJSON(r *http.Request, target interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		if err == io.EOF {
			return BadRequest("Request body is empty")
		}
		return BadRequest("Invalid JSON: " + err.Error())
	}
	return nil
}

// pollIDParam extracts the poll ID URL parameter
func pollIDParam(r *http.Request) (string, error) {
	pollID := chi.URLParam(r, "pollID")
	if pollID == "" {
		return "", BadRequest("Missing pollID parameter")
	}
	return pollID, nil
}

// ToAPIError converts service errors to appropriate API errors.
// A duplicate vote is always reported as ALREADY_VOTED, never as a generic
// failure, so the caller can route the voter straight to results.
func ToAPIError(err error) *APIError {
	// Check for application errors first
	var appErr *errors.Error
	if stderrors.As(err, &appErr) {
		switch appErr.Kind {
		case errors.ErrNotFound:
			return NotFound(appErr.Message)
		case errors.ErrValidation, errors.ErrInvalidInput:
			return &APIError{Status: http.StatusBadRequest, Code: ErrCodeValidation, Message: appErr.Message}
		case errors.ErrConflict:
			return Conflict(appErr.Message)
		default:
			return InternalError(err)
		}
	}

	switch err {
	case services.ErrPollNotFound:
		return &APIError{Status: http.StatusNotFound, Code: ErrCodeNotFound, Message: err.Error()}
	case services.ErrBallotNotFound:
		return &APIError{Status: http.StatusNotFound, Code: ErrCodeNotFound, Message: err.Error()}
	case services.ErrAlreadyVoted:
		return &APIError{Status: http.StatusConflict, Code: ErrCodeAlreadyVoted, Message: err.Error()}
	case services.ErrPollNotActive:
		return &APIError{Status: http.StatusConflict, Code: ErrCodePollNotActive, Message: err.Error()}
	case services.ErrInvalidSelectionCount:
		return &APIError{Status: http.StatusBadRequest, Code: ErrCodeInvalidSelections, Message: err.Error()}
	case services.ErrUnknownOption:
		return &APIError{Status: http.StatusBadRequest, Code: ErrCodeUnknownOption, Message: err.Error()}
	case services.ErrResultsNotVisible:
		return &APIError{Status: http.StatusForbidden, Code: ErrCodeResultsNotVisible, Message: err.Error()}
	case services.ErrVoterRequired:
		return &APIError{Status: http.StatusBadRequest, Code: ErrCodeVoterRequired, Message: err.Error()}
	}

	if svcErr, ok := err.(*services.ServiceError); ok {
		return BadRequest(svcErr.Message)
	}

	return InternalError(err)
}
