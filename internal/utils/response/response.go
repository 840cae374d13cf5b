package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gaitlab/gait-service/internal/apperr"
	"github.com/go-playground/validator/v10"
)

type Response struct {
	Status  string      `json:"status"`
	Error   string      `json:"error,omitempty"`
	Kind    string      `json:"kind,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

var kindNames = map[error]string{
	apperr.ErrConfigMissing:     "config_missing",
	apperr.ErrValidation:        "validation",
	apperr.ErrNotFound:          "not_found",
	apperr.ErrConflict:          "conflict",
	apperr.ErrInvalidCredential: "invalid_credential",
	apperr.ErrUnauthenticated:   "unauthenticated",
	apperr.ErrBackend:           "backend",
}

func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	return json.NewEncoder(w).Encode(data)
}

func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

func ValidationError(errs validator.ValidationErrors) Response {
	var errorMessages string
	for _, err := range errs {
		errorMessages += err.Field() + ": " + err.Tag() + "; "
	}

	return Response{
		Status: StatusError,
		Error:  errorMessages,
		Kind:   kindNames[apperr.ErrValidation],
	}
}

func RequestOK(message string, data interface{}) Response {
	return Response{
		Status:  StatusSuccess,
		Message: message,
		Data:    data,
	}
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.ErrConfigMissing:
		return http.StatusServiceUnavailable
	case apperr.ErrValidation:
		return http.StatusBadRequest
	case apperr.ErrNotFound:
		return http.StatusNotFound
	case apperr.ErrConflict:
		return http.StatusConflict
	case apperr.ErrInvalidCredential, apperr.ErrUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusBadGateway
	}
}

// FromError writes err with the status of its kind. Only the user-safe
// message is exposed.
func FromError(w http.ResponseWriter, err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return WriteJSON(w, http.StatusBadRequest, ValidationError(validationErrs))
	}

	return WriteJSON(w, StatusFor(err), Response{
		Status: StatusError,
		Error:  apperr.Message(err, "Something went wrong."),
		Kind:   kindNames[apperr.KindOf(err)],
	})
}
