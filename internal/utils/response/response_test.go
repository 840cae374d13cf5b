package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gaitlab/gait-service/internal/apperr"
)

func TestFromErrorStatuses(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		kind    string
		message string
	}{
		{apperr.New(apperr.ErrConfigMissing, "Gateway connection is missing."), http.StatusServiceUnavailable, "config_missing", "Gateway connection is missing."},
		{apperr.New(apperr.ErrValidation, "Username must be at least 3 characters."), http.StatusBadRequest, "validation", "Username must be at least 3 characters."},
		{apperr.New(apperr.ErrNotFound, "User not found or role is incorrect."), http.StatusNotFound, "not_found", "User not found or role is incorrect."},
		{apperr.New(apperr.ErrConflict, "This username is already taken."), http.StatusConflict, "conflict", "This username is already taken."},
		{apperr.New(apperr.ErrInvalidCredential, "Invalid doctor registration key!"), http.StatusUnauthorized, "invalid_credential", "Invalid doctor registration key!"},
		{apperr.New(apperr.ErrUnauthenticated, "Please sign in first."), http.StatusUnauthorized, "unauthenticated", "Please sign in first."},
		{fmt.Errorf("pq: connection refused"), http.StatusBadGateway, "backend", "Something went wrong."},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			rec := httptest.NewRecorder()
			FromError(rec, tt.err)

			if rec.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, rec.Code)
			}
			var body Response
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Status != StatusError || body.Kind != tt.kind || body.Error != tt.message {
				t.Fatalf("unexpected body %+v", body)
			}
		})
	}
}

func TestFromErrorKeepsCauseHidden(t *testing.T) {
	rec := httptest.NewRecorder()
	FromError(rec, apperr.Wrap(apperr.ErrBackend, "Delete failed.", errors.New("minio: secret detail")))

	var body Response
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Error != "Delete failed." {
		t.Fatalf("cause leaked into response: %q", body.Error)
	}
}
