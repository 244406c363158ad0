package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fkhayef/tripsplit/pkg/apperror"
)

type detailedErr struct{}

func (detailedErr) Error() string           { return "split does not add up" }
func (detailedErr) Kind() apperror.Kind     { return apperror.KindValidation }
func (detailedErr) Code() string            { return "AMOUNT_MISMATCH" }
func (detailedErr) Details() map[string]any { return map[string]any{"sum": "99.00"} }

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "not found",
			err:        apperror.New(apperror.KindNotFound, "TRIP_NOT_FOUND", "trip not found"),
			wantStatus: http.StatusNotFound,
			wantCode:   "TRIP_NOT_FOUND",
			wantMsg:    "trip not found",
		},
		{
			name:       "wrapped authorization",
			err:        fmt.Errorf("create expense: %w", apperror.New(apperror.KindAuthorization, "NOT_A_TRIP_MEMBER", "not a member")),
			wantStatus: http.StatusForbidden,
			wantCode:   "NOT_A_TRIP_MEMBER",
		},
		{
			name:       "token",
			err:        apperror.New(apperror.KindToken, "INVALID_OR_EXPIRED_TOKEN", "invalid"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_OR_EXPIRED_TOKEN",
		},
		{
			name:       "storage failure hides cause",
			err:        errors.New("pq: connection refused"),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "STORAGE_UNAVAILABLE",
			wantMsg:    "storage temporarily unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			FromError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body APIResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Success {
				t.Error("success should be false")
			}
			if body.Error == nil || body.Error.Code != tt.wantCode {
				t.Fatalf("error = %+v, want code %s", body.Error, tt.wantCode)
			}
			if tt.wantMsg != "" && body.Error.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", body.Error.Message, tt.wantMsg)
			}
		})
	}
}

func TestFromErrorIncludesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	FromError(rec, detailedErr{})

	var body APIResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
	if body.Error.Details["sum"] != "99.00" {
		t.Errorf("details = %v", body.Error.Details)
	}
}
