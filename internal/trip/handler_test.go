package trip_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fkhayef/tripsplit/internal/trip"
	"github.com/fkhayef/tripsplit/pkg/middleware"
	"github.com/fkhayef/tripsplit/pkg/response"
)

func serve(h http.Handler, method, path, body string, userID string) *httptest.ResponseRecorder {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	r.Header.Set("X-Test-User-ID", userID)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestHandlerRoutes(t *testing.T) {
	svc, store := newService()
	tripID := store.Seed(1, "Lisbon")
	store.Join(tripID, 2, trip.RoleMember)
	h := middleware.TestUserMiddleware(trip.NewHandler(svc).Routes())

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		user   string
		want   int
		code   string
	}{
		{"create", http.MethodPost, "/", `{"name":"Rome","currency":"EUR"}`, "1", http.StatusCreated, ""},
		{"create invalid", http.MethodPost, "/", `{"name":""}`, "1", http.StatusBadRequest, "INVALID_REQUEST"},
		{"get as member", http.MethodGet, "/1", "", "2", http.StatusOK, ""},
		{"get as outsider", http.MethodGet, "/1", "", "3", http.StatusForbidden, "NOT_A_TRIP_MEMBER"},
		{"bad id", http.MethodGet, "/abc", "", "1", http.StatusBadRequest, "INVALID_ID"},
		{"update as member", http.MethodPut, "/1", `{"name":"Porto"}`, "2", http.StatusForbidden, "INSUFFICIENT_ROLE"},
		{"members", http.MethodGet, "/1/members", "", "2", http.StatusOK, ""},
		{"remove missing member", http.MethodDelete, "/1/members/42", "", "1", http.StatusNotFound, "MEMBER_NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, tt.method, tt.path, tt.body, tt.user)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body)
			}
			if tt.code == "" {
				return
			}
			var body response.APIResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body.Error == nil || body.Error.Code != tt.code {
				t.Errorf("error = %+v, want code %s", body.Error, tt.code)
			}
		})
	}
}
