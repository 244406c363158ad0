package expense

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/tripsplit/pkg/middleware"
	"github.com/fkhayef/tripsplit/pkg/response"
)

func TestHandlerRoutes(t *testing.T) {
	svc, _ := newTestService(t)
	r := chi.NewRouter()
	r.Use(middleware.TestUserMiddleware)
	r.Mount("/trips/{tripId}/expenses", NewHandler(svc).Routes())

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		user   string
		want   int
		code   string
	}{
		{
			name:   "create",
			method: http.MethodPost,
			path:   "/trips/1/expenses",
			body:   `{"title":"Dinner","amount":"90.00","expense_date":"2024-06-01","split_type":"equal","participants":[{"user_id":1},{"user_id":2},{"user_id":3}]}`,
			user:   "2",
			want:   http.StatusCreated,
		},
		{
			name:   "create with mismatched percentages",
			method: http.MethodPost,
			path:   "/trips/1/expenses",
			body:   `{"title":"Hotel","amount":200,"expense_date":"2024-06-01","split_type":"percentage","participants":[{"user_id":1,"percentage":50},{"user_id":2,"percentage":30},{"user_id":3,"percentage":10}]}`,
			user:   "1",
			want:   http.StatusBadRequest,
			code:   "PERCENTAGE_MISMATCH",
		},
		{
			name:   "create missing title",
			method: http.MethodPost,
			path:   "/trips/1/expenses",
			body:   `{"amount":"10.00","expense_date":"2024-06-01","split_type":"equal"}`,
			user:   "1",
			want:   http.StatusBadRequest,
			code:   "INVALID_REQUEST",
		},
		{"list", http.MethodGet, "/trips/1/expenses?category=food", "", "3", http.StatusOK, ""},
		{"list as outsider", http.MethodGet, "/trips/1/expenses", "", "4", http.StatusForbidden, "NOT_A_TRIP_MEMBER"},
		{"list bad filter", http.MethodGet, "/trips/1/expenses?start_date=yesterday", "", "1", http.StatusBadRequest, "INVALID_FILTER"},
		{"get", http.MethodGet, "/trips/1/expenses/1", "", "3", http.StatusOK, ""},
		{"get missing", http.MethodGet, "/trips/1/expenses/99", "", "1", http.StatusNotFound, "EXPENSE_NOT_FOUND"},
		{"delete as other member", http.MethodDelete, "/trips/1/expenses/1", "", "3", http.StatusForbidden, "FORBIDDEN"},
		{"delete as admin", http.MethodDelete, "/trips/1/expenses/1", "", "1", http.StatusNoContent, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			} else {
				req = httptest.NewRequest(tt.method, tt.path, nil)
			}
			req.Header.Set("X-Test-User-ID", tt.user)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

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
			if tt.code == "PERCENTAGE_MISMATCH" && body.Error.Details["sum"] != "90.00" {
				t.Errorf("details = %v, want sum 90.00", body.Error.Details)
			}
		})
	}
}
