package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type staticValidator struct {
	token  string
	userID int64
}

func (v staticValidator) ValidateSession(token string) (int64, error) {
	if token != v.token {
		return 0, errors.New("invalid token")
	}
	return v.userID, nil
}

func echoUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := GetUserID(r.Context()); !ok {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func TestAuthMiddleware(t *testing.T) {
	handler := AuthMiddleware(staticValidator{token: "good", userID: 7})(http.HandlerFunc(echoUser))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"invalid token", "Bearer bad", http.StatusUnauthorized},
		{"valid token", "Bearer good", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, r)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestTestUserMiddleware(t *testing.T) {
	var got int64
	handler := TestUserMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = GetUserID(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Test-User-ID", "12")
	handler.ServeHTTP(httptest.NewRecorder(), r)
	if got != 12 {
		t.Errorf("user id = %d, want 12", got)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status without header = %d, want 401", rec.Code)
	}
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(m.Handler)
	r.Get("/trips/{tripId}", func(w http.ResponseWriter, r *http.Request) {})

	for _, path := range []string{"/trips/1", "/trips/2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/trips/{tripId}", "200")); got != 2 {
		t.Errorf("requests = %v, want 2", got)
	}
}
