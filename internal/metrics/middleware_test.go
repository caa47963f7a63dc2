package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Post("/v1/rank", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	r.Get("/runs/{id}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodPost, "/v1/rank", http.NoBody),
		httptest.NewRequest(http.MethodGet, "/runs/abc", http.NoBody),
		httptest.NewRequest(http.MethodGet, "/runs/def", http.NoBody),
	} {
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/v1/rank", "400")); v < 1 {
		t.Errorf("POST /v1/rank 400 = %v", v)
	}
	if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/runs/{id}", "200")); v < 2 {
		t.Errorf("GET /runs/{id} 200 = %v, want >= 2", v)
	}
}

func TestRouteLabel_WithoutChiContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/anything", http.NoBody)
	if got := routeLabel(req); got != "unmatched" {
		t.Errorf("routeLabel = %q", got)
	}
}

func TestRegister_Idempotent(t *testing.T) {
	Register()
	Register()
}
