package llmhttp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/paperdigest/internal/domain"
	"github.com/kailas-cloud/paperdigest/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterSummaryMetrics()
	os.Exit(m.Run())
}

func TestPostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" || r.Header.Get("X-Key") != "k" {
			t.Errorf("headers = %v", r.Header)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"answer":"ok"}`))
	}))
	defer srv.Close()

	var out struct {
		Answer string `json:"answer"`
	}
	c := New(nil, "test", "m")
	if err := c.PostJSON(context.Background(), srv.URL, map[string]string{"X-Key": "k"}, map[string]string{"q": "x"}, &out); err != nil {
		t.Fatalf("PostJSON: %v", err)
	}
	if out.Answer != "ok" {
		t.Errorf("Answer = %q", out.Answer)
	}
}

func TestPostJSON_StatusErrors(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusTooManyRequests, domain.ErrRateLimited},
		{http.StatusInternalServerError, domain.ErrProviderError},
		{http.StatusUnauthorized, domain.ErrProviderError},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("nope"))
			}))
			defer srv.Close()

			err := New(nil, "test", "m").PostJSON(context.Background(), srv.URL, nil, struct{}{}, nil)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if !IsStatus(err, tt.status) {
				t.Errorf("IsStatus(%d) = false", tt.status)
			}
		})
	}
}

func TestRecordMetrics(t *testing.T) {
	c := New(nil, "metrics-prov", "metrics-model")
	before := testutil.ToFloat64(metrics.SummaryRequestsTotal.WithLabelValues("metrics-prov", "metrics-model", "error"))

	c.RecordError(ErrorType(domain.ErrRateLimited))
	after := testutil.ToFloat64(metrics.SummaryRequestsTotal.WithLabelValues("metrics-prov", "metrics-model", "error"))
	if after-before != 1 {
		t.Errorf("error counter delta = %v", after-before)
	}
	if got := testutil.ToFloat64(metrics.SummaryErrorsTotal.WithLabelValues("metrics-prov", "metrics-model", "rate_limited")); got < 1 {
		t.Errorf("rate_limited errors = %v", got)
	}
}
