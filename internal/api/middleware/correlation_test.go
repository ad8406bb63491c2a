package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/twokhq/realtime-core/internal/api/middleware"
)

func TestCorrelationID_EchoesCallerHeader(t *testing.T) {
	var seen string
	h := middleware.CorrelationID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.GetCorrelationID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Correlation-ID", "corr-7")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen != "corr-7" {
		t.Fatalf("expected context id corr-7, got %q", seen)
	}
	if got := rec.Header().Get("X-Correlation-ID"); got != "corr-7" {
		t.Fatalf("expected echoed response header corr-7, got %q", got)
	}
}

func TestCorrelationID_MintsWhenAbsent(t *testing.T) {
	var seen string
	h := middleware.CorrelationID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.GetCorrelationID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if seen == "" {
		t.Fatal("expected a generated correlation id on the context")
	}
	if got := rec.Header().Get("X-Correlation-ID"); got != seen {
		t.Fatalf("expected response header %q to match context id, got %q", seen, got)
	}
}

func TestCorrelationLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx := context.Background()
	if got := middleware.CorrelationLogger(ctx, base); got != base {
		t.Fatal("expected unchanged logger when no correlation id is set")
	}

	var withID context.Context
	h := middleware.CorrelationID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		withID = r.Context()
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Correlation-ID", "corr-9")
	h.ServeHTTP(httptest.NewRecorder(), req)

	middleware.CorrelationLogger(withID, base).Info("tagged")
	entries := logs.FilterMessage("tagged").All()
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["correlation_id"]; got != "corr-9" {
		t.Fatalf("expected correlation_id corr-9, got %v", got)
	}
}
