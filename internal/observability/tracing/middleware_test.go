package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"haber-radar/internal/handler/http/requestid"
)

// The package tracer binds to the first provider installed, so a single
// provider is shared by every test and the exporter is reset between them.
var exporter = tracetest.NewInMemoryExporter()

func TestMain(m *testing.M) {
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter)))
	otel.SetTextMapPropagator(propagation.TraceContext{})
	os.Exit(m.Run())
}

func spans(t *testing.T) tracetest.SpanStubs {
	t.Helper()
	s := exporter.GetSpans()
	exporter.Reset()
	return s
}

func attr(s tracetest.SpanStub, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range s.Attributes {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestMiddleware_CreatesSpan(t *testing.T) {
	exporter.Reset()
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if TraceID(r.Context()) == "" {
			t.Error("handler context has no trace id")
		}
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/news/search?q=dolar", nil))

	got := spans(t)
	if len(got) != 1 {
		t.Fatalf("spans = %d, want 1", len(got))
	}
	s := got[0]
	if s.Name != "GET /news/search" {
		t.Errorf("span name = %q", s.Name)
	}
	if v, ok := attr(s, "http.status_code"); !ok || v.AsInt64() != 200 {
		t.Errorf("http.status_code = %v, %v", v, ok)
	}
	if v, ok := attr(s, "http.path"); !ok || v.AsString() != "/news/search" {
		t.Errorf("http.path = %v, %v", v, ok)
	}
	if rr.Header().Get("X-Trace-Id") != s.SpanContext.TraceID().String() {
		t.Errorf("X-Trace-Id = %q, want %q", rr.Header().Get("X-Trace-Id"), s.SpanContext.TraceID())
	}
}

func TestMiddleware_StatusCodes(t *testing.T) {
	tests := []struct {
		status    int
		wantError bool
	}{
		{http.StatusBadRequest, false},
		{http.StatusNotFound, false},
		{http.StatusInternalServerError, true},
		{http.StatusBadGateway, true},
	}
	for _, tt := range tests {
		exporter.Reset()
		h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tt.status)
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

		got := spans(t)
		if len(got) != 1 {
			t.Fatalf("status %d: spans = %d, want 1", tt.status, len(got))
		}
		if isErr := got[0].Status.Code == codes.Error; isErr != tt.wantError {
			t.Errorf("status %d: span error = %v, want %v", tt.status, isErr, tt.wantError)
		}
	}
}

func TestMiddleware_RouteLabelAndRequestID(t *testing.T) {
	exporter.Reset()
	h := requestid.Middleware(Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {})))

	req := httptest.NewRequest(http.MethodGet, "/news/category/ekonomi", nil)
	req.Header.Set("X-Request-ID", "req-42")
	h.ServeHTTP(httptest.NewRecorder(), req)

	got := spans(t)
	if len(got) != 1 {
		t.Fatalf("spans = %d, want 1", len(got))
	}
	s := got[0]
	if s.Name != "GET /news/category/:category" {
		t.Errorf("span name = %q", s.Name)
	}
	if v, ok := attr(s, "http.path"); !ok || v.AsString() != "/news/category/ekonomi" {
		t.Errorf("http.path = %v, %v", v, ok)
	}
	if v, ok := attr(s, "request.id"); !ok || v.AsString() != "req-42" {
		t.Errorf("request.id = %v, %v", v, ok)
	}
}

func TestMiddleware_PropagatesParent(t *testing.T) {
	exporter.Reset()
	const parent = "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"

	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("traceparent", parent)
	h.ServeHTTP(httptest.NewRecorder(), req)

	got := spans(t)
	if len(got) != 1 {
		t.Fatalf("spans = %d, want 1", len(got))
	}
	if tid := got[0].SpanContext.TraceID().String(); tid != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("trace id = %s, want parent trace id", tid)
	}
}

func TestStartSpan_EndSpan(t *testing.T) {
	exporter.Reset()

	_, ok := StartSpan(context.Background(), "aggregate.FetchFeed", attribute.String("source", "ntv-ekonomi"))
	EndSpan(ok, nil)

	_, failed := StartSpan(context.Background(), "aggregate.LiveSearch")
	EndSpan(failed, errors.New("boom"))

	got := spans(t)
	if len(got) != 2 {
		t.Fatalf("spans = %d, want 2", len(got))
	}
	if v, found := attr(got[0], "source"); !found || v.AsString() != "ntv-ekonomi" {
		t.Errorf("source attribute = %v, %v", v, found)
	}
	if got[0].Status.Code == codes.Error {
		t.Error("successful span marked as error")
	}
	if got[1].Status.Code != codes.Error || len(got[1].Events) == 0 {
		t.Errorf("failed span status = %v, events = %d", got[1].Status, len(got[1].Events))
	}
}

func TestTraceID_NoSpan(t *testing.T) {
	if id := TraceID(context.Background()); id != "" {
		t.Errorf("TraceID() = %q, want empty", id)
	}
}
