package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })
	return sr
}

func spanAttribute(span sdktrace.ReadOnlySpan, key attribute.Key) (attribute.Value, bool) {
	for _, attr := range span.Attributes() {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracing_Disabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sr := recordSpans(t)

	engine := gin.New()
	engine.Use(Tracing(TracingConfig{Enabled: false, ServiceName: "mailriver-test"}))
	engine.GET("/mailboxes", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/mailboxes", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestTracing_RecordsWorkspaceAndRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sr := recordSpans(t)

	engine := gin.New()
	engine.Use(RequestID())
	engine.Use(Tracing(TracingConfig{Enabled: true, ServiceName: "mailriver-test"}))
	engine.GET("/mailboxes", func(c *gin.Context) {
		// stand-in for claims set by JWTAuth
		c.Set(JWTWorkspaceIDKey, "2d9f7c1a-0000-0000-0000-000000000001")
		c.Set(JWTUserIDKey, "2d9f7c1a-0000-0000-0000-000000000002")
		SpanAnnotator()(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/mailboxes", nil)
	engine.ServeHTTP(w, req)

	spans := sr.Ended()
	require.Len(t, spans, 1)

	workspaceID, ok := spanAttribute(spans[0], "workspace_id")
	require.True(t, ok)
	assert.Equal(t, "2d9f7c1a-0000-0000-0000-000000000001", workspaceID.AsString())

	userID, ok := spanAttribute(spans[0], "user_id")
	require.True(t, ok)
	assert.Equal(t, "2d9f7c1a-0000-0000-0000-000000000002", userID.AsString())

	requestID, ok := spanAttribute(spans[0], "request_id")
	require.True(t, ok)
	assert.NotEmpty(t, requestID.AsString())
}

func TestSpanErrorMarker(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sr := recordSpans(t)

	engine := gin.New()
	engine.Use(Tracing(TracingConfig{Enabled: true, ServiceName: "mailriver-test"}))
	engine.Use(SpanErrorMarker())
	engine.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	engine.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/missing", nil)
	engine.ServeHTTP(w, req)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/ok", nil)
	engine.ServeHTTP(w, req)

	spans = sr.Ended()
	require.Len(t, spans, 2)
	assert.NotEqual(t, codes.Error, spans[1].Status().Code)
}

func TestTraceRequestID_TruncatesHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	long := make([]byte, maxTraceAttrLength*2)
	for i := range long {
		long[i] = 'a'
	}
	c.Request.Header.Set("X-Request-ID", string(long))

	assert.Len(t, traceRequestID(c), maxTraceAttrLength)
}
