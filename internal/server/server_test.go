package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"WellnessTips_V1.0/internal/admin"
	"WellnessTips_V1.0/internal/config"
	"WellnessTips_V1.0/internal/utility"
	"WellnessTips_V1.0/internal/wellness"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingModel struct{ calls int }

func (m *failingModel) Complete(ctx context.Context, systemPrompt, userPrompt string) wellness.Completion {
	m.calls++
	return wellness.Completion{Err: errors.New("transport error")}
}

func (m *failingModel) Model() string { return "gpt-4" }

type testServer struct {
	*Server
	handler http.Handler
	cache   *wellness.Cache
}

func newTestServer(t *testing.T, opts ...wellness.Option) *testServer {
	t.Helper()

	cache, err := wellness.NewCache(32, 5*time.Minute)
	require.NoError(t, err)

	hub := utility.NewHub()
	opts = append(opts, wellness.WithNotifier(func(ev wellness.Event) { hub.BroadcastJSON(ev) }))
	engine := wellness.NewEngine(cache, opts...)

	start := time.Now()
	cfg := &config.Config{Port: 5001, AllowOrigins: []string{"http://localhost:3000"}}
	s := New(cfg, start, engine, hub, admin.NewMonitor(start, cache, hub))

	return &testServer{Server: s, handler: s.RegisterRoutes(), cache: cache}
}

func (ts *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

const highRiskBody = `{"sleep": 4, "work": 10, "screen": 9, "score": 0.86, "category": "High", "heartRate": 92, "steps": 2100}`

func TestGenerateTips_FallbackWhenUnconfigured(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/tips", highRiskBody)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var res wellness.TipsResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, wellness.FallbackTips(wellness.CategoryHigh), res.Tips)
	assert.Equal(t, "fallback", res.ModelUsed)
	assert.Equal(t, "High", res.RiskLevel)
	assert.Equal(t, 0.7, res.Confidence)
	assert.False(t, res.GeneratedAt.IsZero())
}

func TestGenerateTips_ModelFailureIsAbsorbed(t *testing.T) {
	model := &failingModel{}
	ts := newTestServer(t, wellness.WithModel(model, time.Second))

	rec := ts.do(http.MethodPost, "/tips", highRiskBody)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "fallback", body["model_used"])
	assert.Equal(t, 1, model.calls)
}

func TestGenerateTips_RequestIDIsEchoed(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/tips", strings.NewReader(highRiskBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
}

func TestGenerateTips_Validation(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		fields []string
	}{
		{"unknown category", `{"sleep": 7, "work": 8, "screen": 5, "score": 0.5, "category": "Critical"}`, []string{"category"}},
		{"out of range hours", `{"sleep": 25, "work": -1, "screen": 5, "score": 0.5, "category": "Low"}`, []string{"sleep", "work"}},
		{"score above one", `{"sleep": 7, "work": 8, "screen": 5, "score": 1.5, "category": "Low"}`, []string{"score"}},
		{"heart rate out of range", `{"sleep": 7, "work": 8, "screen": 5, "score": 0.5, "category": "Low", "heartRate": 250}`, []string{"heartRate"}},
		{"missing fields", `{"sleep": 7}`, []string{"work", "screen", "score", "category"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)

			rec := ts.do(http.MethodPost, "/tips", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			body := decode(t, rec)
			details, ok := body["details"].(map[string]interface{})
			require.True(t, ok)
			for _, f := range tt.fields {
				assert.Contains(t, details, f)
			}
			assert.Equal(t, 0, ts.cache.Len())
		})
	}
}

func TestGenerateTips_MalformedBody(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/tips", `{"sleep": "lots"`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request format", decode(t, rec)["error"])
}

func TestHealthHandler(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, false, body["openai_available"])
	assert.Equal(t, serviceVersion, body["version"])
	assert.Contains(t, body, "uptime_seconds")
	assert.Contains(t, body, "timestamp")
}

func TestCacheStatsHandler(t *testing.T) {
	ts := newTestServer(t)

	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/tips", highRiskBody).Code)
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/tips", highRiskBody).Code)

	rec := ts.do(http.MethodGet, "/cache/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.EqualValues(t, 1, body["total_entries"])
	assert.EqualValues(t, 1, body["valid_entries"])
	assert.Equal(t, "100.0%", body["cache_hit_rate"])
	assert.EqualValues(t, 300, body["cache_duration_seconds"])
}

func TestRootHandler(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, serviceName, body["service"])
	assert.Equal(t, "running", body["status"])
	assert.Contains(t, body, "endpoints")
}

func TestPanicsBecomeGenericServerErrors(t *testing.T) {
	ts := newTestServer(t)
	ts.Echo.GET("/boom", func(c echo.Context) error { panic("engine bug") })

	rec := ts.do(http.MethodGet, "/boom", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "Internal server error", body["error"])
	assert.NotContains(t, rec.Body.String(), "engine bug")
}

func TestUnknownRouteKeepsClientError(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEventsSocketReceivesServedTips(t *testing.T) {
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.handler)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/events", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return ts.hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	resp, err := http.Post(srv.URL+"/tips", echo.MIMEApplicationJSON, strings.NewReader(highRiskBody))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev wellness.Event
	require.NoError(t, json.Unmarshal(msg, &ev))
	assert.Equal(t, wellness.EventTipsServed, ev.Type)
	assert.Equal(t, "High", ev.RiskLevel)
	assert.False(t, ev.CacheHit)
}

func TestStalledEventsSubscriberDoesNotBlockTips(t *testing.T) {
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.handler)
	defer srv.Close()

	// Subscribe and never read.
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/events", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return ts.hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	ctx := zerolog.New(io.Discard).WithContext(context.Background())
	a := wellness.Assessment{Sleep: 4, Work: 10, Screen: 9, Score: 0.9, Category: wellness.CategoryHigh}

	done := make(chan int, 1)
	go func() {
		served := 0
		for ; served < 50000; served++ {
			if _, err := ts.engine.GetTips(ctx, a); err != nil {
				break
			}
		}
		done <- served
	}()

	select {
	case served := <-done:
		assert.Equal(t, 50000, served)
	case <-time.After(20 * time.Second):
		t.Fatal("GetTips blocked behind a websocket client that stopped reading")
	}
}

func TestEngineLogsCarryRequestID(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = prev }()

	ts := newTestServer(t, wellness.WithModel(&failingModel{}, time.Second))

	req := httptest.NewRequest(http.MethodPost, "/tips", strings.NewReader(highRiskBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("X-Request-ID", "req-engine-42")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var found bool
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]interface{}
		if json.Unmarshal([]byte(line), &entry) != nil {
			continue
		}
		if entry["message"] == "Model call failed, using fallback tips" {
			found = true
			assert.Equal(t, "req-engine-42", entry["request_id"])
		}
	}
	assert.True(t, found, "model failure was not logged")
}
