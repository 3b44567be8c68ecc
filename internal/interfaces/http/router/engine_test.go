package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wecre8/oto/internal/application/shipping"
	"github.com/wecre8/oto/internal/infrastructure/auth"
	"github.com/wecre8/oto/internal/infrastructure/config"
	"github.com/wecre8/oto/internal/infrastructure/scheduler"
	"github.com/wecre8/oto/internal/interfaces/http/handler"
)

const testSecret = "engine-test-hook-secret-32-chars!"

type stubShipping struct {
	created []int64
}

func (s *stubShipping) NotifyFulfillmentCreated(_ context.Context, id int64) error {
	s.created = append(s.created, id)
	return nil
}

func (s *stubShipping) NotifyFulfillmentCanceled(context.Context, int64) error { return nil }

func (s *stubShipping) DispatchRequest(_ context.Context, req shipping.DispatchRequest) (*shipping.TaskResponse, error) {
	return &shipping.TaskResponse{ID: uuid.New(), Name: "send_oto_request", Status: scheduler.TaskStatusPending}, nil
}

func (s *stubShipping) LookupTask(context.Context, uuid.UUID) (*shipping.TaskResponse, error) {
	return nil, scheduler.ErrTaskNotFound
}

func newTestEngine(t *testing.T, log *zap.Logger) (http.Handler, *stubShipping, string) {
	t.Helper()
	tokens := auth.NewHookTokenService(config.AuthConfig{HookSecret: testSecret})
	token, err := tokens.GenerateToken("storefront", time.Minute)
	require.NoError(t, err)

	svc := &stubShipping{}
	engine, err := NewEngine(Config{
		ServiceName: "oto-test",
		MaxBodySize: 1024,
		Logger:      log,
		Registry:    prometheus.NewRegistry(),
		Tokens:      tokens,
		Shipping:    svc,
		Health:      handler.NewHealthHandler("test", nil),
	})
	require.NoError(t, err)
	return engine, svc, token
}

func do(engine http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestNewEngine_Routes(t *testing.T) {
	engine, svc, token := newTestEngine(t, nil)

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		body       string
		wantStatus int
	}{
		{"health is public", http.MethodGet, "/health", "", "", http.StatusOK},
		{"metrics is public", http.MethodGet, "/metrics", "", "", http.StatusOK},
		{"hook requires token", http.MethodPost, "/api/v1/hooks/fulfillments/42/created", "", "", http.StatusUnauthorized},
		{"created hook", http.MethodPost, "/api/v1/hooks/fulfillments/42/created", token, "", http.StatusAccepted},
		{"canceled hook", http.MethodPost, "/api/v1/hooks/fulfillments/42/canceled", token, "", http.StatusAccepted},
		{"dispatch", http.MethodPost, "/api/v1/oto/dispatch", token, `{"fulfillment_id":42,"destination":"createOrder"}`, http.StatusAccepted},
		{"dispatch requires token", http.MethodPost, "/api/v1/oto/dispatch", "", `{}`, http.StatusUnauthorized},
		{"unknown task", http.MethodGet, "/api/v1/oto/tasks/" + uuid.NewString(), token, "", http.StatusNotFound},
		{"oversized body", http.MethodPost, "/api/v1/oto/dispatch", token, strings.Repeat("x", 2048), http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(engine, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
	assert.Equal(t, []int64{42}, svc.created)
}

func TestNewEngine_MetricsExposeHTTPCounters(t *testing.T) {
	engine, _, token := newTestEngine(t, nil)

	do(engine, http.MethodPost, "/api/v1/hooks/fulfillments/42/created", token, "")
	w := do(engine, http.MethodGet, "/metrics", "", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `http_server_request_total{method="POST",route="/api/v1/hooks/fulfillments/:id/created",status_code="202"} 1`)
}

func TestNewEngine_SkipsProbeLogging(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	engine, _, token := newTestEngine(t, zap.New(core))

	do(engine, http.MethodGet, "/health", "", "")
	do(engine, http.MethodGet, "/metrics", "", "")
	do(engine, http.MethodPost, "/api/v1/hooks/fulfillments/42/canceled", token, "")

	entries := recorded.FilterMessage("HTTP Request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "/api/v1/hooks/fulfillments/42/canceled", entries[0].ContextMap()["path"])
}

func TestNewEngine_InvalidTrustedProxy(t *testing.T) {
	_, err := NewEngine(Config{
		TrustedProxies: []string{"not-an-ip"},
		Health:         handler.NewHealthHandler("test", nil),
	})
	assert.Error(t, err)
}
