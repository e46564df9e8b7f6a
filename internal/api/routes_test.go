package api

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debate_arena/internal/repository"
	"debate_arena/internal/service"
	"debate_arena/internal/utils"
	"debate_arena/pkg/config"
)

// 只測不會碰到資料庫的路徑
func newTestRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	hub := service.NewWebSocketService(log)
	services := service.NewServices(&repository.Repositories{}, hub, nil, nil, config.JudgeConfig{Workers: 1, QueueSize: 1}, log)
	tokens := utils.NewTokenManager("test-secret", time.Hour)
	token, err := tokens.GenerateToken(5, "dave")
	require.NoError(t, err)

	r := gin.New()
	SetupRoutes(r, services, tokens, log)
	return r, token
}

func do(r http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthAndNotFound(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(r, http.MethodGet, "/api/nowhere", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoutesRequireToken(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, target := range []string{"/api/motions", "/api/rooms/public", "/api/rooms/1", "/api/rooms/1/ws"} {
		w := do(r, http.MethodGet, target, "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, target)
	}
}

func TestRoutesRejectBadInput(t *testing.T) {
	r, token := newTestRouter(t)

	tests := []struct {
		method, target, body string
	}{
		{http.MethodGet, "/api/rooms/abc", ""},
		{http.MethodGet, "/api/rooms/0/participants", ""},
		{http.MethodPost, "/api/rooms/x/leave", ""},
		{http.MethodGet, "/api/motions/-1", ""},
		{http.MethodPost, "/api/motions", `{"description":"no topic"}`},
		{http.MethodPost, "/api/rooms", `{"config":{"format":"1 vs 1 (Duel)"}}`},
		{http.MethodPost, "/api/rooms/join", `{}`},
		{http.MethodGet, "/api/rooms/abc/ws", ""},
	}
	for _, tt := range tests {
		w := do(r, tt.method, tt.target, token, tt.body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "%s %s", tt.method, tt.target)
		assert.True(t, bytes.Contains(w.Body.Bytes(), []byte(`"error"`)))
	}
}
