package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/selftrack/internal/db"
	"github.com/selftrack/internal/handler"
	"github.com/selftrack/internal/service"
	"github.com/selftrack/internal/store"
)

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clock := func() time.Time { return time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC) }
	st := store.New(db.NewMemoryKV(), store.WithClock(clock), store.WithTimezone("UTC"))
	if err := st.Initialize(); err != nil {
		t.Fatalf("initialize store: %v", err)
	}
	api := handler.NewAPI(
		service.NewTrackerService(st, nil, service.WithTrackerClock(clock)),
		service.NewTransferService(st, nil, clock),
		service.NewQuoteService("", nil),
		nil,
	)
	return SetupRouter(api, "test-secret")
}

func TestSetupRouterRegistersAPI(t *testing.T) {
	r := setupTestRouter(t)

	tests := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{http.MethodGet, "/ping", "", http.StatusOK},
		{http.MethodGet, "/api/state", "", http.StatusOK},
		{http.MethodPost, "/api/session/open", "", http.StatusOK},
		{http.MethodGet, "/api/today", "", http.StatusOK},
		{http.MethodGet, "/api/history", "", http.StatusOK},
		{http.MethodGet, "/api/stats", "", http.StatusOK},
		{http.MethodGet, "/api/stats/week", "", http.StatusOK},
		{http.MethodGet, "/api/quotes/random", "", http.StatusOK},
		{http.MethodGet, "/api/export/key", "", http.StatusOK},
		{http.MethodPatch, "/api/user", `{"theme":"dark"}`, http.StatusOK},
		{http.MethodPost, "/api/welcome/dismiss", "", http.StatusOK},
		{http.MethodPut, "/api/habits/missing", `{"name":"x"}`, http.StatusNotFound},
		{http.MethodGet, "/api/unknown", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			if rr.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestSetupRouterSetsContentLanguage(t *testing.T) {
	r := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/today", nil)
	req.Header.Set("Accept-Language", "zh-CN")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if got := rr.Header().Get("Content-Language"); got != "zh" {
		t.Fatalf("expected zh, got %q", got)
	}
}
