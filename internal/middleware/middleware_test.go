package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// dummyHandler records if it was called and the context it received.
type dummyHandler struct {
	called bool
	ctx    context.Context
}

func (d *dummyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.called = true
	d.ctx = r.Context()
	w.WriteHeader(http.StatusOK)
}

type parserFunc func(string) (string, error)

func (f parserFunc) ParseAccessToken(t string) (string, error) { return f(t) }

var okParser = parserFunc(func(t string) (string, error) {
	if t == "good" {
		return "user-1", nil
	}
	return "", errors.New("bad token")
})

func TestBearerAuth(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		header     string
		wantCalled bool
		wantCode   int
		wantUser   string
		wantMsg    string
	}{
		{name: "public path bypass", path: "/auth/login", wantCalled: true, wantCode: http.StatusOK},
		{name: "missing header", path: "/transactions", wantCode: http.StatusUnauthorized, wantMsg: "authorization header must be Bearer {token}"},
		{name: "wrong scheme", path: "/transactions", header: "Basic good", wantCode: http.StatusUnauthorized, wantMsg: "authorization header must be Bearer {token}"},
		{name: "invalid token", path: "/transactions", header: "Bearer nope", wantCode: http.StatusUnauthorized, wantMsg: "invalid or expired token"},
		{name: "valid token", path: "/transactions", header: "Bearer good", wantCalled: true, wantCode: http.StatusOK, wantUser: "user-1"},
		{name: "scheme case-insensitive", path: "/transactions", header: "bearer good", wantCalled: true, wantCode: http.StatusOK, wantUser: "user-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dummy := &dummyHandler{}
			h := BearerAuth(okParser, zap.NewNop(), "/auth/login", "/auth/refresh")(dummy)
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCalled, dummy.called)
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantMsg != "" {
				assert.JSONEq(t, `{"message":"`+tt.wantMsg+`"}`, rec.Body.String())
			}
			if tt.wantUser != "" {
				assert.Equal(t, tt.wantUser, GetUserIDFromContext(dummy.ctx))
			}
		})
	}
}

func TestGetUserIDFromContext(t *testing.T) {
	assert.Empty(t, GetUserIDFromContext(context.Background()))
	assert.Equal(t, "bob", GetUserIDFromContext(WithUserID(context.Background(), "bob")))
}

func TestWithRequestLogging(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := WithRequestLogging(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/boom" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("hello"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, int64(200), entries[0].ContextMap()["status"])
	assert.Equal(t, int64(5), entries[0].ContextMap()["size"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}

func TestRateLimit(t *testing.T) {
	l := limiter.New(memory.NewStore(), limiter.Rate{Period: time.Minute, Limit: 2})
	h := RateLimit(l, zap.NewNop())(&dummyHandler{})

	codes := make([]int, 0, 3)
	for range 3 {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, "other clients are not affected")
}
