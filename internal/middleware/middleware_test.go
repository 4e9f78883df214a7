package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeVerifier struct {
	tokens map[string]*auth.Token
}

func (f *fakeVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	if t, ok := f.tokens[idToken]; ok {
		return t, nil
	}
	return nil, errors.New("invalid token")
}

func newVerifier() *fakeVerifier {
	return &fakeVerifier{tokens: map[string]*auth.Token{
		"good": {UID: "user-1", Claims: map[string]interface{}{
			"email": "ana@example.com", "name": "Ana", "picture": "https://img/ana.png",
		}},
	}}
}

func init() {
	gin.SetMode(gin.TestMode)
}

func authRouter(m *AuthMiddleware, query bool) *gin.Engine {
	r := gin.New()
	handler := m.VerifyToken()
	if query {
		handler = m.VerifyQueryToken()
	}
	r.GET("/me", handler, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"uid":   UserID(c),
			"email": c.GetString(ContextUserEmail),
			"name":  c.GetString(ContextUserDisplayName),
			"photo": c.GetString(ContextUserPhotoURL),
		})
	})
	return r
}

func TestVerifyToken(t *testing.T) {
	m := NewAuthMiddleware(newVerifier(), zap.NewNop())
	r := authRouter(m, false)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"invalid token", "Bearer bad", http.StatusUnauthorized},
		{"valid token", "Bearer good", http.StatusOK},
		{"lowercase scheme", "bearer good", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestVerifyTokenSetsClaims(t *testing.T) {
	r := authRouter(NewAuthMiddleware(newVerifier(), zap.NewNop()), false)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"uid":"user-1","email":"ana@example.com","name":"Ana","photo":"https://img/ana.png"}`, w.Body.String())
}

func TestVerifyQueryToken(t *testing.T) {
	r := authRouter(NewAuthMiddleware(newVerifier(), zap.NewNop()), true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me?token=good", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	r := gin.New()
	r.Use(RequestLogger(zap.NewNop()), RecoveryMiddleware(zap.New(core)))
	r.GET("/panic/:id", func(c *gin.Context) {
		c.Set(ContextUserID, "user-1")
		panic("boom")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/panic/7", nil)
	req.Header.Set(HeaderRequestID, "req-42")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, w.Body.String())
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Panic recovered", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, "user-1", fields["user_id"])
	assert.Equal(t, "/panic/:id", fields["route"])
	assert.Equal(t, "boom", fields["error"])
}

func TestRequestLoggerRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.GET("/ws", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws?token=secret", nil))
	generated := w.Header().Get(HeaderRequestID)
	assert.NotEmpty(t, generated)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set(HeaderRequestID, "client-id")
	r.ServeHTTP(w, req)
	assert.Equal(t, "client-id", w.Header().Get(HeaderRequestID))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, generated, entries[0].ContextMap()["request_id"])
	assert.NotContains(t, entries[0].ContextMap(), "query", "token must not be logged")
	assert.Equal(t, "client-id", entries[1].ContextMap()["request_id"])
}

func TestRequestLoggerLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/fail", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	for _, path := range []string{"/ok", "/missing", "/fail"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, int64(http.StatusBadGateway), entries[2].ContextMap()["status_code"])
}

func TestRateLimiterSlidingWindow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	ok, _ := rl.Allow("u1")
	assert.True(t, ok)
	now = now.Add(10 * time.Second)
	ok, _ = rl.Allow("u1")
	assert.True(t, ok)

	ok, retry := rl.Allow("u1")
	assert.False(t, ok)
	assert.Equal(t, 50*time.Second, retry)

	ok, _ = rl.Allow("u2")
	assert.True(t, ok, "keys are limited independently")

	now = now.Add(51 * time.Second)
	ok, _ = rl.Allow("u1")
	assert.True(t, ok, "oldest request left the window")
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	r := gin.New()
	r.GET("/chat", func(c *gin.Context) { c.Set(ContextUserID, "user-1") }, rl.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/chat", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/chat", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}
