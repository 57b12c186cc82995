package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/ziptalk-calculator/internal/config"
	"github.com/Dan9191/ziptalk-calculator/internal/models"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, subject string, expires time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expires),
	})
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestAuthMiddleware(t *testing.T) {
	var gotID int64
	protected := AuthMiddleware(&config.Config{JWTSecret: testSecret})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserIDFromContext(r.Context())
		require.True(t, ok)
		gotID = id
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid token", "Bearer " + signToken(t, testSecret, "42", time.Now().Add(time.Hour)), http.StatusNoContent},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, testSecret, "42", time.Now().Add(-time.Hour)), http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signToken(t, "other", "42", time.Now().Add(time.Hour)), http.StatusUnauthorized},
		{"non numeric subject", "Bearer " + signToken(t, testSecret, "admin", time.Now().Add(time.Hour)), http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotID = 0
			req := httptest.NewRequest(http.MethodGet, "/api/competition-data/all", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			protected.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusNoContent {
				assert.Equal(t, int64(42), gotID)
			} else {
				assert.Equal(t, "Unauthorized", decodeError(t, w).Error)
			}
		})
	}
}

func TestRequestLogger(t *testing.T) {
	log, hook := test.NewNullLogger()
	r := mux.NewRouter()
	r.Use(RequestLogger(log))
	r.HandleFunc("/api/apartments/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, RequestIDFromContext(r.Context()))
		w.WriteHeader(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/apartments/7", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, http.StatusNotFound, entry.Data["status"])
	assert.Equal(t, "/api/apartments/7", entry.Data["path"])
}

func TestRequestLogger_KeepsIncomingID(t *testing.T) {
	log, hook := test.NewNullLogger()
	h := RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", hook.LastEntry().Data["request_id"])
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("1.1.1.1"))
	assert.False(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("2.2.2.2"))

	now = now.Add(time.Minute)
	assert.True(t, rl.Allow("1.1.1.1"))

	now = now.Add(2 * time.Hour)
	rl.cleanup()
	assert.Empty(t, rl.clients)
}

func TestRateLimit(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	defer rl.Stop()
	h := RateLimit(rl, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/login", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send().Code)
	w := send()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "Too Many Requests", decodeError(t, w).Error)
}

func TestRateLimit_IgnoresForwardedHeaders(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()
	h := RateLimit(rl, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	allowed := 0
	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/login", nil)
		req.RemoteAddr = "198.51.100.7:40000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		req.Header.Set("X-Real-IP", fmt.Sprintf("10.0.1.%d", i))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code == http.StatusOK {
			allowed++
		} else {
			assert.Equal(t, http.StatusTooManyRequests, w.Code)
		}
	}
	assert.Equal(t, 2, allowed)
}

func TestRateLimit_TrustedProxy(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Stop()
	h := RateLimit(rl, true)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(client string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/login", nil)
		req.RemoteAddr = "10.0.0.2:80"
		req.Header.Set("X-Forwarded-For", client)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("203.0.113.5"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.5"))
	assert.Equal(t, http.StatusOK, send("203.0.113.6"))
}

func TestCORS_AnyOrigin(t *testing.T) {
	called := false
	h := CORS(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	req := httptest.NewRequest(http.MethodOptions, "/api/calculate-score", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, called)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/apartments", nil))
	assert.True(t, called)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_AllowedOrigins(t *testing.T) {
	h := CORS([]string{"https://ziptalk.kr", " http://localhost:5173 "})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	tests := []struct {
		origin string
		want   string
	}{
		{"https://ziptalk.kr", "https://ziptalk.kr"},
		{"http://localhost:5173", "http://localhost:5173"},
		{"https://evil.example", ""},
		{"", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/apartments", nil)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, tt.want, w.Header().Get("Access-Control-Allow-Origin"), tt.origin)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	}
}

func TestRemoteHost(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "[2001:db8::1]:443"
	req.Header.Set("X-Forwarded-For", "203.0.113.5")
	assert.Equal(t, "2001:db8::1", RemoteHost(req))

	req.RemoteAddr = "192.0.2.1"
	assert.Equal(t, "192.0.2.1", RemoteHost(req))
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, "10.0.0.2:80", "203.0.113.5"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.7"}, "10.0.0.2:80", "198.51.100.7"},
		{"remote addr", nil, "192.0.2.1:1234", "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, GetClientIP(req))
		})
	}
}

func TestParseJSONBody(t *testing.T) {
	var body struct {
		Age int `json:"age"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"age": 35}`))
	require.NoError(t, ParseJSONBody(httptest.NewRecorder(), req, &body))
	assert.Equal(t, 35, body.Age)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"age":`))
	assert.Error(t, ParseJSONBody(httptest.NewRecorder(), req, &body))
}
