package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/studio-scheduler/internal/config"
	"github.com/BruksfildServices01/studio-scheduler/internal/logging"
	"github.com/BruksfildServices01/studio-scheduler/internal/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func signed(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func router(cfg *config.Config, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{AuthMiddleware(cfg)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		tc, ok := Tenant(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusOK, gin.H{"studio": tc.StudioID, "user": tc.UserID, "role": tc.Role})
	})
	r.GET("/x", handlers...)
	return r
}

func claims(studioID uint, role string) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":      7,
		"studioId": studioID,
		"role":     role,
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
}

func TestAuthMiddlewareSetsTenant(t *testing.T) {
	cfg := &config.Config{JWTSecret: "s3cret"}
	r := router(cfg)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+signed(t, "s3cret", claims(3, "reception")))
	req.Header.Set(StudioHeader, "3")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"studio":3,"user":7,"role":"reception"}`, w.Body.String())
}

func TestAuthMiddlewareRejects(t *testing.T) {
	cfg := &config.Config{JWTSecret: "s3cret"}
	r := router(cfg)

	cases := []struct {
		name   string
		header string
		studio string
		status int
	}{
		{"sem header", "", "", http.StatusUnauthorized},
		{"formato errado", "Token abc", "", http.StatusUnauthorized},
		{"assinatura errada", "Bearer " + signed(t, "outro", claims(3, "owner")), "", http.StatusUnauthorized},
		{"sem studio", "Bearer " + signed(t, "s3cret", claims(0, "owner")), "", http.StatusUnauthorized},
		{"studio divergente", "Bearer " + signed(t, "s3cret", claims(3, "owner")), "4", http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if tc.studio != "" {
				req.Header.Set(StudioHeader, tc.studio)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
			assert.Contains(t, w.Body.String(), "error_code")
		})
	}
}

func TestRequireManager(t *testing.T) {
	cfg := &config.Config{JWTSecret: "s3cret"}
	r := router(cfg, RequireManager())

	for role, want := range map[string]int{
		"owner":        http.StatusOK,
		"manager":      http.StatusOK,
		"reception":    http.StatusForbidden,
		"professional": http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer "+signed(t, "s3cret", claims(1, role)))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, role)
	}
}

func TestRequestLoggerPropagatesRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(logging.Discard(), metrics.New(prometheus.NewRegistry())))
	r.GET("/ping", func(c *gin.Context) {
		id, _ := c.Get(ContextRequestID)
		c.String(http.StatusOK, id.(string))
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "req-123", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}

func TestRecoveryReturnsFallbackBody(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(logging.Discard()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal_error")
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS(nil))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), StudioHeader)
}

func TestCORSAllowList(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://app.studio.com.br/"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://app.studio.com.br")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://app.studio.com.br", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
