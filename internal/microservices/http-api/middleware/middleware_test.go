package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cookbook/internal/microservices/http-api/models"
	"cookbook/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type fakeValidator struct{}

func (fakeValidator) ValidateToken(token string) (*service.Claims, error) {
	switch token {
	case "good":
		return &service.Claims{UserID: "u-1", Username: "cook", Role: models.RoleUser}, nil
	case "admin":
		return &service.Claims{UserID: "u-0", Username: "boss", Role: models.RoleAdmin}, nil
	case "stale":
		return nil, service.ErrExpiredToken
	default:
		return nil, service.ErrInvalidToken
	}
}

type AuthMiddlewareSuite struct {
	suite.Suite
	router *gin.Engine
}

func (s *AuthMiddlewareSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.router.Use(AuthMiddleware(fakeValidator{}))
	s.router.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id"), "role": c.GetString("role")})
	})
	s.router.DELETE("/admin", RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}

func (s *AuthMiddlewareSuite) do(method, path, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *AuthMiddlewareSuite) TestMissingHeader() {
	w := s.do(http.MethodGet, "/me", "")
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Contains(w.Body.String(), "missing authorization header")
}

func (s *AuthMiddlewareSuite) TestBadScheme() {
	w := s.do(http.MethodGet, "/me", "Basic good")
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Contains(w.Body.String(), "invalid authorization header format")
}

func (s *AuthMiddlewareSuite) TestValidToken() {
	w := s.do(http.MethodGet, "/me", "bearer good")
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"user_id":"u-1","role":"user"}`, w.Body.String())
}

func (s *AuthMiddlewareSuite) TestExpiredToken() {
	w := s.do(http.MethodGet, "/me", "Bearer stale")
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Contains(w.Body.String(), "token has expired")
}

func (s *AuthMiddlewareSuite) TestGarbageToken() {
	w := s.do(http.MethodGet, "/me", "Bearer junk")
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Contains(w.Body.String(), "invalid token")
}

func (s *AuthMiddlewareSuite) TestRequireAdmin() {
	s.Equal(http.StatusForbidden, s.do(http.MethodDelete, "/admin", "Bearer good").Code)
	s.Equal(http.StatusNoContent, s.do(http.MethodDelete, "/admin", "Bearer admin").Code)
}

func TestAuthMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(AuthMiddlewareSuite))
}

func TestRequireRoleWithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", RequireRole(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestIPRateLimiter(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewIPRateLimiter(1, 2)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"), "burst exhausted")
	assert.True(t, l.Allow("10.0.0.2"), "other clients have their own bucket")

	now = now.Add(time.Second)
	assert.True(t, l.Allow("10.0.0.1"), "one token refilled")

	now = now.Add(idleAfter + time.Minute)
	l.Allow("10.0.0.3")
	l.mu.Lock()
	_, kept := l.clients["10.0.0.1"]
	l.mu.Unlock()
	assert.False(t, kept, "idle clients are swept")
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(NewIPRateLimiter(0.001, 1)))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestRateLimitNilPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(nil))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for range 5 {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRecoveryAndBodyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(zap.NewNop()), Logger(zap.NewNop()), BodySizeLimit(4))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	r.POST("/echo", func(c *gin.Context) {
		var body struct{ Name string }
		if err := c.ShouldBindJSON(&body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"Name":"too long"}`)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
