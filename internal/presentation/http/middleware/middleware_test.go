package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/bizdesk-api/internal/config"
	"github.com/sangkips/bizdesk-api/internal/infrastructure/memory"
	"github.com/sangkips/bizdesk-api/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// withUser stands in for AuthMiddleware.
func withUser(id string, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id != "" {
			c.Set("user_id", id)
		}
		c.Set("user_roles", roles)
		c.Next()
	}
}

func serve(r *gin.Engine, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRequestHash(t *testing.T) {
	a := RequestHash("POST", "/api/v1/invoices/1/payments", []byte(`{"amount":"10"}`))

	assert.Len(t, a, 64)
	assert.Equal(t, a, RequestHash("POST", "/api/v1/invoices/1/payments", []byte(`{"amount":"10"}`)))
	assert.NotEqual(t, a, RequestHash("POST", "/api/v1/invoices/2/payments", []byte(`{"amount":"10"}`)))
	assert.NotEqual(t, a, RequestHash("POST", "/api/v1/invoices/1/payments", []byte(`{"amount":"11"}`)))
}

func TestIdempotency(t *testing.T) {
	newRouter := func(status int) (*gin.Engine, *int32) {
		var calls int32
		r := gin.New()
		r.Use(withUser("u1"))
		r.POST("/things/:id", IdempotencyRequired(IdempotencyConfig{Repo: memory.NewIdempotencyRepository()}), func(c *gin.Context) {
			n := atomic.AddInt32(&calls, 1)
			c.JSON(status, gin.H{"call": n})
		})
		return r, &calls
	}

	t.Run("key required", func(t *testing.T) {
		r, calls := newRouter(http.StatusCreated)
		rec := serve(r, http.MethodPost, "/things/1", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, int32(0), *calls)
	})

	t.Run("retry replays", func(t *testing.T) {
		r, calls := newRouter(http.StatusCreated)
		first := serve(r, http.MethodPost, "/things/1", `{"a":1}`, IdempotencyKeyHeader, "k1")
		second := serve(r, http.MethodPost, "/things/1", `{"a":1}`, IdempotencyKeyHeader, "k1")

		assert.Equal(t, http.StatusCreated, second.Code)
		assert.Equal(t, first.Body.String(), second.Body.String())
		assert.Equal(t, "true", second.Header().Get("X-Idempotency-Replayed"))
		assert.Equal(t, int32(1), *calls)
	})

	t.Run("different body is rejected", func(t *testing.T) {
		r, calls := newRouter(http.StatusCreated)
		serve(r, http.MethodPost, "/things/1", `{"a":1}`, IdempotencyKeyHeader, "k1")
		rec := serve(r, http.MethodPost, "/things/1", `{"a":2}`, IdempotencyKeyHeader, "k1")

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, int32(1), *calls)
	})

	t.Run("failures are not stored", func(t *testing.T) {
		r, calls := newRouter(http.StatusConflict)
		serve(r, http.MethodPost, "/things/1", `{}`, IdempotencyKeyHeader, "k1")
		serve(r, http.MethodPost, "/things/1", `{}`, IdempotencyKeyHeader, "k1")

		assert.Equal(t, int32(2), *calls)
	})

	t.Run("keys are per actor", func(t *testing.T) {
		repo := memory.NewIdempotencyRepository()
		var calls int32
		handler := func(c *gin.Context) {
			atomic.AddInt32(&calls, 1)
			c.JSON(http.StatusCreated, gin.H{})
		}
		r := gin.New()
		r.POST("/a", withUser("u1"), Idempotency(IdempotencyConfig{Repo: repo}), handler)
		r.POST("/b", withUser("u2"), Idempotency(IdempotencyConfig{Repo: repo}), handler)

		serve(r, http.MethodPost, "/a", `{}`, IdempotencyKeyHeader, "shared")
		serve(r, http.MethodPost, "/b", `{}`, IdempotencyKeyHeader, "shared")

		assert.Equal(t, int32(2), calls)
	})

	t.Run("expired keys run again", func(t *testing.T) {
		repo := memory.NewIdempotencyRepository()
		now := time.Now()
		var calls int32
		r := gin.New()
		r.POST("/a", withUser("u1"), Idempotency(IdempotencyConfig{Repo: repo, Now: func() time.Time { return now }}), func(c *gin.Context) {
			atomic.AddInt32(&calls, 1)
			c.JSON(http.StatusCreated, gin.H{})
		})

		serve(r, http.MethodPost, "/a", `{}`, IdempotencyKeyHeader, "k")
		now = now.Add(IdempotencyKeyTTL + time.Minute)
		serve(r, http.MethodPost, "/a", `{}`, IdempotencyKeyHeader, "k")

		assert.Equal(t, int32(2), calls)
	})
}

func TestActorRateLimiter(t *testing.T) {
	rl := NewActorRateLimiter(RateLimiterConfig{RequestsPerSecond: 0.001, BurstSize: 2})
	t.Cleanup(rl.Stop)

	r := gin.New()
	r.GET("/u1", withUser("u1"), rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/u2", withUser("u2"), rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/u1", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/u1", "").Code)
	limited := serve(r, http.MethodGet, "/u1", "")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "0", limited.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/u2", "").Code, "other actors have their own bucket")
	assert.Equal(t, 2, rl.Stats()["active_actors"])
}

func TestAuthMiddleware(t *testing.T) {
	jwtManager := utils.NewJWTManager("secret", "bizdesk-api", time.Hour)
	token, err := jwtManager.GenerateAccessToken("u1", "u1@example.com", []string{"staff"}, []string{"manage-leads"})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", AuthMiddleware(jwtManager), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.GetString("user_id")})
	})

	rec := serve(r, http.MethodGet, "/me", "", "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"u1"`)

	rec = serve(r, http.MethodGet, "/me", "", "Authorization", "Token "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequirePermission(t *testing.T) {
	tests := []struct {
		name  string
		roles []string
		perms []string
		want  int
	}{
		{name: "granted", roles: []string{"staff"}, perms: []string{"manage-leads"}, want: http.StatusOK},
		{name: "missing", roles: []string{"staff"}, perms: []string{"manage-clients"}, want: http.StatusForbidden},
		{name: "admin bypass", roles: []string{utils.RoleAdmin}, want: http.StatusOK},
		{name: "super admin bypass", roles: []string{utils.RoleSuperAdmin}, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/", func(c *gin.Context) {
				c.Set("user_roles", tt.roles)
				c.Set("user_permissions", tt.perms)
				c.Next()
			}, RequirePermission("manage-leads"), func(c *gin.Context) { c.Status(http.StatusOK) })

			assert.Equal(t, tt.want, serve(r, http.MethodGet, "/", "").Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	r := gin.New()
	r.GET("/staff", withUser("u1", "staff"), RequireRole(utils.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/admin", withUser("u2", utils.RoleAdmin), RequireRole(utils.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/staff", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/admin", "").Code)
}

func TestCORSConfig(t *testing.T) {
	t.Run("required headers are added to the configured list", func(t *testing.T) {
		cfg := CORSConfig(&config.CORSConfig{AllowedHeaders: []string{"authorization", "X-Custom"}})

		assert.Equal(t, []string{"authorization", "X-Custom", "Accept", "Origin", "Content-Type", "X-Request-ID", IdempotencyKeyHeader}, cfg.AllowHeaders)
		assert.Contains(t, cfg.ExposeHeaders, IdempotencyReplayedHeader)
		assert.Contains(t, cfg.ExposeHeaders, "X-RateLimit-Remaining")
		assert.NotEmpty(t, cfg.AllowOrigins)
		assert.True(t, cfg.AllowCredentials)
	})

	t.Run("wildcard origin drops credentials", func(t *testing.T) {
		cfg := CORSConfig(&config.CORSConfig{AllowedOrigins: []string{"*"}})

		assert.True(t, cfg.AllowAllOrigins)
		assert.Empty(t, cfg.AllowOrigins)
		assert.False(t, cfg.AllowCredentials)
	})

	t.Run("preflight exposes idempotency headers", func(t *testing.T) {
		r := gin.New()
		r.Use(CORSMiddleware(&config.CORSConfig{AllowedOrigins: []string{"https://app.example.com"}}))
		r.POST("/things", func(c *gin.Context) { c.Status(http.StatusCreated) })

		rec := serve(r, http.MethodOptions, "/things", "",
			"Origin", "https://app.example.com",
			"Access-Control-Request-Method", http.MethodPost,
			"Access-Control-Request-Headers", "Idempotency-Key")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), IdempotencyKeyHeader)

		rec = serve(r, http.MethodPost, "/things", "{}", "Origin", "https://app.example.com")
		assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), IdempotencyReplayedHeader)
	})
}
