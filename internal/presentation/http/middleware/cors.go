package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/sangkips/bizdesk-api/internal/config"
)

// requestHeaders are read by the API and are always allowed, whatever the
// configured list says.
var requestHeaders = []string{
	"Authorization",
	"Content-Type",
	"X-Request-ID",
	IdempotencyKeyHeader,
}

// responseHeaders are set by the API and exposed to browser clients.
var responseHeaders = []string{
	"Content-Length",
	"Content-Type",
	"Content-Disposition",
	"X-Request-ID",
	IdempotencyReplayedHeader,
	"X-RateLimit-Limit",
	"X-RateLimit-Remaining",
	"Retry-After",
}

// CORSConfig builds the gin-contrib/cors settings for the configured origins.
// A single "*" origin allows every origin without credentials.
func CORSConfig(cfg *config.CORSConfig) cors.Config {
	corsConfig := cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     cfg.AllowedMethods,
		AllowHeaders:     withHeaders(cfg.AllowedHeaders, append([]string{"Accept", "Origin"}, requestHeaders...)...),
		ExposeHeaders:    responseHeaders,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	switch {
	case len(corsConfig.AllowOrigins) == 0:
		// Local frontends
		corsConfig.AllowOrigins = []string{
			"http://localhost:3000",
			"http://localhost:3001",
			"http://127.0.0.1:3000",
		}
	case len(corsConfig.AllowOrigins) == 1 && corsConfig.AllowOrigins[0] == "*":
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}

	if len(corsConfig.AllowMethods) == 0 {
		corsConfig.AllowMethods = []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions,
		}
	}

	return corsConfig
}

// CORSMiddleware creates a CORS middleware with the provided configuration
func CORSMiddleware(cfg *config.CORSConfig) gin.HandlerFunc {
	return cors.New(CORSConfig(cfg))
}

// withHeaders appends each required header missing from configured.
func withHeaders(configured []string, required ...string) []string {
	out := append([]string(nil), configured...)
	for _, r := range required {
		found := false
		for _, h := range out {
			if strings.EqualFold(h, r) {
				found = true
				break
			}
		}
		if !found {
			out = append(out, r)
		}
	}
	return out
}
