package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"pedro-backend-go/internal/config"
)

// CORSMiddleware configures Cross-Origin Resource Sharing for the portal
// frontend. Allowed origins come from CLIENT_URL, which may be a
// comma-separated list when the frontend runs under multiple hosts
// (e.g. the production domain plus a preview deployment).
func CORSMiddleware(appConfig *config.Config) gin.HandlerFunc {
	if appConfig == nil || appConfig.ClientURL == "" {
		// A missing client URL would silently reject every browser request,
		// which is worse than failing at startup.
		panic("ClientURL for CORS is not configured")
	}

	origins := strings.Split(appConfig.ClientURL, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	return cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		// Authorization carries the Firebase ID token; Stripe-Signature is
		// not listed because webhooks are server-to-server, not CORS.
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
