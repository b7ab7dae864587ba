package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
)

// NewCORS lets browser dashboards read channel reports cross-origin. The
// API is read-only and cookie-free, so only GET and preflight are allowed
// and credentials are never shared. corsOrigins is a comma-separated
// allow-list; empty or "*" answers with Access-Control-Allow-Origin: *.
func NewCORS(corsOrigins string) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:     parseOrigins(corsOrigins),
		AllowMethods:     []string{fiber.MethodGet, fiber.MethodOptions},
		AllowHeaders:     []string{"Origin", "Accept", RequestIDHeader},
		AllowCredentials: false,
		ExposeHeaders: []string{
			RequestIDHeader,
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
			"Retry-After",
		},
		MaxAge: 86400,
	})
}

// parseOrigins splits the allow-list, dropping blanks.
func parseOrigins(corsOrigins string) []string {
	var origins []string
	for _, o := range strings.Split(corsOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		return []string{"*"}
	}
	return origins
}
