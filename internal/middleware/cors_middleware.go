package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

const (
	corsAllowMethods = "GET, POST, PUT, DELETE, OPTIONS"
	corsAllowHeaders = "Content-Type, Authorization, X-User-ID"
)

// CORS answers every OPTIONS request with a bare 200 and the CORS headers.
// Other requests go through the fiber cors middleware.
func CORS(allowOrigins string) fiber.Handler {
	if strings.TrimSpace(allowOrigins) == "" {
		allowOrigins = "*"
	}
	origins := strings.Split(allowOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	handler := cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: corsAllowMethods,
		AllowHeaders: corsAllowHeaders,
	})

	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodOptions {
			return handler(c)
		}
		if origin := allowedOrigin(origins, c.Get(fiber.HeaderOrigin)); origin != "" {
			c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
			if origin != "*" {
				c.Vary(fiber.HeaderOrigin)
			}
		}
		c.Set(fiber.HeaderAccessControlAllowMethods, corsAllowMethods)
		c.Set(fiber.HeaderAccessControlAllowHeaders, corsAllowHeaders)
		return c.SendStatus(fiber.StatusOK)
	}
}

func allowedOrigin(origins []string, origin string) string {
	for _, o := range origins {
		if o == "*" {
			return "*"
		}
		if origin != "" && strings.EqualFold(o, origin) {
			return origin
		}
	}
	return ""
}
