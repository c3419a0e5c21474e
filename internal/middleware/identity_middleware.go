package middleware

import (
	"strings"

	"github.com/fadilmartias/cv-optimizer/internal/apperror"
	"github.com/fadilmartias/cv-optimizer/internal/util"
	"github.com/gofiber/fiber/v2"
)

const (
	HeaderUserID   = "X-User-ID"
	localsUserID   = "userID"
	maxUserIDBytes = 128
)

// Identity resolves the caller. The X-User-ID header is set by the
// authenticating gateway in front of this service; without it the caller
// is the configured demo user.
func Identity(defaultUserID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := strings.TrimSpace(c.Get(HeaderUserID))
		if userID == "" {
			userID = defaultUserID
		}
		if len(userID) > maxUserIDBytes || strings.ContainsAny(userID, "/\\") {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				ErrorCode: apperror.CodeInvalidInput,
				Message:   "Invalid user identity",
			})
		}
		c.Locals(localsUserID, userID)
		return c.Next()
	}
}

func UserID(c *fiber.Ctx) string {
	if v, ok := c.Locals(localsUserID).(string); ok {
		return v
	}
	return ""
}
