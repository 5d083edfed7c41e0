package server

import (
	"context"
	"strings"
	"time"

	"github.com/abdanbarkaath/marketlink/internal/middleware"
	"github.com/abdanbarkaath/marketlink/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SessionCookieName is the cookie carrying the opaque session token.
const SessionCookieName = "ml_session"

// sessionToken extracts the opaque session token from the session cookie or
// an Authorization: Bearer header. The cookie wins when both are present.
func sessionToken(c *fiber.Ctx) string {
	if token := c.Cookies(SessionCookieName); token != "" {
		return token
	}
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// AuthRequired returns the authentication middleware. Sessions are opaque
// DB-backed tokens; an expired session is deleted on first use so the table
// does not accumulate dead rows between sweeper runs.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := sessionToken(c)
		if token == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		session, err := s.sessionRepo.GetByToken(c.Context(), token)
		if err != nil {
			return models.RespondWithAppError(c, err)
		}
		if session.Expired(time.Now()) {
			_ = s.sessionRepo.Delete(c.Context(), token)
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired session"))
		}

		c.Locals("userID", session.UserID)
		c.Locals("sessionToken", token)
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, session.UserID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// optionalUserID resolves the caller's user ID from a session token if one
// is present and valid, returning 0 for anonymous or unusable sessions. Used
// by public endpoints whose response depends on ownership but which must
// never demand authentication.
func (s *Server) optionalUserID(c *fiber.Ctx) uint {
	token := sessionToken(c)
	if token == "" {
		return 0
	}
	session, err := s.sessionRepo.GetByToken(c.Context(), token)
	if err != nil || session.Expired(time.Now()) {
		return 0
	}
	return session.UserID
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so that userID is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(uint)

		user, err := s.userRepo.GetByID(c.Context(), userID)
		if err != nil {
			return models.RespondWithAppError(c, err)
		}
		if !user.IsAdmin() {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}

		return c.Next()
	}
}
