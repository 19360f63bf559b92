package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// authMiddleware checks for a valid session token and resolves the user
func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		auth := c.Request().Header.Get("Authorization")
		if auth == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authorization required"})
		}

		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid authorization format"})
		}

		var userID, email string
		var expiresAt time.Time
		err := s.db.QueryRowContext(c.Request().Context(), `
			SELECT s.user_id, s.expires_at, u.email
			FROM sessions s JOIN users u ON u.id = s.user_id
			WHERE s.token = $1`,
			token,
		).Scan(&userID, &expiresAt, &email)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
		}

		if time.Now().After(expiresAt) {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "token expired"})
		}

		c.Set("user_id", userID)
		c.Set("email", email)
		c.Set("token", token)
		return next(c)
	}
}
