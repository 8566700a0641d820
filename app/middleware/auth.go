package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type sessionVerifier interface {
	VerifySessionToken(sessionToken string) (string, error)
}

type AuthMiddleware struct {
	accountService sessionVerifier
}

func NewAuthMiddleware(accountService sessionVerifier) *AuthMiddleware {
	return &AuthMiddleware{accountService: accountService}
}

func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			logrus.Debug("Missing authorization header")
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "missing authorization header",
			})
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			logrus.Debug("Invalid authorization header format")
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "invalid authorization header format",
			})
		}

		sessionToken := parts[1]
		subject, err := m.accountService.VerifySessionToken(sessionToken)
		if err != nil {
			logrus.Debug("Invalid or expired session token")
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "invalid or expired token",
			})
		}

		c.Set("session_token", sessionToken)
		c.Set("account_email", subject)

		return next(c)
	}
}
