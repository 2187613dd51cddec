package middleware

import (
	"errors"
	"job-portal/internal/domain"
	"job-portal/pkg/logger"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// ContextKeyUser is where RequireRole stores the authenticated *domain.User.
const ContextKeyUser = "user"

// RequireRole checks the bearer token with the same verifier the sockets use
// and admits only callers holding one of roles.
func RequireRole(verifier domain.IdentityVerifier, log logger.Logger, roles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Authorization header required"})
			}

			token, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found || token == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Bearer token required"})
			}

			user, err := verifier.VerifyToken(c.Request().Context(), token)
			if err != nil {
				if !errors.Is(err, domain.ErrInvalidToken) && !errors.Is(err, domain.ErrUserNotFound) {
					log.Error("Token verification failed", "error", err)
				}
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid token"})
			}

			if _, ok := allowed[user.Role]; !ok {
				log.Warn("Caller lacks required role", "user_id", user.ID, "role", user.Role)
				return c.JSON(http.StatusForbidden, map[string]string{"error": "Insufficient role"})
			}

			c.Set(ContextKeyUser, user)
			return next(c)
		}
	}
}
