package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/micro8gents-api/internal/httperr"
	"github.com/BruksfildServices01/micro8gents-api/internal/models"
	"github.com/BruksfildServices01/micro8gents-api/internal/session"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage"
)

const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
	ContextUser     = "user"
	ContextClaims   = "sessionClaims"
)

// AuthMiddleware accepts the session cookie or a Bearer token, rejects
// revoked sessions and loads the current user.
func AuthMiddleware(
	sessions *session.Manager,
	revocations session.Revocations,
	users storage.UserStore,
	log *zap.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			httperr.Abort(c, http.StatusUnauthorized, "not_authenticated", "Not authenticated")
			return
		}

		claims, err := sessions.Parse(tokenString)
		if err != nil {
			httperr.Abort(c, http.StatusUnauthorized, "invalid_session", "Invalid or expired session")
			return
		}

		revoked, err := revocations.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			log.Error("session revocation lookup failed", zap.Error(err))
			httperr.Abort(c, http.StatusInternalServerError, "internal_error", "Internal server error")
			return
		}
		if revoked {
			httperr.Abort(c, http.StatusUnauthorized, "invalid_session", "Invalid or expired session")
			return
		}

		userID, _ := claims.UserID()
		user, err := users.GetUser(c.Request.Context(), userID)
		if errors.Is(err, storage.ErrNotFound) {
			httperr.Abort(c, http.StatusUnauthorized, "invalid_session", "Invalid or expired session")
			return
		}
		if err != nil {
			log.Error("load session user failed", zap.Error(err))
			httperr.Abort(c, http.StatusInternalServerError, "internal_error", "Internal server error")
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextUserRole, user.Role)
		c.Set(ContextUser, user)
		c.Set(ContextClaims, claims)

		c.Next()
	}
}

// AdminOnly must run after AuthMiddleware. The role is read from the stored
// user, so a demotion takes effect without a new login.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin() {
			httperr.Abort(c, http.StatusForbidden, "forbidden", "Admin access required")
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

func SessionClaims(c *gin.Context) *session.Claims {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*session.Claims)
	return claims
}

func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(session.CookieName); err == nil && cookie != "" {
		return cookie
	}

	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
