package auth

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readtrack/internal/apperr"
)

// ContextKeyUserID holds the authenticated user's id.
const ContextKeyUserID = "auth_user_id"

const (
	MsgMissingBearer = "Missing bearer token"
	MsgForbidden     = "Forbidden"
)

// Middleware authenticates API requests with bearer tokens.
type Middleware struct {
	service *Service
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(service *Service) *Middleware {
	return &Middleware{service: service}
}

// RequireBearer rejects requests without a valid bearer token and stores
// the resolved user in the context.
func (m *Middleware) RequireBearer() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			abort(c, http.StatusUnauthorized, apperr.KindUnauthorized, MsgMissingBearer)
			return
		}

		user, err := m.service.ResolveUser(c.Request.Context(), parts[1])
		if err != nil {
			if apperr.KindOf(err) == apperr.KindUnauthorized {
				abort(c, http.StatusUnauthorized, apperr.KindUnauthorized, MsgUnauthorized)
				return
			}
			_ = c.Error(err)
			abort(c, http.StatusInternalServerError, apperr.KindInternal, "internal server error")
			return
		}

		c.Set(ContextKeyUserID, user.ID)
		c.Next()
	}
}

// RequireSelf only lets the authenticated user act on their own resources,
// identified by the named path parameter. Malformed ids are left for the
// handler to reject.
func RequireSelf(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param(param), 10, 32)
		if err != nil {
			c.Next()
			return
		}
		if uint(id) != GetUserID(c) {
			abort(c, http.StatusForbidden, apperr.KindForbidden, MsgForbidden)
			return
		}
		c.Next()
	}
}

func abort(c *gin.Context, status int, kind apperr.Kind, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": message,
		"code":  string(kind),
	})
}

// GetUserID retrieves the authenticated user's ID from the context, or 0.
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyUserID); exists {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return 0
}
