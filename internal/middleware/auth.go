package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/elearn-api/internal/models"
	appErrors "github.com/noah-isme/elearn-api/pkg/errors"
	"github.com/noah-isme/elearn-api/pkg/logger"
	"github.com/noah-isme/elearn-api/pkg/response"
)

// ContextIdentityKey is the gin context key storing the resolved *models.Identity.
const ContextIdentityKey = "identity"

type identityResolver interface {
	ValidateToken(tokenString string) (*models.JWTClaims, error)
	Identify(ctx context.Context, userID string) (*models.Identity, error)
}

type sessionReader interface {
	UserID(r *http.Request) string
}

// Authenticate resolves the caller from a Bearer token, falling back to the session cookie.
// Requests without credentials pass through anonymously; a bad Bearer token is rejected.
func Authenticate(auth identityResolver, sessions sessionReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := resolveIdentity(c, auth, sessions)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if identity != nil {
			setIdentity(c, identity)
		}
		c.Next()
	}
}

// OptionalAuthenticate attaches the identity when it resolves and never blocks.
func OptionalAuthenticate(auth identityResolver, sessions sessionReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity, err := resolveIdentity(c, auth, sessions); err == nil && identity != nil {
			setIdentity(c, identity)
		}
		c.Next()
	}
}

// CurrentIdentity returns the identity resolved for the request, or nil.
func CurrentIdentity(c *gin.Context) *models.Identity {
	value, ok := c.Get(ContextIdentityKey)
	if !ok {
		return nil
	}
	identity, _ := value.(*models.Identity)
	return identity
}

func setIdentity(c *gin.Context, identity *models.Identity) {
	c.Set(ContextIdentityKey, identity)
	c.Set(logger.UserIDKey, identity.UserID)
}

func resolveIdentity(c *gin.Context, auth identityResolver, sessions sessionReader) (*models.Identity, error) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header")
		}
		claims, err := auth.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, err
		}
		return auth.Identify(c.Request.Context(), claims.UserID)
	}

	if sessions == nil {
		return nil, nil
	}
	userID := sessions.UserID(c.Request)
	if userID == "" {
		return nil, nil
	}
	identity, err := auth.Identify(c.Request.Context(), userID)
	if err != nil {
		// A stale session (deleted or deactivated account) reads as anonymous.
		var appErr *appErrors.Error
		if errors.As(err, &appErr) && appErr.Status < http.StatusInternalServerError {
			return nil, nil
		}
		return nil, err
	}
	return identity, nil
}
