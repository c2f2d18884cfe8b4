package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/elearn-api/internal/models"
	appErrors "github.com/noah-isme/elearn-api/pkg/errors"
	"github.com/noah-isme/elearn-api/pkg/response"
)

// Policy gates routes on the capabilities of the resolved identity.
type Policy struct {
	loginPath string
}

// NewPolicy builds a Policy redirecting anonymous browser requests to loginPath.
func NewPolicy(loginPath string) *Policy {
	if loginPath == "" {
		loginPath = "/login"
	}
	return &Policy{loginPath: loginPath}
}

// Require admits identities holding any of caps. With no caps it only requires authentication.
func (p *Policy) Require(caps ...models.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := CurrentIdentity(c)
		if identity == nil {
			p.unauthenticated(c)
			return
		}
		if len(caps) == 0 {
			c.Next()
			return
		}
		for _, capability := range caps {
			if identity.Can(capability) {
				c.Next()
				return
			}
		}
		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}

func (p *Policy) unauthenticated(c *gin.Context) {
	if wantsHTML(c.Request) {
		c.Redirect(http.StatusFound, p.loginPath+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
		c.Abort()
		return
	}
	response.Error(c, appErrors.ErrUnauthorized)
	c.Abort()
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
