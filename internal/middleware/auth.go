package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/auth"
	"storefront-backend/internal/cache"
	"storefront-backend/internal/logging"
	"storefront-backend/internal/response"
)

const claimsKey = "auth_claims"

const (
	msgMissingToken = "Authorization token is required."
	msgInvalidToken = "Invalid or expired token."
	msgWrongRole    = "You are not allowed to access this resource."
)

// Principals reports whether the account or seller a token was issued to still exists.
type Principals interface {
	Active(ctx context.Context, role string, id int64) (bool, error)
}

type Authenticator struct {
	issuer     *auth.Issuer
	cache      cache.Cache
	principals Principals
}

// NewAuthenticator builds the bearer-token check. A nil cache disables revocation and a
// nil principals skips the per-request existence lookup.
func NewAuthenticator(issuer *auth.Issuer, c cache.Cache, principals Principals) *Authenticator {
	if c == nil {
		c = cache.Nop{}
	}
	return &Authenticator{issuer: issuer, cache: c, principals: principals}
}

// Require accepts only bearer tokens issued for role that have not been revoked and
// whose principal has not been deleted.
func (a *Authenticator) Require(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if header == "" || token == "" || token == header {
			response.Abort(c, http.StatusUnauthorized, msgMissingToken)
			return
		}

		claims, err := a.issuer.Parse(token)
		if err != nil {
			logging.Entry(c).WithError(err).Debug("token rejected")
			response.Abort(c, http.StatusUnauthorized, msgInvalidToken)
			return
		}
		if claims.Role != role {
			response.Abort(c, http.StatusUnauthorized, msgWrongRole)
			return
		}

		revoked, err := a.cache.Exists(c.Request.Context(), cache.RevokedKey(claims.Id))
		if err != nil {
			// Revocation is best-effort.
			logging.Entry(c).WithError(err).Warn("revocation check failed")
		} else if revoked {
			response.Abort(c, http.StatusUnauthorized, msgInvalidToken)
			return
		}

		if a.principals != nil {
			active, err := a.principals.Active(c.Request.Context(), claims.Role, claims.ID)
			if err != nil {
				response.Abort(c, http.StatusInternalServerError, "principal lookup failed: "+err.Error())
				return
			}
			if !active {
				response.Abort(c, http.StatusUnauthorized, msgInvalidToken)
				return
			}
		}

		c.Set(claimsKey, claims)
		logging.WithEntry(c, logging.Entry(c).WithField(role+"_id", claims.ID))
		c.Next()
	}
}

// Claims returns the verified claims stored by Require.
func Claims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(claimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}
