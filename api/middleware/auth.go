/*
Copyright 2024 FeedChain Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package middleware

import (
	"context"
	"strings"

	"github.com/feedchain/feedchain/internal/apierror"
	"github.com/feedchain/feedchain/model"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const principalKey = "principal"

// TokenValidator resolves a bearer token to the caller it was issued to.
type TokenValidator interface {
	ValidateToken(token string) (model.Principal, error)
}

// PrincipalTracker records authenticated callers.
type PrincipalTracker interface {
	TrackPrincipal(ctx context.Context, principal model.Principal) error
}

// Authenticate requires a valid "Authorization: Bearer <token>" header and
// stores the resolved principal on the request context. A tracking failure
// is logged and does not fail the request.
func Authenticate(validator TokenValidator, tracker PrincipalTracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c.GetHeader("Authorization"))
		if token == "" {
			abort(c, apierror.NewAPIError(apierror.ErrUnauthorized, "Authentication required. Use the Authorization: Bearer header", nil))
			return
		}

		principal, err := validator.ValidateToken(token)
		if err != nil {
			abort(c, apierror.NewAPIError(apierror.ErrUnauthorized, "Invalid or expired token", nil))
			return
		}

		if tracker != nil {
			if err := tracker.TrackPrincipal(c.Request.Context(), principal); err != nil {
				logrus.WithError(err).WithField("user_id", principal.UserID).Warn("failed to record identity")
			}
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequireRole rejects authenticated callers whose role is not one of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := Principal(c)
		if !ok {
			abort(c, apierror.NewAPIError(apierror.ErrUnauthorized, "Authentication required", nil))
			return
		}
		for _, role := range roles {
			if principal.Role == role {
				c.Next()
				return
			}
		}
		abort(c, apierror.NewAPIError(apierror.ErrForbidden, "Insufficient role for this resource", nil))
	}
}

// Principal returns the caller stored by Authenticate.
func Principal(c *gin.Context) (model.Principal, bool) {
	value, exists := c.Get(principalKey)
	if !exists {
		return model.Principal{}, false
	}
	principal, ok := value.(model.Principal)
	return principal, ok
}

func extractBearer(header string) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func abort(c *gin.Context, err apierror.APIError) {
	c.AbortWithStatusJSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err})
}
