package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/promptinvoice/internal/auth/domain"
	obscontext "github.com/smallbiznis/promptinvoice/internal/observability/context"
)

const contextUserIDKey = "user_id"

// AuthRequired verifies the bearer token and stores the caller's user id on
// the gin and request contexts.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			AbortWithError(c, authdomain.ErrMissingToken)
			return
		}

		principal, err := s.verifier.Verify(token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextUserIDKey, principal.UserID)
		c.Request = c.Request.WithContext(obscontext.WithUserID(c.Request.Context(), principal.UserID))
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func userIDFromContext(c *gin.Context) string {
	return c.GetString(contextUserIDKey)
}
