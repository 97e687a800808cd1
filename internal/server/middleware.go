package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/johnwalle/pharma-stock-api/internal/actorcontext"
)

// AuthRequired verifies the bearer token and injects the acting user into the
// request context for downstream services.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(raw) == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		claims, err := s.issuer.Parse(strings.TrimSpace(raw))
		if err != nil {
			AbortWithError(c, err)
			return
		}
		userID, err := snowflake.ParseString(claims.Subject)
		if err != nil || userID == 0 {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		actor := actorcontext.Actor{
			ID:   userID,
			Name: claims.Name,
			Role: string(claims.Role),
		}
		c.Request = c.Request.WithContext(actorcontext.WithActor(c.Request.Context(), actor))
		c.Next()
	}
}

// RequireRole allows the request through when the actor holds any of the
// given roles. Must run after AuthRequired.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorcontext.ActorFromContext(c.Request.Context())
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}
		AbortWithError(c, ErrForbidden)
	}
}
