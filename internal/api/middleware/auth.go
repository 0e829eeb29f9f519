package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Mtaasisi/POS-sub062/internal/auth"
	"github.com/Mtaasisi/POS-sub062/internal/domain"
	"github.com/Mtaasisi/POS-sub062/internal/repository"
)

const ActorContextKey = "actor"

// AuthMiddleware resolves the actor behind the bearer credential. API keys
// (prefixed shp_) are checked against api_clients, anything else must be a
// token signed with the configured secret.
func AuthMiddleware(tokens *auth.Tokens, clients repository.APIClientRepository, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		// Extract Bearer token
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		credential := strings.TrimSpace(parts[1])
		if credential == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing credential"})
			c.Abort()
			return
		}

		var actor *domain.Actor
		if strings.HasPrefix(credential, auth.APIKeyPrefix) {
			client, err := clients.GetByAPIKey(c.Request.Context(), credential)
			if err != nil {
				logger.Warn("Failed to authenticate api client", zap.Error(err))
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
				c.Abort()
				return
			}
			if !client.IsActive {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "api client is inactive"})
				c.Abort()
				return
			}
			actor = &domain.Actor{ID: client.ID, Name: client.Name, Role: client.Role}
		} else {
			verified, err := tokens.Verify(credential)
			if err != nil {
				logger.Warn("Failed to verify token", zap.Error(err))
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
				c.Abort()
				return
			}
			actor = verified
		}

		// Store actor in both contexts; services read it from the request context
		c.Set(ActorContextKey, actor)
		c.Request = c.Request.WithContext(auth.WithActor(c.Request.Context(), actor))
		c.Next()
	}
}

// GetActorFromContext retrieves the actor from the Gin context
func GetActorFromContext(c *gin.Context) (*domain.Actor, bool) {
	actor, exists := c.Get(ActorContextKey)
	if !exists {
		return nil, false
	}

	a, ok := actor.(*domain.Actor)
	return a, ok
}
