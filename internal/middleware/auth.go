package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ayurwell-backend/internal/auth"
	"ayurwell-backend/internal/metrics"
	"ayurwell-backend/internal/model"
	"ayurwell-backend/internal/service"
	"ayurwell-backend/pkg/logger"
)

const claimsKey = "ayurwell_claims"

func SetClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(claimsKey, claims)
}

// GetClaims returns the identity attached by Auth, or nil on routes that are
// not behind it.
func GetClaims(c *gin.Context) *auth.Claims {
	if v, exists := c.Get(claimsKey); exists {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// Auth rejects requests without a valid bearer token before any handler
// runs. A missing or malformed header and a token the provider refuses are
// told apart only by the message.
func Auth(provider auth.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			metrics.ObserveRequest("unauthenticated")
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{Error: service.MsgAuthRequired})
			return
		}

		claims, err := provider.Validate(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, auth.ErrInvalidToken) {
				logger.Warnf("token validation failed: %v", err)
			}
			metrics.ObserveRequest("unauthenticated")
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{Error: service.MsgAuthInvalid})
			return
		}

		SetClaims(c, claims)
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
