package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// UserIDKey is the key used to store the authenticated user ID in the context
const UserIDKey = "user_id"

// Authenticated validates the Bearer token and stores the caller's user ID in
// the gin context. Tokens are HMAC-signed with the shared secret and identify
// the user through the "sub" claim.
func Authenticated(logger *slog.Logger, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "Missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c, "Invalid authorization header")
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortUnauthorized(c, "Invalid token claims")
			return
		}

		sub, ok := claims["sub"].(string)
		if !ok {
			logger.Error("JWT subject missing or wrong type")
			abortUnauthorized(c, "Invalid token payload")
			return
		}

		userID, err := uuid.Parse(sub)
		if err != nil {
			logger.Error("JWT subject is not a valid user ID", "sub", sub)
			abortUnauthorized(c, "Invalid token payload")
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// GetUserID retrieves the authenticated user ID from the gin context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	if v, exists := c.Get(UserIDKey); exists {
		if userID, ok := v.(uuid.UUID); ok {
			return userID, true
		}
	}
	return uuid.Nil, false
}

func abortUnauthorized(c *gin.Context, message string) {
	correlationID := GetCorrelationID(c)

	response := gin.H{
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	}
	if correlationID != "" {
		response["correlation_id"] = correlationID
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, response)
}
