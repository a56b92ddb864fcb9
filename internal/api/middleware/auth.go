package middleware

import (
	"net/http"
	"strings"

	"classroom-service/internal/models"
	"classroom-service/internal/repositories/postgres"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type AuthMiddleware struct {
	jwtSecret string
	users     *postgres.UserRepository
}

func NewAuthMiddleware(jwtSecret string, users *postgres.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
		users:     users,
	}
}

// RequireAuth validates the bearer token and puts user_id and email on
// the context.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Code: "UNAUTHORIZED", Message: "authorization header is required"})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(am.jwtSecret), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Code: "UNAUTHORIZED", Message: "invalid token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Code: "UNAUTHORIZED", Message: "invalid token claims"})
			c.Abort()
			return
		}
		userID, ok := claims["user_id"].(float64)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Code: "UNAUTHORIZED", Message: "invalid user ID in token"})
			c.Abort()
			return
		}

		c.Set("user_id", uint(userID))
		c.Set("email", claims["email"])
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth. It reloads the user so a
// revoked admin flag takes effect immediately, not at token expiry.
func (am *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")
		user, err := am.users.GetByID(userID)
		if err != nil || !user.IsAdmin {
			c.JSON(http.StatusForbidden, models.ErrorResponse{Code: "FORBIDDEN", Message: "admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
