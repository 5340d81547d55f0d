package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/alimgiray/lotdesk/internal/models"
	"github.com/alimgiray/lotdesk/internal/services"
	"github.com/alimgiray/lotdesk/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	claimsKey = "claims"
	userKey   = "user"
)

// Claims are the identity fields issued by the auth provider
type Claims struct {
	OrgID string `json:"org_id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

var (
	errMissingToken = errors.New("missing bearer token")
	errInvalidToken = errors.New("invalid token")
)

// RequireAuth verifies the HS256 bearer token, provisions the user and stores both in the context
func RequireAuth(secret []byte, userService *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := parseBearer(c.GetHeader("Authorization"), secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": err.Error()})
			return
		}

		user, err := userService.EnsureUser(&models.User{
			ID:    claims.Subject,
			OrgID: claims.OrgID,
			Email: claims.Email,
			Name:  claims.Name,
		})
		if err != nil {
			if models.IsValidationError(err) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "token is missing sub or org_id"})
				return
			}
			logger.WithError(err).Error("Failed to provision user")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
			return
		}

		c.Set(claimsKey, claims)
		c.Set(userKey, user)
		c.Next()
	}
}

func parseBearer(header string, secret []byte) (*Claims, error) {
	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(tokenString) == "" {
		return nil, errMissingToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(tokenString), claims, func(token *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		logger.WithError(err).Debug("Rejected bearer token")
		return nil, errInvalidToken
	}

	return claims, nil
}

// GetClaims returns the verified token claims, or nil outside RequireAuth
func GetClaims(c *gin.Context) *Claims {
	if v, ok := c.Get(claimsKey); ok {
		if claims, ok := v.(*Claims); ok {
			return claims
		}
	}
	return nil
}

// GetUser returns the provisioned user, or nil outside RequireAuth
func GetUser(c *gin.Context) *models.User {
	if v, ok := c.Get(userKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// OrgID returns the caller's organization
func OrgID(c *gin.Context) string {
	if user := GetUser(c); user != nil {
		return user.OrgID
	}
	return ""
}

// UserID returns the caller's user ID
func UserID(c *gin.Context) string {
	if user := GetUser(c); user != nil {
		return user.ID
	}
	return ""
}
