// middleware/jwt_middleware.go
package middleware

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// JwtCustomClaims for JWT token
type JwtCustomClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.StandardClaims
}

// Valid implements the Claims interface for Echo's JWT middleware.
func (c JwtCustomClaims) Valid() error {
	if c.ExpiresAt > 0 && time.Now().Unix() > c.ExpiresAt {
		return errors.New("token is expired")
	}
	if c.NotBefore > 0 && time.Now().Unix() < c.NotBefore {
		return errors.New("token used before valid")
	}
	return nil
}

// GetJWTSecret returns the JWT secret from environment variables
func GetJWTSecret() string {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		panic("JWT_SECRET environment variable is required")
	}
	return secret
}

// tokenTTL returns the configured token lifetime, default seven days.
func tokenTTL() time.Duration {
	if hoursStr := os.Getenv("JWT_EXPIRES_HOURS"); hoursStr != "" {
		if d, err := time.ParseDuration(hoursStr + "h"); err == nil {
			return d
		}
	}
	return 7 * 24 * time.Hour
}

// JWTMiddleware returns a configured JWT middleware
func JWTMiddleware() echo.MiddlewareFunc {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Printf("Warning: JWT_SECRET environment variable is not set")
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				return echo.NewHTTPError(echo.ErrUnauthorized.Code, "JWT configuration error")
			}
		}
	}

	return middleware.JWTWithConfig(middleware.JWTConfig{
		SigningKey: []byte(secret),
		Claims:     &JwtCustomClaims{},
		SuccessHandler: func(c echo.Context) {
			user := c.Get("user").(*jwt.Token)
			claims := user.Claims.(*JwtCustomClaims)

			c.Set("userId", claims.UserID)
			c.Set("role", claims.Role)
			c.Set("email", claims.Email)
		},
		ErrorHandler: func(err error) error {
			log.Printf("JWT middleware error: %v", err)
			return echo.NewHTTPError(echo.ErrUnauthorized.Code, "Invalid or expired token")
		},
	})
}

// GenerateJWT creates a signed token carrying the user's identity and role.
func GenerateJWT(userID, email, role string) (string, error) {
	now := time.Now()
	claims := &JwtCustomClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(tokenTTL()).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", errors.New("JWT_SECRET environment variable is required")
	}
	return token.SignedString([]byte(secret))
}

// ParseToken verifies a raw bearer token and returns its claims. Used by the
// WebSocket handler, which authenticates outside the HTTP middleware chain.
func ParseToken(tokenString string) (*JwtCustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(GetJWTSecret()), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*JwtCustomClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// GetUserFromToken extracts user claims from the request context.
func GetUserFromToken(c echo.Context) *JwtCustomClaims {
	user := c.Get("user")
	if user == nil {
		return nil
	}

	token, ok := user.(*jwt.Token)
	if !ok {
		return nil
	}

	claims, ok := token.Claims.(*JwtCustomClaims)
	if !ok {
		return nil
	}

	return claims
}

// ExtractRole safely extracts the user role from the context.
func ExtractRole(c echo.Context) string {
	if role, ok := c.Get("role").(string); ok && role != "" {
		return role
	}
	if claims := GetUserFromToken(c); claims != nil {
		return claims.Role
	}
	return ""
}

// GetUserIDFromToken returns the authenticated user's id, or "" when absent.
func GetUserIDFromToken(c echo.Context) string {
	if userID, ok := c.Get("userId").(string); ok && userID != "" {
		return userID
	}
	if claims := GetUserFromToken(c); claims != nil {
		return claims.UserID
	}
	return ""
}
