// ABOUTME: HS256 bearer tokens and auth middleware for the API double
// ABOUTME: Claims carry user_id, email and user_type like the real server

package apitest

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/2389/gigboard/internal/model"
)

// Claims is the token payload.
type Claims struct {
	UserID   int64          `json:"user_id"`
	Email    string         `json:"email"`
	UserType model.UserType `json:"user_type"`
	jwt.RegisteredClaims
}

const claimsKey = "claims"

// IssueToken signs a token for u that expires after ttl.
func (s *Server) IssueToken(u model.User, ttl time.Duration) string {
	s.mu.Lock()
	secret := s.secret
	now := s.now()
	s.mu.Unlock()

	claims := Claims{
		UserID:   u.ID,
		Email:    u.Email,
		UserType: u.UserType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(u.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		panic(err)
	}
	return token
}

func (s *Server) verify(tokenString string) (*Claims, error) {
	s.mu.Lock()
	secret := s.secret
	s.mu.Unlock()

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithTimeFunc(s.clock))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}
		claims, err := s.verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

func requireRole(role model.UserType) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := mustClaims(c)
		if claims.UserType != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": fmt.Sprintf("Only %ss can access this resource", role),
			})
			return
		}
		c.Next()
	}
}

func mustClaims(c *gin.Context) *Claims {
	return c.MustGet(claimsKey).(*Claims)
}
