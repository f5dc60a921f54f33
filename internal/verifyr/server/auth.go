package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/vaibhaw-/VerifyR/internal/verifyr/engine"
	"github.com/vaibhaw-/VerifyR/internal/verifyr/logger"
)

const (
	principalHeader = "X-Principal"
	callerKey       = "caller"
)

// IdentityMiddleware resolves the caller of a request. With a secret the
// caller is the sub claim of an HS256 bearer token, otherwise the
// X-Principal header.
func IdentityMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		var caller string
		if len(secret) > 0 {
			h := c.GetHeader("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"err": "missing bearer token"})
				return
			}
			tok, err := jwt.Parse(h[7:], func(t *jwt.Token) (interface{}, error) { return secret, nil },
				jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !tok.Valid {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"err": "invalid token"})
				return
			}
			caller, _ = tok.Claims.GetSubject()
		} else {
			caller = c.GetHeader(principalHeader)
		}
		if caller == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"err": "caller identity required"})
			return
		}
		c.Set(callerKey, engine.Principal(caller))
		c.Next()
	}
}

// IssueToken signs an HS256 token naming p as subject.
func IssueToken(secret []byte, p engine.Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   string(p),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func callerOf(c *gin.Context) engine.Principal {
	p, _ := c.Get(callerKey)
	caller, _ := p.(engine.Principal)
	return caller
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.L().Debugw("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
