package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AccessCodeHeader carries the shared code when no bearer token is sent.
const AccessCodeHeader = "X-Access-Code"

// Middleware rejects requests whose credential the verifier does not accept.
func Middleware(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		cred := ExtractCredential(c)
		if cred == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing credential"})
			return
		}
		if !v.Verify(c.Request.Context(), cred) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credential"})
			return
		}
		c.Next()
	}
}

// ExtractCredential reads a Bearer token, falling back to the access code header.
func ExtractCredential(c *gin.Context) string {
	bearer := c.GetHeader("Authorization")
	if len(bearer) > 7 && strings.HasPrefix(bearer, "Bearer ") {
		return strings.TrimSpace(bearer[7:])
	}
	return strings.TrimSpace(c.GetHeader(AccessCodeHeader))
}
