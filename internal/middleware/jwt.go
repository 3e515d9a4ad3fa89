package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"RedCatch/internal/auth"
)

// JwtAuthMiddleware 校验访客 JWT，把 handle / name 放进 context
// 浏览器的 websocket 不能带 header，所以也接受 ?token=
func JwtAuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		claims, err := auth.ParseToken(secret, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("handle", claims.Subject)
		c.Set("name", claims.Name)
		c.Next()
	}
}
