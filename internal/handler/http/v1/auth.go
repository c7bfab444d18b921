package v1

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AdminAuthMiddleware пропускает только запросы администратора с одним из настроенных ключей в X-API-Key.
// Пустой список ключей закрывает административные маршруты целиком.
func AdminAuthMiddleware(keys []string, log *logrus.Logger) gin.HandlerFunc {
	allowed := make([][]byte, 0, len(keys))
	for _, k := range keys {
		allowed = append(allowed, []byte(k))
	}

	return func(c *gin.Context) {
		entry := log.WithFields(logrus.Fields{"path": c.FullPath(), "client_ip": c.ClientIP()})

		presented := []byte(c.GetHeader("X-API-Key"))
		if len(presented) == 0 {
			entry.Warn("Admin request without API key")
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Error: "API key required"})
			return
		}

		for _, key := range allowed {
			if subtle.ConstantTimeCompare(key, presented) == 1 {
				c.Next()
				return
			}
		}

		entry.Warn("Admin request with unknown API key")
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Error: "invalid API key"})
	}
}
