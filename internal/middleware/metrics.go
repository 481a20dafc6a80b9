package middleware

import (
	"studylife-go/pkg/metrics"
	"time"

	"github.com/gin-gonic/gin"
)

// Metrics 记录每个请求的耗时。
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		metrics.ObserveHTTP(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
