// Package middleware 存放 Gin 框架的中间件。
package middleware

import (
	"studylife-go/pkg/log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader 是请求 ID 的响应头。
const RequestIDHeader = "X-Request-ID"

// RequestLogger 是一个 Gin 中间件，每个请求记录一条结构化日志。
// 请求体不会被记录：对话内容可能包含个人信息。
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("requestID", requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		log.Infow("HTTP Request Log",
			"requestId", requestID,
			"statusCode", c.Writer.Status(),
			"latency", time.Since(startTime).String(),
			"clientIP", c.ClientIP(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"userId", c.GetUint(ctxUserID),
		)
	}
}
