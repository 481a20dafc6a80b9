// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ContextUserID 是 AuthMiddleware 写入 gin.Context 的用户 ID 键。
const ContextUserID = "userID"

// ContextUsername 是 AuthMiddleware 写入 gin.Context 的用户名键。
const ContextUsername = "username"

// respondOK 写出 {success: true, data}。
func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// respondError 写出 {success: false, error}；非 release 模式下附带底层错误。
func respondError(c *gin.Context, status int, message string, err error) {
	body := gin.H{"success": false, "error": message}
	if err != nil && gin.Mode() != gin.ReleaseMode {
		body["details"] = err.Error()
	}
	c.JSON(status, body)
}

func currentUserID(c *gin.Context) (uint, bool) {
	id := c.GetUint(ContextUserID)
	if id == 0 {
		respondError(c, http.StatusUnauthorized, "未认证用户", nil)
		return 0, false
	}
	return id, true
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "无效的 ID", err)
		return 0, false
	}
	return uint(id), true
}
