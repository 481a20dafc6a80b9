package handler

import (
	"errors"
	"net/http"
	"studylife-go/internal/service"
	"studylife-go/pkg/log"
	"time"

	"github.com/gin-gonic/gin"
)

// UserHandler 负责处理所有与普通用户相关的 API 请求。
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler 创建一个新的 UserHandler 实例。
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRequest 定义了用户注册 API 的请求体结构。
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

// Register 处理用户注册请求。
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Register: Invalid request payload, error: %v", err)
		respondError(c, http.StatusBadRequest, "无效的请求负载：用户名和密码不能为空", err)
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			respondError(c, http.StatusConflict, err.Error(), nil)
			return
		}
		log.Errorf("Register: User registration failed for '%s', error: %v", req.Username, err)
		respondError(c, http.StatusInternalServerError, "注册失败", err)
		return
	}

	log.Infof("User '%s' registered successfully", user.Username)
	respondOK(c, newProfileResponse(user.ID, user.Username, user.DisplayName, user.CreatedAt))
}

// LoginRequest 定义了用户登录 API 的请求体结构。
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 处理用户登录请求。
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Login: Invalid request payload, error: %v", err)
		respondError(c, http.StatusBadRequest, "无效的请求负载：用户名和密码不能为空", err)
		return
	}

	accessToken, refreshToken, err := h.userService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		log.Warnf("Login: User authentication failed for '%s', error: %v", req.Username, err)
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, "无效的凭证", nil)
			return
		}
		respondError(c, http.StatusInternalServerError, "登录失败", err)
		return
	}

	log.Infof("User '%s' logged in successfully", req.Username)
	respondOK(c, gin.H{
		"token":        accessToken,
		"refreshToken": refreshToken,
	})
}

// ProfileResponse 定义了获取用户个人信息 API 的响应体结构。
type ProfileResponse struct {
	ID          uint      `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func newProfileResponse(id uint, username, displayName string, createdAt time.Time) ProfileResponse {
	return ProfileResponse{ID: id, Username: username, DisplayName: displayName, CreatedAt: createdAt}
}

// GetProfile 获取当前登录用户的个人信息。
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	user, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if service.IsNotFound(err) {
			respondError(c, http.StatusNotFound, err.Error(), nil)
			return
		}
		respondError(c, http.StatusInternalServerError, "无法获取用户信息", err)
		return
	}
	respondOK(c, newProfileResponse(user.ID, user.Username, user.DisplayName, user.CreatedAt))
}

// RefreshTokenRequest 定义了刷新 token API 的请求体结构。
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshToken 处理刷新 token 的请求。
func (h *UserHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("RefreshToken: Invalid request payload, error: %v", err)
		respondError(c, http.StatusBadRequest, "无效的请求负载：refreshToken 不能为空", err)
		return
	}

	newAccessToken, newRefreshToken, err := h.userService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		log.Warnf("RefreshToken: Failed to refresh token, error: %v", err)
		respondError(c, http.StatusUnauthorized, "无效的 refresh token", nil)
		return
	}

	log.Info("Token refreshed successfully")
	respondOK(c, gin.H{
		"token":        newAccessToken,
		"refreshToken": newRefreshToken,
	})
}
