package handler

import (
	"net/http"
	"studylife-go/internal/service"

	"github.com/gin-gonic/gin"
)

// HabitHandler 提供习惯列表与打卡切换；切换与对话中的 toggle_habit 共用同一逻辑。
type HabitHandler struct {
	habitService service.HabitService
}

func NewHabitHandler(habitService service.HabitService) *HabitHandler {
	return &HabitHandler{habitService: habitService}
}

// List 返回当前用户的全部习惯，已按今天的状态刷新。
func (h *HabitHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	habits, err := h.habitService.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to list habits", err)
		return
	}
	respondOK(c, habits)
}

// Toggle 切换今天的完成状态。
func (h *HabitHandler) Toggle(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	habitID, ok := pathID(c, "id")
	if !ok {
		return
	}
	habit, err := h.habitService.Toggle(c.Request.Context(), userID, habitID)
	if err != nil {
		if service.IsNotFound(err) {
			respondError(c, http.StatusNotFound, err.Error(), nil)
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to toggle habit", err)
		return
	}
	respondOK(c, habit)
}
