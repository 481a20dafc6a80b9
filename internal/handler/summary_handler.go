package handler

import (
	"net/http"
	"studylife-go/internal/service"
	"studylife-go/pkg/log"
	"time"

	"github.com/gin-gonic/gin"
)

// SummaryHandler 按需生成每日/每月总结。
type SummaryHandler struct {
	summaryService service.SummaryService
	now            func() time.Time
}

func NewSummaryHandler(summaryService service.SummaryService) *SummaryHandler {
	return &SummaryHandler{summaryService: summaryService, now: time.Now}
}

// Daily 处理 POST /summary/daily。
func (h *SummaryHandler) Daily(c *gin.Context) {
	h.generate(c, service.SummaryDaily, "Daily summary generated")
}

// Monthly 处理 POST /summary/monthly。
func (h *SummaryHandler) Monthly(c *gin.Context) {
	h.generate(c, service.SummaryMonthly, "Monthly summary generated")
}

func (h *SummaryHandler) generate(c *gin.Context, kind, message string) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	result, err := h.summaryService.Generate(c.Request.Context(), kind, userID, h.now())
	if err != nil {
		log.Errorw("生成总结失败", "userId", userID, "kind", kind, "error", err)
		respondError(c, http.StatusInternalServerError, "Failed to generate summary", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
		"data":    result,
	})
}
