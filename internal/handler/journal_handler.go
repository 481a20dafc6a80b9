package handler

import (
	"errors"
	"net/http"
	"studylife-go/internal/service"
	"studylife-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// JournalHandler 提供日记全文检索。
type JournalHandler struct {
	searchService service.JournalSearchService
}

func NewJournalHandler(searchService service.JournalSearchService) *JournalHandler {
	return &JournalHandler{searchService: searchService}
}

// Search 处理 GET /journals/search?q=。
func (h *JournalHandler) Search(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	query := c.Query("q")
	if query == "" {
		respondError(c, http.StatusBadRequest, "无效的查询参数", nil)
		return
	}

	hits, err := h.searchService.Search(c.Request.Context(), userID, query)
	if err != nil {
		if errors.Is(err, service.ErrSearchDisabled) {
			respondError(c, http.StatusServiceUnavailable, err.Error(), nil)
			return
		}
		log.Errorf("[JournalHandler] 日记检索失败, query: %s, error: %v", query, err)
		respondError(c, http.StatusInternalServerError, "搜索失败", err)
		return
	}
	log.Infof("[JournalHandler] 日记检索成功, query: '%s', 返回 %d 条结果", query, len(hits))
	respondOK(c, hits)
}
