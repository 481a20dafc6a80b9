package handler

import (
	"errors"
	"net/http"
	"strings"
	"studylife-go/internal/model"
	"studylife-go/internal/service"
	"studylife-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// ChatHandler 负责处理对话请求与会话历史查询。
type ChatHandler struct {
	chatService         service.ChatService
	conversationService service.ConversationService
}

// NewChatHandler 创建一个新的 ChatHandler。
func NewChatHandler(chatService service.ChatService, conversationService service.ConversationService) *ChatHandler {
	return &ChatHandler{
		chatService:         chatService,
		conversationService: conversationService,
	}
}

// ChatRequest 是 POST /chat 的请求体。省略 conversation_history 时使用服务端历史。
type ChatRequest struct {
	Message             string              `json:"message"`
	ConversationHistory []model.ChatMessage `json:"conversation_history"`
}

// Chat 处理一轮对话。
func (h *ChatHandler) Chat(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Message is required", err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(c, http.StatusBadRequest, "Message is required", nil)
		return
	}

	reply, err := h.chatService.Chat(c.Request.Context(), userID, service.ChatInput{
		Message: req.Message,
		History: req.ConversationHistory,
	})
	if err != nil {
		log.Errorw("处理对话失败", "userId", userID, "error", err)
		msg := "Failed to process chat message"
		if errors.Is(err, service.ErrAIService) {
			msg = service.ErrAIService.Error()
		}
		respondError(c, http.StatusInternalServerError, msg, err)
		return
	}

	log.Infow("对话完成", "userId", userID, "actions", len(reply.Actions), "results", len(reply.ActionResults))
	respondOK(c, reply)
}

// History 返回当前用户在服务端保存的会话历史。
func (h *ChatHandler) History(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	history, err := h.conversationService.GetConversationHistory(c.Request.Context(), userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve conversation history", err)
		return
	}
	respondOK(c, history)
}
