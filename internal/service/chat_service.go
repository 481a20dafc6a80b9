// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"fmt"
	"strings"
	"studylife-go/internal/model"
	"studylife-go/internal/repository"
	"studylife-go/pkg/llm"
	"studylife-go/pkg/log"
	"time"
)

// ChatInput 是一轮对话的输入。History 为 nil 时使用服务端保存的会话历史。
type ChatInput struct {
	Message string
	History []model.ChatMessage
}

// ChatService 编排一轮对话：聚合上下文 → 调用 AI 服务 → 顺序执行动作 → 组装响应。
type ChatService interface {
	Chat(ctx context.Context, userID uint, in ChatInput) (*ChatReply, error)
}

type chatService struct {
	users         repository.UserRepository
	contexts      ContextService
	gateway       llm.Client
	actions       ActionService
	conversations ConversationService
	locker        repository.UserLocker
}

// NewChatService 创建一个新的 ChatService 实例。locker 为 nil 时不加锁。
func NewChatService(
	users repository.UserRepository,
	contexts ContextService,
	gateway llm.Client,
	actions ActionService,
	conversations ConversationService,
	locker repository.UserLocker,
) ChatService {
	if locker == nil {
		locker = repository.NoopLocker{}
	}
	return &chatService{
		users:         users,
		contexts:      contexts,
		gateway:       gateway,
		actions:       actions,
		conversations: conversations,
		locker:        locker,
	}
}

func (s *chatService) Chat(ctx context.Context, userID uint, in ChatInput) (*ChatReply, error) {
	// 1. 用户名只用于称呼，查询失败不影响对话
	var userName string
	if u, err := s.users.FindByID(ctx, userID); err == nil {
		userName = u.Name()
	} else {
		log.Warnw("查询用户信息失败", "userId", userID, "error", err)
	}

	// 2. 会话历史：客户端未提供时使用 Redis 中的记录
	conversationID, err := s.conversations.CurrentConversationID(ctx, userID)
	if err != nil {
		log.Warnw("获取会话 ID 失败", "userId", userID, "error", err)
	}
	history := in.History
	if history == nil {
		history, err = s.conversations.GetConversationHistory(ctx, userID)
		if err != nil {
			log.Warnw("加载会话历史失败", "userId", userID, "error", err)
			history = nil
		}
	}

	// 3. 上下文聚合
	structured, err := s.contexts.Build(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to build context: %w", err)
	}

	// 4. 调用 AI 服务，失败时尚未执行任何动作
	resp, err := s.gateway.Chat(ctx, llm.ChatRequest{
		UserID:              llm.UserIDString(userID),
		UserName:            userName,
		Message:             in.Message,
		ConversationHistory: toLLMMessages(history),
		StructuredContext:   structured,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAIService, err)
	}

	// 5. 顺序执行动作。持有用户锁期间同一用户的其他请求会等待；拿不到锁时依然执行，由唯一索引兜底
	var results []model.ActionResult
	if len(resp.Actions) > 0 {
		unlock, err := s.locker.Lock(ctx, userID)
		if err != nil {
			log.Warnw("获取用户分发锁失败，继续执行", "userId", userID, "error", err)
		}
		results = s.actions.Dispatch(ctx, userID, resp.Actions)
		unlock()
	}

	if resp.ConversationID == "" {
		resp.ConversationID = conversationID
	}

	// 6. 使用后台上下文保存对话，即使原始请求已结束
	saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.conversations.AppendTurn(saveCtx, conversationID, in.Message, resp.Response); err != nil {
		log.Errorf("Failed to save conversation history: %v", err)
	}

	return ComposeResponse(resp, results), nil
}

func toLLMMessages(history []model.ChatMessage) []llm.Message {
	out := make([]llm.Message, 0, len(history))
	for _, m := range history {
		role := strings.ToLower(m.Role)
		if role != "user" && role != "assistant" {
			continue
		}
		out = append(out, llm.Message{Role: role, Content: m.Content})
	}
	return out
}
