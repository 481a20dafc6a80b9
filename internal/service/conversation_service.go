package service

import (
	"context"
	"studylife-go/internal/model"
	"studylife-go/internal/repository"
	"time"
)

// ConversationService 管理服务端保存的对话记忆。未配置 Redis 时 repo 为 nil，所有操作退化为空操作。
type ConversationService interface {
	CurrentConversationID(ctx context.Context, userID uint) (string, error)
	GetConversationHistory(ctx context.Context, userID uint) ([]model.ChatMessage, error)
	AppendTurn(ctx context.Context, conversationID, userMessage, reply string) error
}

type conversationService struct {
	repo repository.ConversationRepository
	now  func() time.Time
}

// NewConversationService 创建一个新的 ConversationService。
func NewConversationService(repo repository.ConversationRepository) ConversationService {
	return &conversationService{repo: repo, now: time.Now}
}

func (s *conversationService) CurrentConversationID(ctx context.Context, userID uint) (string, error) {
	if s.repo == nil {
		return "", nil
	}
	return s.repo.GetOrCreateConversationID(ctx, userID)
}

// GetConversationHistory 获取用户当前会话的消息历史。
func (s *conversationService) GetConversationHistory(ctx context.Context, userID uint) ([]model.ChatMessage, error) {
	if s.repo == nil {
		return []model.ChatMessage{}, nil
	}
	conversationID, err := s.repo.GetOrCreateConversationID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.GetConversationHistory(ctx, conversationID)
}

// AppendTurn 把一问一答追加到会话历史。
func (s *conversationService) AppendTurn(ctx context.Context, conversationID, userMessage, reply string) error {
	if s.repo == nil || conversationID == "" {
		return nil
	}
	now := s.now()
	return s.repo.AppendMessages(ctx, conversationID,
		model.ChatMessage{Role: "user", Content: userMessage, Timestamp: now},
		model.ChatMessage{Role: "assistant", Content: reply, Timestamp: now},
	)
}
