package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"studylife-go/internal/model"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	// 每个会话最多保留的消息条数
	maxHistoryMessages = 20
	conversationTTL    = 7 * 24 * time.Hour
)

// ConversationRepository 定义了对话历史记录的操作接口。
type ConversationRepository interface {
	GetOrCreateConversationID(ctx context.Context, userID uint) (string, error)
	GetConversationHistory(ctx context.Context, conversationID string) ([]model.ChatMessage, error)
	// AppendMessages 追加消息并只保留最近 maxHistoryMessages 条。
	AppendMessages(ctx context.Context, conversationID string, messages ...model.ChatMessage) error
}

type redisConversationRepository struct {
	redisClient *redis.Client
}

// NewConversationRepository 创建一个新的 ConversationRepository 实例。
// 未启用 Redis 时返回 nil，ConversationService 会跳过会话历史。
func NewConversationRepository(redisClient *redis.Client) ConversationRepository {
	if redisClient == nil {
		return nil
	}
	return &redisConversationRepository{redisClient: redisClient}
}

func currentConversationKey(userID uint) string {
	return fmt.Sprintf("studylife:user:%d:current_conversation", userID)
}

func conversationKey(conversationID string) string {
	return "studylife:conversation:" + conversationID
}

// GetOrCreateConversationID 获取或创建一个新的对话ID。
func (r *redisConversationRepository) GetOrCreateConversationID(ctx context.Context, userID uint) (string, error) {
	userKey := currentConversationKey(userID)
	convID, err := r.redisClient.Get(ctx, userKey).Result()
	if err == redis.Nil {
		convID = uuid.NewString()
		if err := r.redisClient.Set(ctx, userKey, convID, conversationTTL).Err(); err != nil {
			return "", fmt.Errorf("failed to set conversation id: %w", err)
		}
		return convID, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get conversation id: %w", err)
	}
	// 活跃会话顺延过期时间
	r.redisClient.Expire(ctx, userKey, conversationTTL)
	return convID, nil
}

// GetConversationHistory 从 Redis 获取对话历史记录。
func (r *redisConversationRepository) GetConversationHistory(ctx context.Context, conversationID string) ([]model.ChatMessage, error) {
	jsonData, err := r.redisClient.Get(ctx, conversationKey(conversationID)).Result()
	if err == redis.Nil {
		return []model.ChatMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation history: %w", err)
	}
	var messages []model.ChatMessage
	if err := json.Unmarshal([]byte(jsonData), &messages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation history: %w", err)
	}
	return messages, nil
}

func (r *redisConversationRepository) AppendMessages(ctx context.Context, conversationID string, messages ...model.ChatMessage) error {
	history, err := r.GetConversationHistory(ctx, conversationID)
	if err != nil {
		return err
	}
	history = TrimHistory(append(history, messages...))
	jsonData, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation history: %w", err)
	}
	if err := r.redisClient.Set(ctx, conversationKey(conversationID), jsonData, conversationTTL).Err(); err != nil {
		return fmt.Errorf("failed to set conversation history: %w", err)
	}
	return nil
}

// TrimHistory 只保留最近的 maxHistoryMessages 条消息。
func TrimHistory(messages []model.ChatMessage) []model.ChatMessage {
	if len(messages) > maxHistoryMessages {
		return messages[len(messages)-maxHistoryMessages:]
	}
	return messages
}
