// Package llm 是外部 AI 微服务的客户端（Model Gateway）。
// 每轮对话只发出一次请求，不做重试。
package llm

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"studylife-go/internal/config"
	"studylife-go/internal/model"
	"studylife-go/pkg/metrics"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrEmptyResponse 表示 AI 服务返回的 JSON 缺少 response 字段。
var ErrEmptyResponse = errors.New("ai service returned no response text")

// Client 定义了 Model Gateway 的接口。
type Client interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// Message 表示一条角色消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest 是发往 {AI_SERVICE_URL}/chat 的请求体。
type ChatRequest struct {
	UserID              string    `json:"user_id"`
	UserName            string    `json:"user_name,omitempty"`
	Message             string    `json:"message"`
	ConversationHistory []Message `json:"conversation_history"`
	StructuredContext   string    `json:"structured_context"`
}

// ChatResponse 是 AI 服务的响应：回复文本与可选的动作列表。
type ChatResponse struct {
	Response       string              `json:"response"`
	ConversationID string              `json:"conversation_id,omitempty"`
	Actions        []model.ModelAction `json:"actions,omitempty"`
}

type errorBody struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

type gatewayClient struct {
	client *resty.Client
}

// NewClient 根据配置创建 Model Gateway 客户端。
func NewClient(cfg config.AIServiceConfig) Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	c := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	return &gatewayClient{client: c}
}

// UserIDString 将数据库用户 ID 转为 AI 服务使用的字符串形式。
func UserIDString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// Chat 调用 AI 服务的 /chat 接口。
func (c *gatewayClient) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if req.ConversationHistory == nil {
		req.ConversationHistory = []Message{}
	}

	start := time.Now()
	var out ChatResponse
	var errBody errorBody
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(&req).
		SetResult(&out).
		SetError(&errBody).
		Post("/chat")
	metrics.ObserveGateway(start, resp == nil || resp.IsError() || err != nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call ai service: %w", err)
	}
	if resp.IsError() {
		msg := errBody.Detail
		if msg == "" {
			msg = errBody.Error
		}
		if msg == "" {
			msg = resp.String()
		}
		return nil, fmt.Errorf("ai service returned status %d: %s", resp.StatusCode(), msg)
	}
	if out.Response == "" {
		return nil, ErrEmptyResponse
	}
	return &out, nil
}
