// Package model 包含了应用的数据模型定义。
package model

import "time"

// ChatMessage 代表一条对话消息，既用于请求体也用于 Redis 中的历史记录。
type ChatMessage struct {
	Role      string    `json:"role"` // "user" 或 "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}
