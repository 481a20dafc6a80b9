// Package tasks defines the structure for tasks that are sent to Kafka.
package tasks

import "fmt"

const (
	KindDaily   = "daily"
	KindMonthly = "monthly"
)

// SummaryTask 表示为某个用户生成一份每日或每月总结。
// Date 为 YYYY-MM-DD：每日总结取当天，每月总结取该月中的任意一天。
type SummaryTask struct {
	Kind   string `json:"kind"`
	UserID uint   `json:"user_id"`
	Date   string `json:"date"`
}

// Key 唯一标识一个任务，用于消息 key 与失败计数。
func (t SummaryTask) Key() string {
	return fmt.Sprintf("%s:%d:%s", t.Kind, t.UserID, t.Date)
}
