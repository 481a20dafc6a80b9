package model

import "time"

const (
	NotificationTypeInfo = "info"

	NotificationSourceDailySummary   = "daily_summary"
	NotificationSourceMonthlySummary = "monthly_summary"
)

// Notification 对应 notifications 表。Action 用于前端路由跳转。
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"userId"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Type      string    `gorm:"type:varchar(20);not null;default:info" json:"type"`
	Source    string    `gorm:"type:varchar(50)" json:"source"`
	Action    string    `gorm:"type:varchar(100)" json:"action"`
	Read      bool      `gorm:"column:is_read;not null;default:false" json:"read"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
}

func (Notification) TableName() string {
	return "notifications"
}
