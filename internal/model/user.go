// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// User 对应 users 表。教育背景字段会被汇总进 AI 对话上下文。
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"username"`
	Password     string    `gorm:"type:varchar(255);not null" json:"-"`
	DisplayName  string    `gorm:"type:varchar(100)" json:"displayName"`
	University   string    `gorm:"type:varchar(150)" json:"university"`
	Major        string    `gorm:"type:varchar(150)" json:"major"`
	AcademicYear string    `gorm:"type:varchar(50)" json:"academicYear"`
	Bio          string    `gorm:"type:text" json:"bio"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (User) TableName() string {
	return "users"
}

// Name 返回用于展示的名字。
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}
