package model

import (
	"time"

	"gorm.io/datatypes"
)

// PlanTask 是 AI 生成的每日计划中的一项任务。
type PlanTask struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// AIPlan 对应 ai_plans 表，保存 AI 生成的每日计划。
type AIPlan struct {
	ID        uint                          `gorm:"primaryKey" json:"id"`
	UserID    uint                          `gorm:"index;not null" json:"userId"`
	Date      time.Time                     `gorm:"index;not null" json:"date"`
	Summary   string                        `gorm:"type:text" json:"summary"`
	Tasks     datatypes.JSONSlice[PlanTask] `json:"tasks"`
	CreatedAt time.Time                     `gorm:"autoCreateTime" json:"createdAt"`
}

func (AIPlan) TableName() string {
	return "ai_plans"
}
