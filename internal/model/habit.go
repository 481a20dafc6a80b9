package model

import (
	"time"

	"gorm.io/datatypes"
)

// HabitCompletion 是某一天的打卡记录，Date 为 YYYY-MM-DD。
type HabitCompletion struct {
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
}

// Habit 对应 habits 表。
// Completed 与 Streak 由 CompletionHistory 推导，每次写入时重新计算。
type Habit struct {
	ID                uint                                 `gorm:"primaryKey" json:"id"`
	UserID            uint                                 `gorm:"index;not null" json:"userId"`
	Name              string                               `gorm:"type:varchar(200);not null" json:"name"`
	Target            string                               `gorm:"type:varchar(100)" json:"target"`
	Time              string                               `gorm:"type:varchar(50)" json:"time"`
	Streak            int                                  `gorm:"not null;default:0" json:"streak"`
	Completed         bool                                 `gorm:"not null;default:false" json:"completed"`
	CompletionHistory datatypes.JSONSlice[HabitCompletion] `json:"completionHistory"`
	CreatedAt         time.Time                            `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time                            `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Habit) TableName() string {
	return "habits"
}
