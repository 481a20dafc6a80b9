package model

import (
	"time"

	"gorm.io/datatypes"
)

// Journal 对应 journals 表。
type Journal struct {
	ID        uint                        `gorm:"primaryKey" json:"id"`
	UserID    uint                        `gorm:"index;not null" json:"userId"`
	Title     string                      `gorm:"type:varchar(255);not null" json:"title"`
	Content   string                      `gorm:"type:text;not null" json:"content"`
	Mood      string                      `gorm:"type:varchar(50)" json:"mood"`
	Tags      datatypes.JSONSlice[string] `json:"tags"`
	Date      time.Time                   `gorm:"index;not null" json:"date"`
	CreatedAt time.Time                   `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time                   `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Journal) TableName() string {
	return "journals"
}

// Lifestyle 对应 lifestyles 表，每个用户每天一条。
type Lifestyle struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"index;not null" json:"userId"`
	Date            time.Time `gorm:"index;not null" json:"date"`
	SleepHours      *float64  `json:"sleepHours"`
	ExerciseMinutes *int      `json:"exerciseMinutes"`
	WaterIntake     *float64  `json:"waterIntake"`
	MealQuality     string    `gorm:"type:varchar(50)" json:"mealQuality"`
	StressLevel     *int      `json:"stressLevel"`
	Notes           string    `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Lifestyle) TableName() string {
	return "lifestyles"
}
