package model

import "time"

// Course 对应 courses 表。
type Course struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index;not null" json:"userId"`
	Name       string    `gorm:"type:varchar(200);not null" json:"name"`
	Code       string    `gorm:"type:varchar(50)" json:"code"`
	Instructor string    `gorm:"type:varchar(100)" json:"instructor"`
	Credits    int       `json:"credits"`
	Semester   string    `gorm:"type:varchar(50)" json:"semester"`
	Schedule   string    `gorm:"type:varchar(200)" json:"schedule"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Course) TableName() string {
	return "courses"
}
