package model

import (
	"hash/fnv"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Skill 对应 skills 表。
// (user_id, name_key) 上的唯一索引保证同一用户下技能名大小写不敏感唯一。
type Skill struct {
	ID             uint               `gorm:"primaryKey" json:"id"`
	UserID         uint               `gorm:"not null;uniqueIndex:idx_skill_user_name_key" json:"userId"`
	Name           string             `gorm:"type:varchar(191);not null" json:"name"`
	NameKey        string             `gorm:"type:varchar(191);not null;uniqueIndex:idx_skill_user_name_key" json:"-"`
	Category       string             `gorm:"type:varchar(100);not null;default:General" json:"category"`
	Level          string             `gorm:"type:varchar(50);not null;default:beginner" json:"level"`
	Description    string             `gorm:"type:text" json:"description"`
	GoalStatement  string             `gorm:"type:text" json:"goalStatement"`
	DurationMonths *int               `json:"durationMonths"`
	EstimatedHours *float64           `json:"estimatedHours"`
	StartDate      *time.Time         `json:"startDate"`
	EndDate        *time.Time         `json:"endDate"`
	AIGenerated    bool               `gorm:"not null;default:false" json:"aiGenerated"`
	ResourceCount  int                `gorm:"not null;default:0" json:"resourceCount"`
	Progress       float64            `gorm:"not null;default:0" json:"progress"`
	TimeSpent      float64            `gorm:"not null;default:0" json:"timeSpent"`
	Gradient       string             `gorm:"type:varchar(100)" json:"gradient"`
	Milestones     []Milestone        `gorm:"foreignKey:SkillID;constraint:OnDelete:CASCADE" json:"milestones,omitempty"`
	Resources      []LearningResource `gorm:"foreignKey:SkillID;constraint:OnDelete:CASCADE" json:"resources,omitempty"`
	CreatedAt      time.Time          `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time          `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Skill) TableName() string {
	return "skills"
}

// BeforeSave 维护 NameKey 与 Gradient。
func (s *Skill) BeforeSave(tx *gorm.DB) error {
	s.NameKey = SkillNameKey(s.Name)
	if s.Gradient == "" {
		s.Gradient = GradientFor(s.Name)
	}
	return nil
}

// SkillNameKey 是技能名的去重键：去空白并转小写。
func SkillNameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

var skillGradients = []string{
	"from-blue-500 to-purple-600",
	"from-green-400 to-blue-500",
	"from-pink-500 to-orange-400",
	"from-yellow-400 to-red-500",
	"from-indigo-500 to-cyan-400",
	"from-teal-400 to-emerald-600",
}

// GradientFor 按名称稳定地挑选一个卡片渐变色。
func GradientFor(name string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(SkillNameKey(name)))
	return skillGradients[h.Sum32()%uint32(len(skillGradients))]
}

// Milestone 对应 milestones 表，按 Order 排序。
type Milestone struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SkillID   uint      `gorm:"index;not null" json:"skillId"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Completed bool      `gorm:"not null;default:false" json:"completed"`
	Order     int       `gorm:"column:sort_order;not null;default:0" json:"order"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Milestone) TableName() string {
	return "milestones"
}

// LearningResource 对应 learning_resources 表。
type LearningResource struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SkillID     uint      `gorm:"index;not null" json:"skillId"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Type        string    `gorm:"type:varchar(50);not null;default:article" json:"type"`
	URL         string    `gorm:"type:varchar(500)" json:"url"`
	Content     string    `gorm:"type:text" json:"content"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (LearningResource) TableName() string {
	return "learning_resources"
}
