package model

import "time"

const (
	FinanceTypeIncome  = "income"
	FinanceTypeExpense = "expense"
)

// Finance 对应 finances 表，记录一笔收入或支出。
// GoalID 非空时这笔记录计入对应储蓄目标的进度。
type Finance struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"index;not null" json:"userId"`
	Type          string    `gorm:"type:varchar(16);index;not null" json:"type"`
	Amount        float64   `gorm:"not null" json:"amount"`
	Category      string    `gorm:"type:varchar(100);not null" json:"category"`
	Description   string    `gorm:"type:varchar(500)" json:"description"`
	Date          time.Time `gorm:"index;not null" json:"date"`
	PaymentMethod string    `gorm:"type:varchar(50)" json:"paymentMethod"`
	Recurring     bool      `gorm:"not null;default:false" json:"recurring"`
	Frequency     string    `gorm:"type:varchar(50)" json:"frequency"`
	AIGenerated   bool      `gorm:"not null;default:false" json:"aiGenerated"`
	GoalID        *uint     `gorm:"index" json:"goalId"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Finance) TableName() string {
	return "finances"
}

// SavingsGoal 对应 savings_goals 表。
// CurrentAmount 是关联 Finance 记录的派生缓存，每次相关写操作后重新计算覆盖。
type SavingsGoal struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `gorm:"index;not null" json:"userId"`
	Title         string     `gorm:"type:varchar(200);not null" json:"title"`
	TargetAmount  float64    `gorm:"not null" json:"targetAmount"`
	CurrentAmount float64    `gorm:"not null;default:0" json:"currentAmount"`
	DueDate       *time.Time `json:"dueDate"`
	Priority      string     `gorm:"type:varchar(20);not null;default:medium" json:"priority"`
	Status        string     `gorm:"type:varchar(20);not null;default:active" json:"status"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (SavingsGoal) TableName() string {
	return "savings_goals"
}

// Progress 返回完成百分比（0-100）。
func (g *SavingsGoal) Progress() float64 {
	if g.TargetAmount <= 0 {
		return 0
	}
	p := g.CurrentAmount / g.TargetAmount * 100
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}
