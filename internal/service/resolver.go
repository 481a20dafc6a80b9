package service

import (
	"context"
	"errors"
	"strings"
	"studylife-go/internal/model"
	"studylife-go/internal/repository"
	"time"

	"gorm.io/gorm"
)

// 实体名，用于 "<Entity> not found" 错误
const (
	entitySkill     = "Skill"
	entityMilestone = "Milestone"
	entityFinance   = "Finance"
	entityExpense   = "Expense"
	entityIncome    = "Income"
	entityGoal      = "Savings goal"
	entityJournal   = "Journal"
	entityLifestyle = "Lifestyle"
	entityHabit     = "Habit"
	entityUser      = "User"
)

// lookupErr 把 gorm.ErrRecordNotFound 统一转换为 NotFoundError，其他错误原样返回。
func lookupErr(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(entity)
	}
	return err
}

// ownedBy 对按 id 查询出的行做归属校验，不属于当前用户时等同于不存在。
func ownedBy(ownerID, userID uint, entity string) error {
	if ownerID != userID {
		return notFound(entity)
	}
	return nil
}

// resolveSkill 依次按 id、名称精确匹配（忽略大小写）、名称子串匹配查找技能。
func resolveSkill(ctx context.Context, s *repository.Store, userID uint, id *uint, name string) (*model.Skill, error) {
	if id != nil {
		skill, err := s.Skills.FindByID(ctx, *id)
		if err != nil {
			return nil, lookupErr(err, entitySkill)
		}
		if err := ownedBy(skill.UserID, userID, entitySkill); err != nil {
			return nil, err
		}
		return skill, nil
	}
	if strings.TrimSpace(name) == "" {
		return nil, invalidAction("skill_id or skill_name is required")
	}
	skill, err := s.Skills.FindByName(ctx, userID, name)
	if err == nil {
		return skill, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	skill, err = s.Skills.FindByNameLike(ctx, userID, name)
	if err != nil {
		return nil, lookupErr(err, entitySkill)
	}
	return skill, nil
}

// resolveFinance 按 id 或描述子串查找收支记录；按描述查找时取日期最近的一条。
// financeType 为空表示不限类型。
func resolveFinance(ctx context.Context, s *repository.Store, userID uint, financeType string, id *uint, description string) (*model.Finance, error) {
	entity := financeEntity(financeType)
	if id != nil {
		f, err := s.Finances.FindByID(ctx, *id)
		if err != nil {
			return nil, lookupErr(err, entity)
		}
		if err := ownedBy(f.UserID, userID, entity); err != nil {
			return nil, err
		}
		if financeType != "" && f.Type != financeType {
			return nil, notFound(entity)
		}
		return f, nil
	}
	if strings.TrimSpace(description) == "" {
		return nil, invalidAction("finance_id or description is required")
	}
	f, err := s.Finances.FindLatestByDescription(ctx, userID, financeType, description)
	if err != nil {
		return nil, lookupErr(err, entity)
	}
	return f, nil
}

func financeEntity(financeType string) string {
	switch financeType {
	case model.FinanceTypeExpense:
		return entityExpense
	case model.FinanceTypeIncome:
		return entityIncome
	}
	return entityFinance
}

// resolveGoal 按 id 或标题子串查找储蓄目标。
func resolveGoal(ctx context.Context, s *repository.Store, userID uint, id *uint, title string) (*model.SavingsGoal, error) {
	if id != nil {
		g, err := s.Goals.FindByID(ctx, *id)
		if err != nil {
			return nil, lookupErr(err, entityGoal)
		}
		if err := ownedBy(g.UserID, userID, entityGoal); err != nil {
			return nil, err
		}
		return g, nil
	}
	if strings.TrimSpace(title) == "" {
		return nil, invalidAction("goal_id or title is required")
	}
	g, err := s.Goals.FindByTitleLike(ctx, userID, title)
	if err != nil {
		return nil, lookupErr(err, entityGoal)
	}
	return g, nil
}

func resolveJournal(ctx context.Context, s *repository.Store, userID uint, id *uint) (*model.Journal, error) {
	if id == nil {
		return nil, invalidAction("journal_id is required")
	}
	j, err := s.Journals.FindByID(ctx, *id)
	if err != nil {
		return nil, lookupErr(err, entityJournal)
	}
	if err := ownedBy(j.UserID, userID, entityJournal); err != nil {
		return nil, err
	}
	return j, nil
}

// resolveLifestyle 按 id 或日期查找生活记录。
func resolveLifestyle(ctx context.Context, s *repository.Store, userID uint, id *uint, date *time.Time) (*model.Lifestyle, error) {
	if id != nil {
		l, err := s.Lifestyles.FindByID(ctx, *id)
		if err != nil {
			return nil, lookupErr(err, entityLifestyle)
		}
		if err := ownedBy(l.UserID, userID, entityLifestyle); err != nil {
			return nil, err
		}
		return l, nil
	}
	if date == nil {
		return nil, invalidAction("lifestyle_id or date is required")
	}
	l, err := s.Lifestyles.FindByDate(ctx, userID, *date)
	if err != nil {
		return nil, lookupErr(err, entityLifestyle)
	}
	return l, nil
}

// resolveHabit 依次按 id、名称精确匹配、名称子串匹配查找习惯。
func resolveHabit(ctx context.Context, s *repository.Store, userID uint, id *uint, name string) (*model.Habit, error) {
	if id != nil {
		h, err := s.Habits.FindByID(ctx, *id)
		if err != nil {
			return nil, lookupErr(err, entityHabit)
		}
		if err := ownedBy(h.UserID, userID, entityHabit); err != nil {
			return nil, err
		}
		return h, nil
	}
	if strings.TrimSpace(name) == "" {
		return nil, invalidAction("habit_id or habit_name is required")
	}
	h, err := s.Habits.FindByName(ctx, userID, name)
	if err == nil {
		return h, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	h, err = s.Habits.FindByNameLike(ctx, userID, name)
	if err != nil {
		return nil, lookupErr(err, entityHabit)
	}
	return h, nil
}
