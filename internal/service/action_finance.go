package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"studylife-go/internal/model"
	"studylife-go/internal/repository"
)

const (
	defaultFinanceCategory = "Other"
	savingsCategory        = "Savings"
	defaultGoalPriority    = "medium"
	goalStatusActive       = "active"
)

func (s *actionService) addFinance(financeType string) actionFunc {
	return func(ctx context.Context, tx *repository.Store, userID uint, data map[string]interface{}) (*actionOutcome, error) {
		var p financePayload
		if err := decodeAction(data, &p); err != nil {
			return nil, err
		}
		if p.Amount == nil {
			return nil, invalidAction("amount is required")
		}
		amount := math.Abs(*p.Amount)
		if amount == 0 {
			return nil, invalidAction("amount must be non-zero")
		}

		f := &model.Finance{
			UserID:      userID,
			Type:        financeType,
			Amount:      amount,
			Category:    defaultFinanceCategory,
			Date:        s.now(),
			AIGenerated: true,
		}
		if err := applyFinanceFields(f, p, false); err != nil {
			return nil, err
		}
		if p.Description != nil {
			f.Description = strings.TrimSpace(*p.Description)
		}
		goal, err := s.financeGoal(ctx, tx, userID, p)
		if err != nil {
			return nil, err
		}
		if goal != nil {
			f.GoalID = &goal.ID
		}
		if err := tx.Finances.Create(ctx, f); err != nil {
			return nil, err
		}
		if err := recomputeGoals(ctx, tx, f.GoalID); err != nil {
			return nil, err
		}
		return &actionOutcome{data: financeData(f)}, nil
	}
}

// updateFinance 按 id 或描述子串（同类型、日期最近）定位记录后更新。
func (s *actionService) updateFinance(financeType string) actionFunc {
	return func(ctx context.Context, tx *repository.Store, userID uint, data map[string]interface{}) (*actionOutcome, error) {
		var p financePayload
		if err := decodeAction(data, &p); err != nil {
			return nil, err
		}
		f, err := resolveFinance(ctx, tx, userID, financeType, p.targetID(), deref(p.Description))
		if err != nil {
			return nil, err
		}
		oldGoal := f.GoalID

		if err := applyFinanceFields(f, p, true); err != nil {
			return nil, err
		}
		if p.NewDescription != nil {
			f.Description = strings.TrimSpace(*p.NewDescription)
		} else if p.targetID() != nil && p.Description != nil {
			// 按 id 定位时 description 视为新值
			f.Description = strings.TrimSpace(*p.Description)
		}
		goal, err := s.financeGoal(ctx, tx, userID, p)
		if err != nil {
			return nil, err
		}
		if goal != nil {
			f.GoalID = &goal.ID
		}
		if err := tx.Finances.Save(ctx, f); err != nil {
			return nil, err
		}
		if err := recomputeGoals(ctx, tx, oldGoal, f.GoalID); err != nil {
			return nil, err
		}
		return &actionOutcome{data: financeData(f)}, nil
	}
}

func (s *actionService) deleteFinance(ctx context.Context, tx *repository.Store, userID uint, data map[string]interface{}) (*actionOutcome, error) {
	var p financePayload
	if err := decodeAction(data, &p); err != nil {
		return nil, err
	}
	financeType := strings.ToLower(strings.TrimSpace(p.Type))
	if financeType != "" && financeType != model.FinanceTypeIncome && financeType != model.FinanceTypeExpense {
		return nil, invalidAction("unknown finance type %q", p.Type)
	}
	f, err := resolveFinance(ctx, tx, userID, financeType, p.targetID(), deref(p.Description))
	if err != nil {
		return nil, err
	}
	if err := tx.Finances.Delete(ctx, f); err != nil {
		return nil, err
	}
	if err := recomputeGoals(ctx, tx, f.GoalID); err != nil {
		return nil, err
	}
	return &actionOutcome{data: map[string]interface{}{"financeId": f.ID, "type": f.Type}}, nil
}

// applyFinanceFields 写入除描述和目标关联之外的字段。
func applyFinanceFields(f *model.Finance, p financePayload, update bool) error {
	if update && p.Amount != nil {
		amount := math.Abs(*p.Amount)
		if amount == 0 {
			return invalidAction("amount must be non-zero")
		}
		f.Amount = amount
	}
	if p.Category != nil {
		f.Category = strings.TrimSpace(*p.Category)
	}
	if p.Date != nil {
		f.Date = *p.Date
	}
	if p.PaymentMethod != nil {
		f.PaymentMethod = *p.PaymentMethod
	}
	if p.Recurring != nil {
		f.Recurring = *p.Recurring
	}
	if p.Frequency != nil {
		f.Frequency = *p.Frequency
	}
	return nil
}

// financeGoal 解析 payload 中关联的储蓄目标，未指定时返回 nil。
func (s *actionService) financeGoal(ctx context.Context, tx *repository.Store, userID uint, p financePayload) (*model.SavingsGoal, error) {
	if p.GoalID == nil && p.GoalTitle == "" {
		return nil, nil
	}
	return resolveGoal(ctx, tx, userID, p.GoalID, p.GoalTitle)
}

func (s *actionService) addSavingsGoal(ctx context.Context, tx *repository.Store, userID uint, data map[string]interface{}) (*actionOutcome, error) {
	var p savingsGoalPayload
	if err := decodeAction(data, &p); err != nil {
		return nil, err
	}
	title := p.lookupTitle()
	if title == "" {
		return nil, invalidAction("title is required")
	}
	if p.TargetAmount == nil || *p.TargetAmount <= 0 {
		return nil, invalidAction("target_amount must be positive")
	}

	g := &model.SavingsGoal{
		UserID:       userID,
		Title:        title,
		TargetAmount: *p.TargetAmount,
		DueDate:      p.DueDate,
		Priority:     defaultGoalPriority,
		Status:       goalStatusActive,
	}
	applyGoalFields(g, p)
	if err := tx.Goals.Create(ctx, g); err != nil {
		return nil, err
	}
	if p.CurrentAmount != nil {
		if err := s.adjustGoalAmount(ctx, tx, g, *p.CurrentAmount); err != nil {
			return nil, err
		}
	}
	return &actionOutcome{data: goalData(g)}, nil
}

func (s *actionService) updateSavingsGoal(ctx context.Context, tx *repository.Store, userID uint, data map[string]interface{}) (*actionOutcome, error) {
	var p savingsGoalPayload
	if err := decodeAction(data, &p); err != nil {
		return nil, err
	}
	g, err := resolveGoal(ctx, tx, userID, p.GoalID, p.lookupTitle())
	if err != nil {
		return nil, err
	}
	if p.NewTitle != "" {
		g.Title = strings.TrimSpace(p.NewTitle)
	}
	if p.TargetAmount != nil {
		if *p.TargetAmount <= 0 {
			return nil, invalidAction("target_amount must be positive")
		}
		g.TargetAmount = *p.TargetAmount
	}
	if p.DueDate != nil {
		g.DueDate = p.DueDate
	}
	applyGoalFields(g, p)
	if err := tx.Goals.Save(ctx, g); err != nil {
		return nil, err
	}
	if p.CurrentAmount != nil {
		if err := s.adjustGoalAmount(ctx, tx, g, *p.CurrentAmount); err != nil {
			return nil, err
		}
	} else if err := recomputeGoal(ctx, tx, g); err != nil {
		return nil, err
	}
	return &actionOutcome{data: goalData(g)}, nil
}

func applyGoalFields(g *model.SavingsGoal, p savingsGoalPayload) {
	if p.Priority != nil {
		g.Priority = strings.ToLower(*p.Priority)
	}
	if p.Status != nil {
		g.Status = strings.ToLower(*p.Status)
	}
}

// adjustGoalAmount 把目标金额的变化记为一笔关联的存入（收入）或取出（支出），
// 而不是直接修改 CurrentAmount。
func (s *actionService) adjustGoalAmount(ctx context.Context, tx *repository.Store, g *model.SavingsGoal, target float64) error {
	if err := recomputeGoal(ctx, tx, g); err != nil {
		return err
	}
	diff := target - g.CurrentAmount
	if math.Abs(diff) < 0.005 {
		return nil
	}
	f := &model.Finance{
		UserID:      g.UserID,
		Type:        model.FinanceTypeIncome,
		Amount:      diff,
		Category:    savingsCategory,
		Description: fmt.Sprintf("Contribution to %s", g.Title),
		Date:        s.now(),
		AIGenerated: true,
		GoalID:      &g.ID,
	}
	if diff < 0 {
		f.Type = model.FinanceTypeExpense
		f.Amount = -diff
		f.Description = fmt.Sprintf("Withdrawal from %s", g.Title)
	}
	if err := tx.Finances.Create(ctx, f); err != nil {
		return err
	}
	return recomputeGoal(ctx, tx, g)
}

// recomputeGoals 重新计算给定 id 的储蓄目标，nil 与重复 id 会被跳过。
func recomputeGoals(ctx context.Context, tx *repository.Store, goalIDs ...*uint) error {
	done := make(map[uint]bool)
	for _, id := range goalIDs {
		if id == nil || done[*id] {
			continue
		}
		done[*id] = true
		g, err := tx.Goals.FindByID(ctx, *id)
		if err != nil {
			return lookupErr(err, entityGoal)
		}
		if err := recomputeGoal(ctx, tx, g); err != nil {
			return err
		}
	}
	return nil
}

// recomputeGoal 用关联收入减关联支出覆盖 CurrentAmount。
func recomputeGoal(ctx context.Context, tx *repository.Store, g *model.SavingsGoal) error {
	income, expense, err := tx.Finances.GoalTotals(ctx, g.ID)
	if err != nil {
		return err
	}
	g.CurrentAmount = income - expense
	return tx.Goals.Save(ctx, g)
}

func financeData(f *model.Finance) map[string]interface{} {
	out := map[string]interface{}{
		"financeId": f.ID,
		"type":      f.Type,
		"amount":    f.Amount,
		"category":  f.Category,
	}
	if f.GoalID != nil {
		out["goalId"] = *f.GoalID
	}
	return out
}

func goalData(g *model.SavingsGoal) map[string]interface{} {
	return map[string]interface{}{
		"goalId":        g.ID,
		"title":         g.Title,
		"currentAmount": g.CurrentAmount,
		"progress":      g.Progress(),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
