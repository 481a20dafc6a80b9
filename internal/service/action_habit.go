package service

import (
	"context"
	"errors"
	"strings"
	"studylife-go/internal/model"
	"studylife-go/internal/repository"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultHabitTarget = "daily"

// addHabit 创建习惯；同名（忽略大小写）习惯已存在时改为更新，结果类型为 update_habit。
func (s *actionService) addHabit(ctx context.Context, tx *repository.Store, userID uint, data map[string]interface{}) (*actionOutcome, error) {
	var p habitPayload
	if err := decodeAction(data, &p); err != nil {
		return nil, err
	}
	name := p.lookupName()
	if name == "" {
		return nil, invalidAction("name is required")
	}

	resultType := ""
	h, err := tx.Habits.FindByName(ctx, userID, name)
	switch {
	case err == nil:
		resultType = model.ActionUpdateHabit
	case errors.Is(err, gorm.ErrRecordNotFound):
		h = &model.Habit{
			UserID:            userID,
			Name:              name,
			Target:            defaultHabitTarget,
			CompletionHistory: datatypes.JSONSlice[model.HabitCompletion]{},
		}
	default:
		return nil, err
	}
	s.applyHabitFields(h, p)

	if h.ID == 0 {
		err = tx.Habits.Create(ctx, h)
	} else {
		err = tx.Habits.Save(ctx, h)
	}
	if err != nil {
		return nil, err
	}
	return &actionOutcome{resultType: resultType, data: habitData(h)}, nil
}

func (s *actionService) updateHabit(ctx context.Context, tx *repository.Store, userID uint, data map[string]interface{}) (*actionOutcome, error) {
	var p habitPayload
	if err := decodeAction(data, &p); err != nil {
		return nil, err
	}
	h, err := resolveHabit(ctx, tx, userID, p.HabitID, p.lookupName())
	if err != nil {
		return nil, err
	}
	if p.NewName != "" {
		h.Name = strings.TrimSpace(p.NewName)
	}
	s.applyHabitFields(h, p)
	if err := tx.Habits.Save(ctx, h); err != nil {
		return nil, err
	}
	return &actionOutcome{data: habitData(h)}, nil
}

func (s *actionService) deleteHabit(ctx context.Context, tx *repository.Store, userID uint, data map[string]interface{}) (*actionOutcome, error) {
	var p habitPayload
	if err := decodeAction(data, &p); err != nil {
		return nil, err
	}
	h, err := resolveHabit(ctx, tx, userID, p.HabitID, p.lookupName())
	if err != nil {
		return nil, err
	}
	if err := tx.Habits.Delete(ctx, h); err != nil {
		return nil, err
	}
	return &actionOutcome{data: map[string]interface{}{"habitId": h.ID, "name": h.Name}}, nil
}

// toggleHabit 与 REST 的 PATCH /habits/:id/toggle 使用同一套 ToggleHabit 逻辑。
// 显式给出 completed 且与今天的状态一致时不做修改。
func (s *actionService) toggleHabit(ctx context.Context, tx *repository.Store, userID uint, data map[string]interface{}) (*actionOutcome, error) {
	var p habitPayload
	if err := decodeAction(data, &p); err != nil {
		return nil, err
	}
	h, err := resolveHabit(ctx, tx, userID, p.HabitID, p.lookupName())
	if err != nil {
		return nil, err
	}

	now := s.now()
	changed := p.Completed == nil || *p.Completed != TodayCompleted(h, now)
	if changed {
		ToggleHabit(h, now)
		if err := tx.Habits.Save(ctx, h); err != nil {
			return nil, err
		}
	} else {
		RecomputeHabit(h, now)
	}
	out := habitData(h)
	out["changed"] = changed
	return &actionOutcome{data: out}, nil
}

// applyHabitFields 写入目标与时间；带 completed 时设置今天的打卡状态，并重新推导派生字段。
func (s *actionService) applyHabitFields(h *model.Habit, p habitPayload) {
	if p.Target != nil {
		h.Target = *p.Target
	}
	if p.Time != nil {
		h.Time = *p.Time
	}
	now := s.now()
	if p.Completed != nil {
		SetHabitCompletion(h, now, *p.Completed)
		return
	}
	RecomputeHabit(h, now)
}

func habitData(h *model.Habit) map[string]interface{} {
	return map[string]interface{}{
		"habitId":   h.ID,
		"name":      h.Name,
		"completed": h.Completed,
		"streak":    h.Streak,
	}
}
