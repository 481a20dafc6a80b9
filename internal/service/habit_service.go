package service

import (
	"context"
	"sort"
	"studylife-go/internal/model"
	"studylife-go/internal/repository"
	"time"

	"gorm.io/gorm"
)

// HabitService 提供习惯列表与打卡切换。REST 接口与 AI 动作共用同一套切换逻辑。
type HabitService interface {
	List(ctx context.Context, userID uint) ([]model.Habit, error)
	Toggle(ctx context.Context, userID, habitID uint) (*model.Habit, error)
}

type habitService struct {
	db        *gorm.DB
	txTimeout time.Duration
	now       func() time.Time
}

// NewHabitService 创建 HabitService。now 为 nil 时使用 time.Now。
func NewHabitService(db *gorm.DB, txTimeout time.Duration, now func() time.Time) HabitService {
	if now == nil {
		now = time.Now
	}
	return &habitService{db: db, txTimeout: txTimeout, now: now}
}

func (s *habitService) List(ctx context.Context, userID uint) ([]model.Habit, error) {
	habits, err := repository.NewStore(s.db).Habits.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	// 展示前按今天重新推导，避免跨天后 completed 仍为 true
	now := s.now()
	for i := range habits {
		RecomputeHabit(&habits[i], now)
	}
	return habits, nil
}

func (s *habitService) Toggle(ctx context.Context, userID, habitID uint) (*model.Habit, error) {
	var habit *model.Habit
	err := repository.Transaction(ctx, s.db, s.txTimeout, func(ctx context.Context, tx *repository.Store) error {
		h, err := resolveHabit(ctx, tx, userID, &habitID, "")
		if err != nil {
			return err
		}
		ToggleHabit(h, s.now())
		habit = h
		return tx.Habits.Save(ctx, h)
	})
	if err != nil {
		return nil, err
	}
	return habit, nil
}

// TodayCompleted 返回习惯在 now 所在日期的打卡状态。
func TodayCompleted(h *model.Habit, now time.Time) bool {
	today := model.DateKey(now)
	for _, e := range h.CompletionHistory {
		if e.Date == today {
			return e.Completed
		}
	}
	return false
}

// ToggleHabit 翻转今天的打卡状态：按日期字符串更新或追加今天的记录，然后重新计算 Completed 与 Streak。
func ToggleHabit(h *model.Habit, now time.Time) {
	SetHabitCompletion(h, now, !TodayCompleted(h, now))
}

// SetHabitCompletion 把今天的打卡状态设置为 completed。
func SetHabitCompletion(h *model.Habit, now time.Time, completed bool) {
	today := model.DateKey(now)
	found := false
	for i := range h.CompletionHistory {
		if h.CompletionHistory[i].Date == today {
			h.CompletionHistory[i].Completed = completed
			found = true
		}
	}
	if !found {
		h.CompletionHistory = append(h.CompletionHistory, model.HabitCompletion{Date: today, Completed: completed})
	}
	RecomputeHabit(h, now)
}

// RecomputeHabit 由打卡历史推导 Completed 与 Streak。
func RecomputeHabit(h *model.Habit, now time.Time) {
	h.Completed = TodayCompleted(h, now)
	h.Streak = ComputeStreak(h.CompletionHistory, now)
}

// ComputeStreak 计算截止到今天的连续打卡天数。
// 已完成的日期按降序排列，第 i 个日期必须恰好是今天往前 i 天，遇到缺口即停止；今天未完成时结果为 0。
func ComputeStreak(history []model.HabitCompletion, now time.Time) int {
	seen := make(map[string]bool)
	var days []time.Time
	for _, e := range history {
		if !e.Completed {
			continue
		}
		d, ok := parseHistoryDate(e.Date)
		if !ok || seen[model.DateKey(d)] {
			continue
		}
		seen[model.DateKey(d)] = true
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	today := model.StartOfDay(now)
	streak := 0
	for i, d := range days {
		if model.DaysBetween(d, today) != i {
			break
		}
		streak++
	}
	return streak
}

func parseHistoryDate(s string) (time.Time, bool) {
	if len(s) > len(model.DateLayout) {
		s = s[:len(model.DateLayout)]
	}
	t, err := time.ParseInLocation(model.DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
