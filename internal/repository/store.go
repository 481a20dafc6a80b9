// Package repository 定义了与数据库进行数据交换的接口和实现。
package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Store 聚合了所有基于同一个 *gorm.DB（连接池或事务）的仓储。
type Store struct {
	Users         UserRepository
	Courses       CourseRepository
	Skills        SkillRepository
	Finances      FinanceRepository
	Goals         SavingsGoalRepository
	Journals      JournalRepository
	Lifestyles    LifestyleRepository
	Habits        HabitRepository
	Notifications NotificationRepository
	Plans         PlanRepository
}

// NewStore 基于给定的 db 句柄构建全部仓储。
func NewStore(db *gorm.DB) *Store {
	return &Store{
		Users:         NewUserRepository(db),
		Courses:       NewCourseRepository(db),
		Skills:        NewSkillRepository(db),
		Finances:      NewFinanceRepository(db),
		Goals:         NewSavingsGoalRepository(db),
		Journals:      NewJournalRepository(db),
		Lifestyles:    NewLifestyleRepository(db),
		Habits:        NewHabitRepository(db),
		Notifications: NewNotificationRepository(db),
		Plans:         NewPlanRepository(db),
	}
}

// Transaction 在单个事务中执行 fn，fn 拿到的 Store 全部绑定在该事务上。
// fn 返回错误或 panic 时整体回滚；timeout > 0 时事务受该时限约束，fn 内应使用传入的 ctx。
func Transaction(ctx context.Context, db *gorm.DB, timeout time.Duration, fn func(ctx context.Context, s *Store) error) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewStore(tx))
	})
}

// likePattern 构造大小写不敏感的子串匹配模式，配合 likeClause 使用。
func likePattern(fragment string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + r.Replace(strings.ToLower(strings.TrimSpace(fragment))) + "%"
}

// likeClause 返回 "LOWER(col) LIKE ? ESCAPE '!'"，MySQL/PostgreSQL/SQLite 通用。
func likeClause(column string) string {
	return "LOWER(" + column + ") LIKE ? ESCAPE '!'"
}

// dayRange 返回 day 所在本地日期的 [00:00, 次日 00:00)。
func dayRange(day time.Time) (time.Time, time.Time) {
	d := day.In(time.Local)
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.Local)
	return start, start.AddDate(0, 0, 1)
}
