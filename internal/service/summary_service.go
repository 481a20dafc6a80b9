package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"studylife-go/internal/model"
	"studylife-go/internal/repository"
	"studylife-go/pkg/llm"
	"studylife-go/pkg/log"
	"studylife-go/pkg/metrics"
	"studylife-go/pkg/storage"
	"time"

	"gorm.io/gorm"
)

const (
	SummaryDaily   = "daily"
	SummaryMonthly = "monthly"
)

// SummaryArchiver 把生成的总结归档到对象存储，返回可下载的链接。
type SummaryArchiver interface {
	ArchiveSummary(ctx context.Context, objectName, content string) (string, error)
}

// SummaryStats 是总结所依据的统计数据，同时返回给客户端。
type SummaryStats struct {
	Kind           string         `json:"kind"`
	PeriodStart    string         `json:"periodStart"`
	PeriodEnd      string         `json:"periodEnd"`
	JournalCount   int            `json:"journalCount"`
	Moods          map[string]int `json:"moods"`
	Income         float64        `json:"income"`
	Expense        float64        `json:"expense"`
	Net            float64        `json:"net"`
	Transactions   int            `json:"transactions"`
	TopCategory    string         `json:"topExpenseCategory,omitempty"`
	HabitCount     int            `json:"habitCount"`
	HabitCheckIns  int            `json:"habitCheckIns"`
	BestStreak     int            `json:"bestStreak"`
	BestHabit      string         `json:"bestHabit,omitempty"`
	TaskCount      int            `json:"taskCount"`
	TasksCompleted int            `json:"tasksCompleted"`
}

// SummaryResult 是一次总结生成的结果。
type SummaryResult struct {
	Summary        string       `json:"summary"`
	Stats          SummaryStats `json:"stats"`
	Fallback       bool         `json:"fallback"`
	NotificationID uint         `json:"notificationId"`
	ArchiveURL     string       `json:"archiveUrl,omitempty"`
}

// SummaryService 是总结生成器：聚合一天或一个月的数据，调用 AI 服务生成文字，
// AI 服务失败时使用本地模板。结果总是保存为一条通知。
type SummaryService interface {
	Generate(ctx context.Context, kind string, userID uint, ref time.Time) (*SummaryResult, error)
}

type summaryService struct {
	db       *gorm.DB
	gateway  llm.Client
	archiver SummaryArchiver
	now      func() time.Time
}

// NewSummaryService 创建总结生成器。archiver 可以为 nil。
func NewSummaryService(db *gorm.DB, gateway llm.Client, archiver SummaryArchiver, now func() time.Time) SummaryService {
	if now == nil {
		now = time.Now
	}
	return &summaryService{db: db, gateway: gateway, archiver: archiver, now: now}
}

// SummaryPeriod 返回 ref 所在的日或月的 [start, end)。
func SummaryPeriod(kind string, ref time.Time) (time.Time, time.Time, error) {
	day := model.StartOfDay(ref)
	switch kind {
	case SummaryDaily:
		return day, day.AddDate(0, 0, 1), nil
	case SummaryMonthly:
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.Local)
		return start, start.AddDate(0, 1, 0), nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("unknown summary kind %q", kind)
}

func (s *summaryService) Generate(ctx context.Context, kind string, userID uint, ref time.Time) (*SummaryResult, error) {
	start, end, err := SummaryPeriod(kind, ref)
	if err != nil {
		return nil, err
	}
	st := repository.NewStore(s.db)

	var userName string
	if u, err := st.Users.FindByID(ctx, userID); err == nil {
		userName = u.Name()
	} else {
		log.Warnw("总结生成时查询用户失败", "userId", userID, "error", err)
	}

	stats := s.collect(ctx, st, kind, userID, start, end)
	result := &SummaryResult{Stats: stats}

	text, err := s.callGateway(ctx, userID, userName, stats)
	if err != nil {
		log.Warnw("AI 服务生成总结失败，使用本地模板", "kind", kind, "userId", userID, "error", err)
		text = FallbackSummary(stats)
		result.Fallback = true
	}
	result.Summary = text
	metrics.RecordSummary(kind, result.Fallback)

	n := &model.Notification{
		UserID:  userID,
		Title:   summaryTitle(stats),
		Message: text,
		Type:    model.NotificationTypeInfo,
		Source:  model.NotificationSourceDailySummary,
		Action:  "view_daily_summary",
	}
	if kind == SummaryMonthly {
		n.Source = model.NotificationSourceMonthlySummary
		n.Action = "view_monthly_summary"
	}
	if err := st.Notifications.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to save summary notification: %w", err)
	}
	result.NotificationID = n.ID

	if s.archiver != nil {
		object := storage.SummaryObjectName(userID, kind, stats.PeriodStart)
		url, err := s.archiver.ArchiveSummary(ctx, object, "# "+n.Title+"\n\n"+text+"\n")
		if err != nil {
			log.Warnw("总结归档失败", "object", object, "error", err)
		} else {
			result.ArchiveURL = url
		}
	}
	return result, nil
}

// collect 聚合统计数据；单个查询失败时该部分按空处理。
func (s *summaryService) collect(ctx context.Context, st *repository.Store, kind string, userID uint, start, end time.Time) SummaryStats {
	stats := SummaryStats{
		Kind:        kind,
		PeriodStart: model.DateKey(start),
		PeriodEnd:   model.DateKey(end.AddDate(0, 0, -1)),
		Moods:       map[string]int{},
	}
	degrade := func(section string, err error) {
		log.Warnw("总结数据源查询失败，使用空值", "section", section, "userId", userID, "error", err)
	}

	if journals, err := st.Journals.ListBetween(ctx, userID, start, end); err != nil {
		degrade("journals", err)
	} else {
		stats.JournalCount = len(journals)
		for _, j := range journals {
			if j.Mood != "" {
				stats.Moods[j.Mood]++
			}
		}
	}

	if finances, err := st.Finances.ListBetween(ctx, userID, start, end); err != nil {
		degrade("finances", err)
	} else {
		byCategory := map[string]float64{}
		for _, f := range finances {
			if f.Type == model.FinanceTypeIncome {
				stats.Income += f.Amount
			} else {
				stats.Expense += f.Amount
				byCategory[f.Category] += f.Amount
			}
		}
		stats.Transactions = len(finances)
		stats.Net = stats.Income - stats.Expense
		var top float64
		for c, v := range byCategory {
			if v > top || (v == top && c < stats.TopCategory) {
				top, stats.TopCategory = v, c
			}
		}
	}

	if habits, err := st.Habits.ListByUser(ctx, userID); err != nil {
		degrade("habits", err)
	} else {
		// 连续天数按周期最后一天（不晚于今天）计算
		asOf := end.AddDate(0, 0, -1)
		if now := s.now(); now.Before(asOf) {
			asOf = now
		}
		from, to := model.DateKey(start), model.DateKey(end)
		stats.HabitCount = len(habits)
		for _, h := range habits {
			for _, e := range h.CompletionHistory {
				if e.Completed && e.Date >= from && e.Date < to {
					stats.HabitCheckIns++
				}
			}
			if streak := ComputeStreak(h.CompletionHistory, asOf); streak > stats.BestStreak {
				stats.BestStreak, stats.BestHabit = streak, h.Name
			}
		}
	}

	if plans, err := st.Plans.ListBetween(ctx, userID, start, end); err != nil {
		degrade("plans", err)
	} else {
		for _, p := range plans {
			for _, t := range p.Tasks {
				stats.TaskCount++
				if t.Completed {
					stats.TasksCompleted++
				}
			}
		}
	}
	return stats
}

func (s *summaryService) callGateway(ctx context.Context, userID uint, userName string, stats SummaryStats) (string, error) {
	if s.gateway == nil {
		return "", ErrAIService
	}
	period := "day " + stats.PeriodStart
	if stats.Kind == SummaryMonthly {
		period = fmt.Sprintf("month %s to %s", stats.PeriodStart, stats.PeriodEnd)
	}
	prompt := fmt.Sprintf("Write a short, encouraging %s summary for the %s based on the structured context. "+
		"Highlight mood, spending, habit progress and completed tasks, and end with one concrete suggestion. "+
		"Do not return any actions.", stats.Kind, period)

	resp, err := s.gateway.Chat(ctx, llm.ChatRequest{
		UserID:              llm.UserIDString(userID),
		UserName:            userName,
		Message:             prompt,
		ConversationHistory: []llm.Message{},
		StructuredContext:   statsLine(stats),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAIService, err)
	}
	text := strings.TrimSpace(resp.Response)
	if text == "" {
		return "", fmt.Errorf("%w: %w", ErrAIService, llm.ErrEmptyResponse)
	}
	return text, nil
}

func summaryTitle(stats SummaryStats) string {
	if stats.Kind == SummaryMonthly {
		return "Monthly Summary - " + stats.PeriodStart[:7]
	}
	return "Daily Summary - " + stats.PeriodStart
}

func moodList(moods map[string]int) string {
	if len(moods) == 0 {
		return "none recorded"
	}
	keys := make([]string, 0, len(moods))
	for k := range moods {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if moods[keys[i]] != moods[keys[j]] {
			return moods[keys[i]] > moods[keys[j]]
		}
		return keys[i] < keys[j]
	})
	items := make([]string, 0, len(keys))
	for _, k := range keys {
		items = append(items, fmt.Sprintf("%s x%d", k, moods[k]))
	}
	return strings.Join(items, ", ")
}

// statsLine 是发给 AI 服务的结构化上下文。
func statsLine(stats SummaryStats) string {
	parts := []string{
		fmt.Sprintf("Period: %s to %s", stats.PeriodStart, stats.PeriodEnd),
		fmt.Sprintf("Journals: %d (moods: %s)", stats.JournalCount, moodList(stats.Moods)),
		fmt.Sprintf("Income %.2f, expenses %.2f, net %.2f over %d transactions", stats.Income, stats.Expense, stats.Net, stats.Transactions),
		fmt.Sprintf("Habits: %d check-ins across %d habits, best streak %d", stats.HabitCheckIns, stats.HabitCount, stats.BestStreak),
		fmt.Sprintf("Tasks: %d/%d completed", stats.TasksCompleted, stats.TaskCount),
	}
	if stats.TopCategory != "" {
		parts = append(parts, "Top expense category: "+stats.TopCategory)
	}
	return strings.Join(parts, contextSeparator)
}

// FallbackSummary 根据统计数据生成固定格式的总结，不依赖 AI 服务。
func FallbackSummary(stats SummaryStats) string {
	var b strings.Builder
	if stats.Kind == SummaryMonthly {
		fmt.Fprintf(&b, "Monthly summary for %s to %s\n", stats.PeriodStart, stats.PeriodEnd)
	} else {
		fmt.Fprintf(&b, "Daily summary for %s\n", stats.PeriodStart)
	}
	fmt.Fprintf(&b, "- Journals: %d (moods: %s)\n", stats.JournalCount, moodList(stats.Moods))
	fmt.Fprintf(&b, "- Finances: income %.2f, expenses %.2f, net %.2f across %d transactions",
		stats.Income, stats.Expense, stats.Net, stats.Transactions)
	if stats.TopCategory != "" {
		fmt.Fprintf(&b, " (most spent on %s)", stats.TopCategory)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "- Habits: %d check-ins across %d habits", stats.HabitCheckIns, stats.HabitCount)
	if stats.BestHabit != "" {
		fmt.Fprintf(&b, ", best streak %d (%s)", stats.BestStreak, stats.BestHabit)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "- Tasks: %d/%d completed", stats.TasksCompleted, stats.TaskCount)
	return b.String()
}
