package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"studylife-go/internal/model"
	"studylife-go/internal/repository"
	"studylife-go/pkg/log"
	"time"

	"gorm.io/gorm"
)

const (
	contextCourseLimit    = 5
	contextFinanceFetch   = 15
	contextFinanceLimit   = 10
	contextJournalLimit   = 7
	contextLifestyleLimit = 7
	contextPlanLimit      = 3
	contextPlanTaskLimit  = 5
	contextSeparator      = "; "

	skillDedupHint = "IMPORTANT: these skills already exist, use update_skill instead of add_skill for them"
)

// ContextService 是上下文聚合器：把用户当前数据压缩成一段有长度上限的文字，交给 AI 服务作为背景。
type ContextService interface {
	Build(ctx context.Context, userID uint) (string, error)
	Snapshot(ctx context.Context, userID uint) (*ContextSnapshot, error)
}

// ContextSnapshot 是聚合时读取到的原始数据，单个数据源失败时对应字段为空。
type ContextSnapshot struct {
	User         *model.User
	Courses      []model.Course
	Skills       []model.Skill
	Finances     []model.Finance
	TotalIncome  float64
	TotalExpense float64
	Goals        []model.SavingsGoal
	Journals     []model.Journal
	Lifestyles   []model.Lifestyle
	Habits       []model.Habit
	Plans        []model.AIPlan
	Now          time.Time
}

type contextService struct {
	db       *gorm.DB
	maxChars int
	now      func() time.Time
}

// NewContextService 创建上下文聚合器。maxChars <= 0 表示不截断。
func NewContextService(db *gorm.DB, maxChars int, now func() time.Time) ContextService {
	if now == nil {
		now = time.Now
	}
	return &contextService{db: db, maxChars: maxChars, now: now}
}

func (s *contextService) Build(ctx context.Context, userID uint) (string, error) {
	snap, err := s.Snapshot(ctx, userID)
	if err != nil {
		return "", err
	}
	return Truncate(snap.Render(), s.maxChars), nil
}

// Snapshot 逐个读取数据源；任一查询失败只记录日志并以空值代替，不中断整体聚合。
func (s *contextService) Snapshot(ctx context.Context, userID uint) (*ContextSnapshot, error) {
	st := repository.NewStore(s.db)
	snap := &ContextSnapshot{Now: s.now()}

	degrade := func(section string, err error) {
		log.Warnw("上下文数据源查询失败，使用空值", "section", section, "userId", userID, "error", err)
	}

	if u, err := st.Users.FindByID(ctx, userID); err != nil {
		degrade("profile", err)
	} else {
		snap.User = u
	}
	if v, err := st.Courses.ListRecent(ctx, userID, contextCourseLimit); err != nil {
		degrade("courses", err)
	} else {
		snap.Courses = v
	}
	if v, err := st.Skills.ListByUser(ctx, userID); err != nil {
		degrade("skills", err)
	} else {
		snap.Skills = v
	}
	if v, err := st.Finances.ListRecent(ctx, userID, contextFinanceFetch); err != nil {
		degrade("finances", err)
	} else {
		if len(v) > contextFinanceLimit {
			v = v[:contextFinanceLimit]
		}
		snap.Finances = v
	}
	if income, expense, err := st.Finances.Totals(ctx, userID); err != nil {
		degrade("finance_totals", err)
	} else {
		snap.TotalIncome, snap.TotalExpense = income, expense
	}
	if v, err := st.Goals.ListActive(ctx, userID); err != nil {
		degrade("savings_goals", err)
	} else {
		snap.Goals = v
	}
	if v, err := st.Journals.ListRecent(ctx, userID, contextJournalLimit); err != nil {
		degrade("journals", err)
	} else {
		snap.Journals = v
	}
	if v, err := st.Lifestyles.ListRecent(ctx, userID, contextLifestyleLimit); err != nil {
		degrade("lifestyle", err)
	} else {
		snap.Lifestyles = v
	}
	if v, err := st.Habits.ListByUser(ctx, userID); err != nil {
		degrade("habits", err)
	} else {
		snap.Habits = v
	}
	if v, err := st.Plans.ListRecent(ctx, userID, contextPlanLimit); err != nil {
		degrade("plans", err)
	} else {
		snap.Plans = v
	}

	// 请求已被取消时各数据源都会失败，此时没有必要继续调用 AI 服务
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return snap, nil
}

// Render 按固定顺序输出各段落，以 "; " 连接。没有数据的段落省略，收支总额始终输出。
func (c *ContextSnapshot) Render() string {
	var parts []string
	add := func(s string) {
		if s != "" {
			parts = append(parts, s)
		}
	}
	add(c.profileSection())
	add(c.courseSection())
	add(c.skillSection())
	add(c.financeSection())
	add(c.goalSection())
	add(c.journalSection())
	add(c.lifestyleSection())
	add(c.habitSection())
	add(c.planSection())
	return strings.Join(parts, contextSeparator)
}

func (c *ContextSnapshot) profileSection() string {
	if c.User == nil {
		return ""
	}
	var fields []string
	if c.User.University != "" {
		fields = append(fields, "university "+c.User.University)
	}
	if c.User.Major != "" {
		fields = append(fields, "major "+c.User.Major)
	}
	if c.User.AcademicYear != "" {
		fields = append(fields, "year "+c.User.AcademicYear)
	}
	if len(fields) == 0 {
		return ""
	}
	return "Education: " + strings.Join(fields, ", ")
}

func (c *ContextSnapshot) courseSection() string {
	if len(c.Courses) == 0 {
		return ""
	}
	names := make([]string, 0, len(c.Courses))
	for _, course := range c.Courses {
		names = append(names, course.Name)
	}
	return "Courses: " + strings.Join(names, ", ")
}

func (c *ContextSnapshot) skillSection() string {
	if len(c.Skills) == 0 {
		return ""
	}
	items := make([]string, 0, len(c.Skills))
	for _, sk := range c.Skills {
		items = append(items, fmt.Sprintf("%s (id %d, %s, %s)", sk.Name, sk.ID, sk.Category, sk.Level))
	}
	return fmt.Sprintf("Skills: %s. %s", strings.Join(items, ", "), skillDedupHint)
}

func (c *ContextSnapshot) financeSection() string {
	var b strings.Builder
	if len(c.Finances) > 0 {
		items := make([]string, 0, len(c.Finances))
		for _, f := range c.Finances {
			item := fmt.Sprintf("#%d %s %.2f %s", f.ID, f.Type, f.Amount, f.Category)
			if f.Description != "" {
				item += " (" + f.Description + ")"
			}
			items = append(items, item)
		}
		b.WriteString("Recent finances: ")
		b.WriteString(strings.Join(items, ", "))
		b.WriteString(". ")
	}
	fmt.Fprintf(&b, "Total income %.2f, total expenses %.2f, balance %.2f",
		c.TotalIncome, c.TotalExpense, c.TotalIncome-c.TotalExpense)
	return b.String()
}

func (c *ContextSnapshot) goalSection() string {
	if len(c.Goals) == 0 {
		return ""
	}
	items := make([]string, 0, len(c.Goals))
	for i := range c.Goals {
		g := &c.Goals[i]
		items = append(items, fmt.Sprintf("%s (id %d) %.2f/%.2f, %.0f%%", g.Title, g.ID, g.CurrentAmount, g.TargetAmount, g.Progress()))
	}
	return "Savings goals: " + strings.Join(items, ", ")
}

// journalSection 只输出心情分布，不输出日记正文。
func (c *ContextSnapshot) journalSection() string {
	if len(c.Journals) == 0 {
		return ""
	}
	counts := make(map[string]int)
	for _, j := range c.Journals {
		mood := j.Mood
		if mood == "" {
			mood = "unspecified"
		}
		counts[mood]++
	}
	moods := make([]string, 0, len(counts))
	for m := range counts {
		moods = append(moods, m)
	}
	// 次数降序，相同时按名称排序保证输出稳定
	sort.Slice(moods, func(i, j int) bool {
		if counts[moods[i]] != counts[moods[j]] {
			return counts[moods[i]] > counts[moods[j]]
		}
		return moods[i] < moods[j]
	})
	items := make([]string, 0, len(moods))
	for _, m := range moods {
		items = append(items, fmt.Sprintf("%s x%d", m, counts[m]))
	}
	return fmt.Sprintf("Recent journal moods (%d entries): %s", len(c.Journals), strings.Join(items, ", "))
}

func (c *ContextSnapshot) lifestyleSection() string {
	if len(c.Lifestyles) == 0 {
		return ""
	}
	var sleep, exercise, stress average
	for _, l := range c.Lifestyles {
		if l.SleepHours != nil {
			sleep.add(*l.SleepHours)
		}
		if l.ExerciseMinutes != nil {
			exercise.add(float64(*l.ExerciseMinutes))
		}
		if l.StressLevel != nil {
			stress.add(float64(*l.StressLevel))
		}
	}
	return fmt.Sprintf("Lifestyle averages (%d days): sleep %.1fh, exercise %.0f min, stress %.1f/10",
		len(c.Lifestyles), sleep.value(), exercise.value(), stress.value())
}

func (c *ContextSnapshot) habitSection() string {
	if len(c.Habits) == 0 {
		return ""
	}
	items := make([]string, 0, len(c.Habits))
	for i := range c.Habits {
		h := &c.Habits[i]
		status := "not done today"
		if TodayCompleted(h, c.Now) {
			status = "done today"
		}
		items = append(items, fmt.Sprintf("%s (id %d, streak %d, target %s, %s)",
			h.Name, h.ID, ComputeStreak(h.CompletionHistory, c.Now), h.Target, status))
	}
	return "Habits: " + strings.Join(items, ", ")
}

func (c *ContextSnapshot) planSection() string {
	if len(c.Plans) == 0 {
		return ""
	}
	items := make([]string, 0, len(c.Plans))
	for _, p := range c.Plans {
		var tasks []string
		for i, t := range p.Tasks {
			if i == contextPlanTaskLimit {
				break
			}
			tasks = append(tasks, t.Title)
		}
		items = append(items, fmt.Sprintf("%s: %s [%s]", model.DateKey(p.Date), p.Summary, strings.Join(tasks, ", ")))
	}
	return "Recent AI plans: " + strings.Join(items, " | ")
}

type average struct {
	sum float64
	n   int
}

func (a *average) add(v float64) {
	a.sum += v
	a.n++
}

func (a average) value() float64 {
	if a.n == 0 {
		return 0
	}
	return a.sum / float64(a.n)
}

// Truncate 按字符（rune）截断到 max 个字符以内，被截断时以 "…" 结尾。
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
