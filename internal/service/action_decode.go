package service

import (
	"fmt"
	"reflect"
	"strings"
	"studylife-go/internal/model"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// 下面的 payload 结构对应各动作类型的 data 字段。
// 指针字段为 nil 表示模型没有提供该字段，更新时保留原值。

type userPayload struct {
	DisplayName  *string `mapstructure:"display_name"`
	Name         *string `mapstructure:"name"`
	University   *string `mapstructure:"university"`
	Major        *string `mapstructure:"major"`
	AcademicYear *string `mapstructure:"academic_year"`
	Bio          *string `mapstructure:"bio"`
}

type coursePayload struct {
	Name       string `mapstructure:"name"`
	CourseName string `mapstructure:"course_name"`
	Code       string `mapstructure:"code"`
	Instructor string `mapstructure:"instructor"`
	Credits    int    `mapstructure:"credits"`
	Semester   string `mapstructure:"semester"`
	Schedule   string `mapstructure:"schedule"`
}

type milestoneInput struct {
	Name      string `mapstructure:"name"`
	Title     string `mapstructure:"title"`
	Completed bool   `mapstructure:"completed"`
	Order     *int   `mapstructure:"order"`
}

func (m milestoneInput) label() string {
	return firstNonEmpty(m.Name, m.Title)
}

type resourceInput struct {
	Title       string `mapstructure:"title"`
	Name        string `mapstructure:"name"`
	Type        string `mapstructure:"type"`
	URL         string `mapstructure:"url"`
	Content     string `mapstructure:"content"`
	Description string `mapstructure:"description"`
}

func (r resourceInput) label() string {
	return firstNonEmpty(r.Title, r.Name)
}

type skillPayload struct {
	SkillID        *uint            `mapstructure:"skill_id"`
	SkillName      string           `mapstructure:"skill_name"`
	Name           string           `mapstructure:"name"`
	NewName        string           `mapstructure:"new_name"`
	Category       *string          `mapstructure:"category"`
	Level          *string          `mapstructure:"level"`
	Description    *string          `mapstructure:"description"`
	GoalStatement  *string          `mapstructure:"goal_statement"`
	DurationMonths *int             `mapstructure:"duration_months"`
	EstimatedHours *float64         `mapstructure:"estimated_hours"`
	StartDate      *time.Time       `mapstructure:"start_date"`
	EndDate        *time.Time       `mapstructure:"end_date"`
	Progress       *float64         `mapstructure:"progress"`
	TimeSpent      *float64         `mapstructure:"time_spent"`
	Milestones     []milestoneInput `mapstructure:"milestones"`
	Resources      []resourceInput  `mapstructure:"resources"`
}

// lookupName 是定位已有技能使用的名字：skill_name 优先，其次 name。
func (p skillPayload) lookupName() string {
	return firstNonEmpty(p.SkillName, p.Name)
}

// add_milestone / add_resource 中的 name/title 指里程碑或资源本身，技能只能通过 skill_id 或 skill_name 指定。
type milestonePayload struct {
	SkillID   *uint  `mapstructure:"skill_id"`
	SkillName string `mapstructure:"skill_name"`
	Name      string `mapstructure:"name"`
	Milestone string `mapstructure:"milestone"`
	Title     string `mapstructure:"title"`
	Completed *bool  `mapstructure:"completed"`
	Order     *int   `mapstructure:"order"`
}

func (p milestonePayload) label() string {
	return firstNonEmpty(p.Name, p.Milestone, p.Title)
}

type resourcePayload struct {
	SkillID     *uint  `mapstructure:"skill_id"`
	SkillName   string `mapstructure:"skill_name"`
	Title       string `mapstructure:"title"`
	Name        string `mapstructure:"name"`
	Type        string `mapstructure:"type"`
	URL         string `mapstructure:"url"`
	Content     string `mapstructure:"content"`
	Description string `mapstructure:"description"`
}

func (p resourcePayload) label() string {
	return firstNonEmpty(p.Title, p.Name)
}

type financePayload struct {
	FinanceID      *uint      `mapstructure:"finance_id"`
	ID             *uint      `mapstructure:"id"`
	Type           string     `mapstructure:"type"`
	Amount         *float64   `mapstructure:"amount"`
	Category       *string    `mapstructure:"category"`
	Description    *string    `mapstructure:"description"`
	NewDescription *string    `mapstructure:"new_description"`
	Date           *time.Time `mapstructure:"date"`
	PaymentMethod  *string    `mapstructure:"payment_method"`
	Recurring      *bool      `mapstructure:"recurring"`
	Frequency      *string    `mapstructure:"frequency"`
	GoalID         *uint      `mapstructure:"goal_id"`
	GoalTitle      string     `mapstructure:"goal_title"`
}

func (p financePayload) targetID() *uint {
	if p.FinanceID != nil {
		return p.FinanceID
	}
	return p.ID
}

type savingsGoalPayload struct {
	GoalID        *uint      `mapstructure:"goal_id"`
	Title         string     `mapstructure:"title"`
	Name          string     `mapstructure:"name"`
	NewTitle      string     `mapstructure:"new_title"`
	TargetAmount  *float64   `mapstructure:"target_amount"`
	CurrentAmount *float64   `mapstructure:"current_amount"`
	DueDate       *time.Time `mapstructure:"due_date"`
	Priority      *string    `mapstructure:"priority"`
	Status        *string    `mapstructure:"status"`
}

func (p savingsGoalPayload) lookupTitle() string {
	return firstNonEmpty(p.Title, p.Name)
}

type journalPayload struct {
	JournalID *uint      `mapstructure:"journal_id"`
	Title     *string    `mapstructure:"title"`
	Content   *string    `mapstructure:"content"`
	Mood      *string    `mapstructure:"mood"`
	Tags      []string   `mapstructure:"tags"`
	Date      *time.Time `mapstructure:"date"`
}

type lifestylePayload struct {
	LifestyleID     *uint      `mapstructure:"lifestyle_id"`
	Date            *time.Time `mapstructure:"date"`
	SleepHours      *float64   `mapstructure:"sleep_hours"`
	ExerciseMinutes *int       `mapstructure:"exercise_minutes"`
	WaterIntake     *float64   `mapstructure:"water_intake"`
	MealQuality     *string    `mapstructure:"meal_quality"`
	StressLevel     *int       `mapstructure:"stress_level"`
	Notes           *string    `mapstructure:"notes"`
}

type habitPayload struct {
	HabitID   *uint   `mapstructure:"habit_id"`
	HabitName string  `mapstructure:"habit_name"`
	Name      string  `mapstructure:"name"`
	NewName   string  `mapstructure:"new_name"`
	Target    *string `mapstructure:"target"`
	Time      *string `mapstructure:"time"`
	Completed *bool   `mapstructure:"completed"`
}

func (p habitPayload) lookupName() string {
	return firstNonEmpty(p.HabitName, p.Name)
}

// decodeAction 把模型给出的无类型 data 解码到 payload 结构。
// 键名忽略大小写与 "_"/"-"，数字与布尔值接受字符串形式，null 与空字符串视为未提供。
func decodeAction(data map[string]interface{}, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		MatchName: func(mapKey, fieldName string) bool {
			return normalizeKey(mapKey) == normalizeKey(fieldName)
		},
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			stringToDateHook,
			stringToMilestoneHook,
			stringToResourceHook,
			stringToTagsHook,
			numericStringHook,
		),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(cleanData(data)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAction, err)
	}
	return nil
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(s))
}

func cleanData(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		out[k] = v
	}
	return out
}

var (
	timeType      = reflect.TypeOf(time.Time{})
	milestoneType = reflect.TypeOf(milestoneInput{})
	resourceType  = reflect.TypeOf(resourceInput{})
	tagsType      = reflect.TypeOf([]string{})
)

// 日期按服务器本地时区解析
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	model.DateLayout,
	"2006/01/02",
}

// nowFunc 可在测试中替换
var nowFunc = time.Now

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "today", "now":
		return model.StartOfDay(nowFunc()), nil
	case "yesterday":
		return model.StartOfDay(nowFunc()).AddDate(0, 0, -1), nil
	case "tomorrow":
		return model.StartOfDay(nowFunc()).AddDate(0, 0, 1), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func stringToDateHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != timeType {
		return data, nil
	}
	return parseDate(data.(string))
}

func stringToMilestoneHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != milestoneType {
		return data, nil
	}
	return map[string]interface{}{"name": strings.TrimSpace(data.(string))}, nil
}

func stringToResourceHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != resourceType {
		return data, nil
	}
	return map[string]interface{}{"title": strings.TrimSpace(data.(string))}, nil
}

func stringToTagsHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != tagsType {
		return data, nil
	}
	return splitTags(data.(string)), nil
}

func splitTags(s string) []string {
	tags := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

// numericStringHook 去掉金额中常见的货币符号与千分位，例如 "$1,200"。
func numericStringHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	switch to.Kind() {
	case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int64, reflect.Int32, reflect.Uint, reflect.Uint64, reflect.Uint32:
	default:
		return data, nil
	}
	s := strings.TrimSpace(data.(string))
	s = strings.TrimLeft(s, "$¥€£")
	s = strings.ReplaceAll(s, ",", "")
	return strings.TrimSpace(s), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
