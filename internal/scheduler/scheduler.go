// Package scheduler 定时为所有用户触发每日/每月总结。
package scheduler

import (
	"context"
	"fmt"
	"studylife-go/internal/config"
	"studylife-go/internal/service"
	"studylife-go/pkg/log"
	"studylife-go/pkg/tasks"
	"time"

	"github.com/robfig/cron"
)

// 单个用户直接生成总结时的超时
const directGenerateTimeout = 3 * time.Minute

// UserLister 列出需要生成总结的用户。
type UserLister interface {
	ListIDs(ctx context.Context) ([]uint, error)
}

// TaskProducer 把总结任务投递到消息队列，由 pkg/kafka 实现。
type TaskProducer interface {
	ProduceSummaryTask(ctx context.Context, task tasks.SummaryTask) error
}

// Scheduler 在 DailyHour 点生成当天的每日总结，在每月 MonthlyDay 日生成上个月的月度总结。
// 配置了 producer 时只投递任务，否则在进程内直接生成。
type Scheduler struct {
	cfg       config.SchedulerConfig
	users     UserLister
	producer  TaskProducer
	summaries service.SummaryService
	cron      *cron.Cron
	now       func() time.Time
}

// New 创建调度器。producer 可以为 nil。
func New(cfg config.SchedulerConfig, users UserLister, producer TaskProducer, summaries service.SummaryService) *Scheduler {
	return &Scheduler{
		cfg:       cfg,
		users:     users,
		producer:  producer,
		summaries: summaries,
		cron:      cron.New(),
		now:       time.Now,
	}
}

// DailySpec 返回每日总结的 cron 表达式（带秒字段）。
func DailySpec(hour int) string {
	if hour < 0 || hour > 23 {
		hour = 21
	}
	return fmt.Sprintf("0 0 %d * * *", hour)
}

// MonthlySpec 返回月度总结的 cron 表达式，凌晨 00:30 执行。
func MonthlySpec(day int) string {
	if day < 1 || day > 28 {
		day = 1
	}
	return fmt.Sprintf("0 30 0 %d * *", day)
}

// PreviousMonth 返回 ref 所在月份的上一个月中的某一天。
func PreviousMonth(ref time.Time) time.Time {
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	return first.AddDate(0, 0, -1)
}

// Start 注册定时任务并启动。
func (s *Scheduler) Start() error {
	if err := s.cron.AddFunc(DailySpec(s.cfg.DailyHour), func() {
		s.Run(context.Background(), tasks.KindDaily, s.now())
	}); err != nil {
		return fmt.Errorf("register daily summary job: %w", err)
	}
	if err := s.cron.AddFunc(MonthlySpec(s.cfg.MonthlyDay), func() {
		s.Run(context.Background(), tasks.KindMonthly, PreviousMonth(s.now()))
	}); err != nil {
		return fmt.Errorf("register monthly summary job: %w", err)
	}
	s.cron.Start()
	log.Infof("总结调度器已启动, daily: %s, monthly: %s", DailySpec(s.cfg.DailyHour), MonthlySpec(s.cfg.MonthlyDay))
	return nil
}

// Stop 停止调度，不等待正在执行的任务。
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// Run 为所有用户触发一次 kind 类型的总结，返回成功触发的用户数。
// 单个用户失败只记录日志。
func (s *Scheduler) Run(ctx context.Context, kind string, ref time.Time) int {
	ids, err := s.users.ListIDs(ctx)
	if err != nil {
		log.Errorw("列出用户失败，跳过本次总结", "kind", kind, "error", err)
		return 0
	}

	date := ref.Format("2006-01-02")
	triggered := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			break
		}
		task := tasks.SummaryTask{Kind: kind, UserID: id, Date: date}
		if err := s.trigger(ctx, task, ref); err != nil {
			log.Warnw("触发总结失败", "key", task.Key(), "error", err)
			continue
		}
		triggered++
	}
	log.Infow("总结调度完成", "kind", kind, "date", date, "users", len(ids), "triggered", triggered)
	return triggered
}

func (s *Scheduler) trigger(ctx context.Context, task tasks.SummaryTask, ref time.Time) error {
	if s.producer != nil {
		return s.producer.ProduceSummaryTask(ctx, task)
	}
	genCtx, cancel := context.WithTimeout(ctx, directGenerateTimeout)
	defer cancel()
	_, err := s.summaries.Generate(genCtx, task.Kind, task.UserID, ref)
	return err
}
