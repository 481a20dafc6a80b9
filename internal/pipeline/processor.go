// Package pipeline 定义了异步总结任务的处理流程。
package pipeline

import (
	"context"
	"fmt"
	"studylife-go/internal/service"
	"studylife-go/pkg/log"
	"studylife-go/pkg/tasks"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Processor 把 Kafka 中的总结任务交给总结生成器。
type Processor struct {
	summaries service.SummaryService
}

// NewProcessor 创建一个新的 Processor 实例。
func NewProcessor(summaries service.SummaryService) *Processor {
	return &Processor{summaries: summaries}
}

// Process 处理一个总结任务，返回错误时由消费者重试；任务无效时返回 backoff.Permanent。
func (p *Processor) Process(ctx context.Context, task tasks.SummaryTask) error {
	log.Infof("[Processor] 开始处理总结任务, kind: %s, userID: %d, date: %s", task.Kind, task.UserID, task.Date)

	// 任务本身无效时重试没有意义
	if task.UserID == 0 {
		return backoff.Permanent(fmt.Errorf("summary task without user id"))
	}
	ref, err := time.ParseInLocation("2006-01-02", task.Date, time.Local)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("invalid task date %q: %w", task.Date, err))
	}

	result, err := p.summaries.Generate(ctx, task.Kind, task.UserID, ref)
	if err != nil {
		return fmt.Errorf("generate %s summary for user %d: %w", task.Kind, task.UserID, err)
	}

	log.Infof("[Processor] 总结任务完成, key: %s, notificationID: %d, fallback: %t", task.Key(), result.NotificationID, result.Fallback)
	return nil
}
