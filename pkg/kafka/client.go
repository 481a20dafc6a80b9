// Package kafka 提供了与 Kafka 消息队列交互的功能。
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"studylife-go/internal/config"
	"studylife-go/pkg/log"
	"studylife-go/pkg/tasks"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"
)

// 同一任务最多尝试的次数，超过后提交 offset 放弃
const maxAttempts = 3

// TaskProcessor defines the interface for any service that can process a task.
// This decouples the Kafka consumer from the concrete pipeline implementation.
type TaskProcessor interface {
	Process(ctx context.Context, task tasks.SummaryTask) error
}

// Producer 发送总结任务。
type Producer struct {
	writer *kafka.Writer
}

func brokers(cfg config.KafkaConfig) []string {
	var out []string
	for _, b := range strings.Split(cfg.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// NewProducer 初始化 Kafka 生产者。
func NewProducer(cfg config.KafkaConfig) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers(cfg)...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
	log.Info("Kafka 生产者初始化成功")
	return &Producer{writer: w}
}

// ProduceSummaryTask 发送一个总结任务到 Kafka，同一用户的任务落在同一分区。
func (p *Producer) ProduceSummaryTask(ctx context.Context, task tasks.SummaryTask) error {
	taskBytes, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(fmt.Sprintf("%d", task.UserID)),
		Value: taskBytes,
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// newRetryBackOff 返回单个任务在进程内重试使用的退避策略，共 maxAttempts 次尝试。
func newRetryBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 2 * time.Second
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0
	return backoff.WithMaxRetries(b, maxAttempts-1)
}

// processWithRetry 在当前协程内重试 Process，直到成功、次数用尽或 ctx 结束。
// FetchMessage 已经越过该消息，不提交 offset 也不会被重新投递，所以重试只能在这里完成。
func processWithRetry(ctx context.Context, processor TaskProcessor, task tasks.SummaryTask, b backoff.BackOff) error {
	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := processor.Process(ctx, task)
		if err != nil {
			log.Warnw("处理总结任务失败", "key", task.Key(), "attempt", attempt, "error", err)
		}
		return err
	}, backoff.WithContext(b, ctx))
}

// StartConsumer 启动消费者处理总结任务，直到 ctx 取消。
// 每条消息最多尝试 maxAttempts 次，之后无论成败都提交 offset。
func StartConsumer(ctx context.Context, cfg config.KafkaConfig, processor TaskProcessor) {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers(cfg),
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})

	log.Infof("Kafka 消费者已启动，正在监听主题 '%s'", cfg.Topic)

	for {
		m, err := r.FetchMessage(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Error("从 Kafka 读取消息失败", err)
			}
			break
		}

		var task tasks.SummaryTask
		if err := json.Unmarshal(m.Value, &task); err != nil {
			log.Errorf("无法解析 Kafka 消息: %v, value: %s", err, string(m.Value))
			// 消息格式错误，直接提交，避免阻塞队列
			commit(ctx, r, m)
			continue
		}

		if err := processWithRetry(ctx, processor, task, newRetryBackOff()); err != nil {
			if ctx.Err() != nil {
				// 关闭中，不提交，重启后由新的消费者处理
				break
			}
			log.Errorf("总结任务多次失败(%d 次)，提交 offset 放弃: %s, Error: %v", maxAttempts, task.Key(), err)
		} else {
			log.Infof("总结任务处理成功: %s", task.Key())
		}
		commit(ctx, r, m)
	}

	if err := r.Close(); err != nil {
		log.Errorf("关闭 Kafka 消费者失败: %v", err)
	}
}

func commit(ctx context.Context, r *kafka.Reader, m kafka.Message) {
	if err := r.CommitMessages(ctx, m); err != nil {
		log.Errorf("提交 Kafka 消息 offset 失败: %v", err)
	}
}
