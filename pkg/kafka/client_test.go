package kafka

import (
	"context"
	"errors"
	"studylife-go/pkg/tasks"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
)

type flakyProcessor struct {
	failures int
	err      error
	calls    int
}

func (p *flakyProcessor) Process(context.Context, tasks.SummaryTask) error {
	p.calls++
	if p.err != nil {
		return p.err
	}
	if p.calls <= p.failures {
		return errors.New("ai service unavailable")
	}
	return nil
}

func quickBackOff() backoff.BackOff {
	return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, maxAttempts-1)
}

var sampleTask = tasks.SummaryTask{Kind: tasks.KindDaily, UserID: 1, Date: "2024-05-10"}

func TestProcessWithRetry_RecoversWithinAttempts(t *testing.T) {
	p := &flakyProcessor{failures: maxAttempts - 1}
	assert.NoError(t, processWithRetry(context.Background(), p, sampleTask, quickBackOff()))
	assert.Equal(t, maxAttempts, p.calls)
}

func TestProcessWithRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	p := &flakyProcessor{failures: 100}
	assert.Error(t, processWithRetry(context.Background(), p, sampleTask, quickBackOff()))
	assert.Equal(t, maxAttempts, p.calls)
}

func TestProcessWithRetry_PermanentErrorNotRetried(t *testing.T) {
	invalid := errors.New("invalid task date")
	p := &flakyProcessor{err: backoff.Permanent(invalid)}
	err := processWithRetry(context.Background(), p, sampleTask, quickBackOff())
	assert.ErrorIs(t, err, invalid)
	assert.Equal(t, 1, p.calls)
}

func TestProcessWithRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &flakyProcessor{failures: 100}
	assert.Error(t, processWithRetry(ctx, p, sampleTask, quickBackOff()))
	assert.LessOrEqual(t, p.calls, 1)
}

func TestNewRetryBackOff_Bounded(t *testing.T) {
	b := newRetryBackOff()
	for i := 0; i < maxAttempts-1; i++ {
		assert.NotEqual(t, backoff.Stop, b.NextBackOff())
	}
	assert.Equal(t, backoff.Stop, b.NextBackOff())
}
