package pipeline

import (
	"context"
	"errors"
	"studylife-go/internal/service"
	"studylife-go/pkg/tasks"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSummaries struct {
	kind   string
	userID uint
	ref    time.Time
	err    error
}

func (f *fakeSummaries) Generate(_ context.Context, kind string, userID uint, ref time.Time) (*service.SummaryResult, error) {
	f.kind, f.userID, f.ref = kind, userID, ref
	if f.err != nil {
		return nil, f.err
	}
	return &service.SummaryResult{NotificationID: 9}, nil
}

func TestProcess(t *testing.T) {
	fs := &fakeSummaries{}
	p := NewProcessor(fs)

	err := p.Process(context.Background(), tasks.SummaryTask{Kind: tasks.KindMonthly, UserID: 3, Date: "2024-04-01"})
	require.NoError(t, err)
	assert.Equal(t, "monthly", fs.kind)
	assert.Equal(t, uint(3), fs.userID)
	assert.True(t, fs.ref.Equal(time.Date(2024, 4, 1, 0, 0, 0, 0, time.Local)))
}

func TestProcess_InvalidTask(t *testing.T) {
	fs := &fakeSummaries{}
	p := NewProcessor(fs)

	var perm *backoff.PermanentError
	assert.ErrorAs(t, p.Process(context.Background(), tasks.SummaryTask{Kind: "daily", Date: "2024-04-01"}), &perm)
	assert.ErrorAs(t, p.Process(context.Background(), tasks.SummaryTask{Kind: "daily", UserID: 1, Date: "04/01/2024"}), &perm)
	assert.Zero(t, fs.userID)
}

func TestProcess_GenerateError(t *testing.T) {
	boom := errors.New("boom")
	p := NewProcessor(&fakeSummaries{err: boom})
	err := p.Process(context.Background(), tasks.SummaryTask{Kind: "daily", UserID: 1, Date: "2024-04-01"})
	assert.ErrorIs(t, err, boom)
}
