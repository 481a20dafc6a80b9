package main

import (
	"bytes"
	"context"
	"studylife-go/internal/service"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSummaries struct {
	kind   string
	userID uint
	ref    time.Time
}

func (f *fakeSummaries) Generate(_ context.Context, kind string, userID uint, ref time.Time) (*service.SummaryResult, error) {
	f.kind, f.userID, f.ref = kind, userID, ref
	return &service.SummaryResult{Summary: "ok", NotificationID: 7}, nil
}

func TestParseRefDate(t *testing.T) {
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.Local)

	got, err := parseRefDate("", now)
	require.NoError(t, err)
	assert.Equal(t, now, got)

	got, err = parseRefDate("2024-04-02", now)
	require.NoError(t, err)
	assert.Equal(t, "2024-04-02", got.Format("2006-01-02"))

	_, err = parseRefDate("04/02/2024", now)
	assert.Error(t, err)
}

func TestRunSummary(t *testing.T) {
	f := &fakeSummaries{}
	var out bytes.Buffer
	ref := time.Date(2024, 5, 10, 0, 0, 0, 0, time.Local)

	require.NoError(t, runSummary(context.Background(), f, service.SummaryMonthly, 3, ref, &out))
	assert.Equal(t, service.SummaryMonthly, f.kind)
	assert.Equal(t, uint(3), f.userID)
	assert.Contains(t, out.String(), `"notificationId": 7`)

	assert.Error(t, runSummary(context.Background(), f, service.SummaryDaily, 0, ref, &out))
}
