package service

import (
	"context"
	"studylife-go/internal/model"
	"studylife-go/pkg/es"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationService(t *testing.T) {
	db := newTestDB(t)
	u := createUser(t, db, "vera")
	other := createUser(t, db, "walt")
	n := &model.Notification{UserID: u.ID, Title: "Daily Summary - 2024-05-10", Message: "ok"}
	require.NoError(t, db.Create(n).Error)

	svc := NewNotificationService(db)
	ctx := context.Background()

	items, err := svc.List(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.False(t, items[0].Read)

	assert.True(t, IsNotFound(svc.MarkRead(ctx, other.ID, n.ID)))
	require.NoError(t, svc.MarkRead(ctx, u.ID, n.ID))

	items, err = svc.List(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, items[0].Read)
}

type fakeSearcher struct {
	gotUser  uint
	gotQuery string
}

func (f *fakeSearcher) SearchJournals(_ context.Context, userID uint, query string, size int) ([]es.JournalHit, error) {
	f.gotUser, f.gotQuery = userID, query
	return []es.JournalHit{{Score: 1.5}}, nil
}

func TestJournalSearchService(t *testing.T) {
	ctx := context.Background()

	_, err := NewJournalSearchService(nil).Search(ctx, 1, "exam")
	assert.ErrorIs(t, err, ErrSearchDisabled)

	f := &fakeSearcher{}
	svc := NewJournalSearchService(f)
	hits, err := svc.Search(ctx, 3, "  exam stress ")
	require.NoError(t, err)
	assert.Len(t, hits, 1)
	assert.Equal(t, uint(3), f.gotUser)
	assert.Equal(t, "exam stress", f.gotQuery)

	hits, err = svc.Search(ctx, 3, "   ")
	require.NoError(t, err)
	assert.Empty(t, hits)
}
