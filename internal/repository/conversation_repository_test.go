package repository

import (
	"fmt"
	"studylife-go/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrimHistory(t *testing.T) {
	var msgs []model.ChatMessage
	for i := 0; i < 25; i++ {
		msgs = append(msgs, model.ChatMessage{Role: "user", Content: fmt.Sprint(i)})
	}
	trimmed := TrimHistory(msgs)
	assert.Len(t, trimmed, 20)
	assert.Equal(t, "5", trimmed[0].Content)
	assert.Equal(t, "24", trimmed[19].Content)

	assert.Len(t, TrimHistory(msgs[:3]), 3)
}

func TestNoopLocker(t *testing.T) {
	locker := NewUserLocker(nil, 0, 0)
	unlock, err := locker.Lock(t.Context(), 1)
	assert.NoError(t, err)
	unlock()
}

func TestConversationRepositoryDisabledWithoutRedis(t *testing.T) {
	assert.Nil(t, NewConversationRepository(nil))
}
