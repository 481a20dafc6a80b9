package service

import (
	"context"
	"errors"
	"studylife-go/internal/model"
	"studylife-go/internal/repository"
	"studylife-go/pkg/llm"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type countingLocker struct {
	locks, unlocks int
}

func (l *countingLocker) Lock(context.Context, uint) (func(), error) {
	l.locks++
	return func() { l.unlocks++ }, nil
}

func newTestChat(db *gorm.DB, gw llm.Client, locker repository.UserLocker) ChatService {
	return NewChatService(
		repository.NewUserRepository(db),
		NewContextService(db, 4000, fixedNow),
		gw,
		newTestDispatcher(db),
		NewConversationService(nil),
		locker,
	)
}

func TestChat_DispatchesActionsAndComposes(t *testing.T) {
	db := newTestDB(t)
	u := &model.User{Username: "rosa", Password: "x", DisplayName: "Rosa"}
	require.NoError(t, db.Create(u).Error)

	gw := &fakeGateway{resp: &llm.ChatResponse{
		Response:       "Added your habit.",
		ConversationID: "conv-9",
		Actions: []model.ModelAction{
			{Type: model.ActionAddHabit, Data: map[string]interface{}{"name": "Journal nightly"}},
			{Type: "not_a_real_action", Data: map[string]interface{}{}},
		},
	}}
	locker := &countingLocker{}

	reply, err := newTestChat(db, gw, locker).Chat(context.Background(), u.ID, ChatInput{Message: "help me journal"})
	require.NoError(t, err)

	assert.Equal(t, "Added your habit.", reply.Response)
	assert.Equal(t, "conv-9", reply.ConversationID)
	require.Len(t, reply.ActionResults, 1)
	assert.True(t, reply.ActionResults[0].Success)
	assert.Equal(t, 1, locker.locks)
	assert.Equal(t, 1, locker.unlocks)

	req := gw.lastRequest()
	assert.Equal(t, "Rosa", req.UserName)
	assert.Equal(t, llm.UserIDString(u.ID), req.UserID)
	assert.Equal(t, "help me journal", req.Message)
	assert.NotNil(t, req.ConversationHistory)
	assert.Contains(t, req.StructuredContext, "Total income 0.00")

	var count int64
	require.NoError(t, db.Model(&model.Habit{}).Where("user_id = ?", u.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestChat_NoActionsSkipsLockAndResults(t *testing.T) {
	db := newTestDB(t)
	u := createUser(t, db, "sam")
	gw := &fakeGateway{resp: &llm.ChatResponse{Response: "Hello!"}}
	locker := &countingLocker{}

	reply, err := newTestChat(db, gw, locker).Chat(context.Background(), u.ID, ChatInput{
		Message: "hi",
		History: []model.ChatMessage{
			{Role: "user", Content: "earlier question"},
			{Role: "system", Content: "ignored"},
			{Role: "Assistant", Content: "earlier answer"},
		},
	})
	require.NoError(t, err)
	assert.Nil(t, reply.ActionResults)
	assert.Equal(t, 0, locker.locks)

	assert.Equal(t, []llm.Message{
		{Role: "user", Content: "earlier question"},
		{Role: "assistant", Content: "earlier answer"},
	}, gw.lastRequest().ConversationHistory)
}

func TestChat_GatewayFailure(t *testing.T) {
	db := newTestDB(t)
	u := createUser(t, db, "tom")
	gw := &fakeGateway{err: errors.New("upstream 502")}

	_, err := newTestChat(db, gw, nil).Chat(context.Background(), u.ID, ChatInput{Message: "add expense 5"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAIService)
	assert.Contains(t, err.Error(), "upstream 502")
}
