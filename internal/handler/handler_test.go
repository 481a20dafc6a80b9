package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"studylife-go/internal/model"
	"studylife-go/internal/service"
	"studylife-go/pkg/es"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// asUser 模拟 AuthMiddleware 写入的用户信息。
func asUser(id uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextUserID, id)
		c.Next()
	}
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return w, out
}

type fakeChat struct {
	in    service.ChatInput
	reply *service.ChatReply
	err   error
}

func (f *fakeChat) Chat(_ context.Context, _ uint, in service.ChatInput) (*service.ChatReply, error) {
	f.in = in
	return f.reply, f.err
}

type fakeConversations struct{}

func (fakeConversations) CurrentConversationID(context.Context, uint) (string, error) { return "c1", nil }
func (fakeConversations) GetConversationHistory(context.Context, uint) ([]model.ChatMessage, error) {
	return []model.ChatMessage{{Role: "user", Content: "hi"}}, nil
}
func (fakeConversations) AppendTurn(context.Context, string, string, string) error { return nil }

func chatRouter(chat service.ChatService) *gin.Engine {
	r := gin.New()
	h := NewChatHandler(chat, fakeConversations{})
	r.POST("/chat", asUser(1), h.Chat)
	r.GET("/chat/history", asUser(1), h.History)
	r.POST("/anon", h.Chat)
	return r
}

func TestChatHandler_MissingMessage(t *testing.T) {
	r := chatRouter(&fakeChat{})

	w, body := doJSON(t, r, http.MethodPost, "/chat", map[string]interface{}{"conversation_history": []interface{}{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Message is required", body["error"])

	w, _ = doJSON(t, r, http.MethodPost, "/chat", map[string]interface{}{"message": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatHandler_RequiresUser(t *testing.T) {
	w, body := doJSON(t, chatRouter(&fakeChat{}), http.MethodPost, "/anon", map[string]interface{}{"message": "hi"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, false, body["success"])
}

func TestChatHandler_Success(t *testing.T) {
	fc := &fakeChat{reply: &service.ChatReply{
		Response:       "Done",
		ConversationID: "abc",
		ActionResults:  []model.ActionResult{{Type: model.ActionAddExpense, Success: true}},
	}}
	w, body := doJSON(t, chatRouter(fc), http.MethodPost, "/chat", map[string]interface{}{"message": "spent 5 on lunch"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Done", data["response"])
	assert.Equal(t, "abc", data["conversation_id"])
	assert.Len(t, data["actionResults"], 1)
	assert.Equal(t, "spent 5 on lunch", fc.in.Message)
	assert.Nil(t, fc.in.History)
}

func TestChatHandler_NoResultsOmitsField(t *testing.T) {
	fc := &fakeChat{reply: &service.ChatReply{Response: "Hi"}}
	_, body := doJSON(t, chatRouter(fc), http.MethodPost, "/chat", map[string]interface{}{
		"message":              "hello",
		"conversation_history": []map[string]string{{"role": "user", "content": "before"}},
	})
	data := body["data"].(map[string]interface{})
	_, ok := data["actionResults"]
	assert.False(t, ok)
	require.Len(t, fc.in.History, 1)
	assert.Equal(t, "before", fc.in.History[0].Content)
}

func TestChatHandler_GatewayError(t *testing.T) {
	fc := &fakeChat{err: fmt.Errorf("%w: %w", service.ErrAIService, errors.New("timeout"))}
	w, body := doJSON(t, chatRouter(fc), http.MethodPost, "/chat", map[string]interface{}{"message": "hi"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "AI service error", body["error"])
	// 非 release 模式附带底层错误
	assert.Contains(t, body["details"], "timeout")
}

func TestChatHandler_History(t *testing.T) {
	w, body := doJSON(t, chatRouter(&fakeChat{}), http.MethodGet, "/chat/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["data"], 1)
}

type fakeSummaries struct{ kind string }

func (f *fakeSummaries) Generate(_ context.Context, kind string, userID uint, _ time.Time) (*service.SummaryResult, error) {
	f.kind = kind
	return &service.SummaryResult{Summary: "Nice day", Stats: service.SummaryStats{Kind: kind}, NotificationID: 4}, nil
}

func TestSummaryHandler(t *testing.T) {
	fs := &fakeSummaries{}
	h := NewSummaryHandler(fs)
	r := gin.New()
	r.POST("/summary/daily", asUser(2), h.Daily)
	r.POST("/summary/monthly", asUser(2), h.Monthly)

	w, body := doJSON(t, r, http.MethodPost, "/summary/monthly", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Monthly summary generated", body["message"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Nice day", data["summary"])
	assert.NotNil(t, data["stats"])
	assert.Equal(t, service.SummaryMonthly, fs.kind)
}

type fakeHabits struct{}

func (fakeHabits) List(context.Context, uint) ([]model.Habit, error) { return []model.Habit{}, nil }
func (fakeHabits) Toggle(_ context.Context, _ uint, habitID uint) (*model.Habit, error) {
	if habitID != 1 {
		return nil, &service.NotFoundError{Entity: "Habit"}
	}
	return &model.Habit{ID: 1, Name: "Run", Completed: true, Streak: 1}, nil
}

func TestHabitHandler_Toggle(t *testing.T) {
	h := NewHabitHandler(fakeHabits{})
	r := gin.New()
	r.PATCH("/habits/:id/toggle", asUser(1), h.Toggle)

	w, body := doJSON(t, r, http.MethodPatch, "/habits/1/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["data"].(map[string]interface{})["completed"])

	w, body = doJSON(t, r, http.MethodPatch, "/habits/2/toggle", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Habit not found", body["error"])

	w, _ = doJSON(t, r, http.MethodPatch, "/habits/abc/toggle", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type fakeJournalSearch struct{ err error }

func (f fakeJournalSearch) Search(context.Context, uint, string) ([]es.JournalHit, error) {
	return []es.JournalHit{}, f.err
}

func TestJournalHandler_Search(t *testing.T) {
	r := gin.New()
	r.GET("/off", asUser(1), NewJournalHandler(fakeJournalSearch{err: service.ErrSearchDisabled}).Search)
	r.GET("/on", asUser(1), NewJournalHandler(fakeJournalSearch{}).Search)

	w, _ := doJSON(t, r, http.MethodGet, "/off?q=exam", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w, _ = doJSON(t, r, http.MethodGet, "/on", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body := doJSON(t, r, http.MethodGet, "/on?q=exam", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
}
