package service

import (
	"context"
	"strings"
	"studylife-go/internal/config"
	"studylife-go/internal/model"
	"studylife-go/pkg/database"
	"studylife-go/pkg/llm"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// 固定时钟：2024-05-10 中午，本地时区
var testNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.Local)

func fixedNow() time.Time { return testNow }

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open(config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: "file:" + name + "?mode=memory&cache=shared"},
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()
	u := &model.User{Username: username, Password: "x"}
	require.NoError(t, db.Create(u).Error)
	return u
}

func newTestDispatcher(db *gorm.DB) *actionService {
	return NewActionService(db, DispatchOptions{
		TxTimeout:      5 * time.Second,
		SkillTxTimeout: 5 * time.Second,
		Now:            fixedNow,
	}).(*actionService)
}

func act(actionType string, data map[string]interface{}) model.ModelAction {
	return model.ModelAction{Type: actionType, Data: data}
}

// fakeGateway 记录收到的请求并返回预设的响应。
type fakeGateway struct {
	mu       sync.Mutex
	requests []llm.ChatRequest
	resp     *llm.ChatResponse
	err      error
}

func (f *fakeGateway) Chat(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeGateway) lastRequest() llm.ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}
