package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"studylife-go/internal/config"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(config.AIServiceConfig{BaseURL: srv.URL, TimeoutSeconds: 5})
}

func TestChat_DecodesActions(t *testing.T) {
	var got ChatRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"done","conversation_id":"c1","actions":[{"type":"add_expense","data":{"amount":"50"}}]}`))
	})

	resp, err := c.Chat(context.Background(), ChatRequest{UserID: "3", Message: "spent 50", StructuredContext: "ctx"})
	require.NoError(t, err)

	assert.Equal(t, "done", resp.Response)
	assert.Equal(t, "c1", resp.ConversationID)
	require.Len(t, resp.Actions, 1)
	assert.Equal(t, "add_expense", resp.Actions[0].Type)
	assert.Equal(t, "50", resp.Actions[0].Data["amount"])

	assert.Equal(t, "3", got.UserID)
	assert.Equal(t, "ctx", got.StructuredContext)
	assert.NotNil(t, got.ConversationHistory)
}

func TestChat_MissingResponseField(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"actions":[]}`))
	})

	_, err := c.Chat(context.Background(), ChatRequest{Message: "hi"})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestChat_ErrorStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"detail":"model offline"}`))
	})

	_, err := c.Chat(context.Background(), ChatRequest{Message: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "model offline")
}
