package service

import (
	"studylife-go/internal/model"
	"studylife-go/pkg/llm"
)

// ChatReply 是 POST /chat 成功时 data 字段的内容：模型响应原样保留，附加动作执行结果。
type ChatReply struct {
	Response       string               `json:"response"`
	ConversationID string               `json:"conversation_id,omitempty"`
	Actions        []model.ModelAction  `json:"actions,omitempty"`
	ActionResults  []model.ActionResult `json:"actionResults,omitempty"`
}

// ComposeResponse 合并模型响应与动作结果；没有结果时不输出 actionResults。
func ComposeResponse(resp *llm.ChatResponse, results []model.ActionResult) *ChatReply {
	reply := &ChatReply{
		Response:       resp.Response,
		ConversationID: resp.ConversationID,
		Actions:        resp.Actions,
	}
	if len(results) > 0 {
		reply.ActionResults = results
	}
	return reply
}
