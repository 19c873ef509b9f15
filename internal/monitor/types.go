package monitor

import (
	"time"

	"ashare-sentinel/internal/market"
)

// EventType 表示监控事件类型。
type EventType string

const (
	EventStatusChange EventType = "status_change"
	EventBatchSummary EventType = "batch_summary"
	EventError        EventType = "error"
)

// Event 封装通用监控事件。
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// StatusChangePayload 记录单个标的的状态迁移。
type StatusChangePayload struct {
	Symbol   string            `json:"symbol"`
	Name     string            `json:"name,omitempty"`
	Previous market.StatusCode `json:"previous,omitempty"`
	Current  market.Status     `json:"current"`
	Phase    string            `json:"phase"`
}

// BatchSummaryPayload 记录一个批次的判定概况。
type BatchSummaryPayload struct {
	Phase     string                    `json:"phase"`
	Symbols   int                       `json:"symbols"`
	Counts    map[market.StatusCode]int `json:"counts"`
	ElapsedMS int64                     `json:"elapsed_ms"`
}

// ErrorPayload 记录异常。
type ErrorPayload struct {
	Message string                 `json:"message"`
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}
