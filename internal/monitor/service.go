package monitor

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ashare-sentinel/internal/market"
	"ashare-sentinel/internal/store"
)

// Service 负责持久化监控事件。记录失败只降级为告警日志，
// 不允许打断扫描循环。
type Service struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewService 初始化监控服务，创建所需表结构。
func NewService(store *store.Store, logger *zap.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("monitor: store 不能为空")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service{
		db:     store.DB(),
		logger: logger,
	}

	if err := s.initSchema(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Service) initSchema() error {
	stmt := `
CREATE TABLE IF NOT EXISTS monitor_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	event_type TEXT NOT NULL,
	payload TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_monitor_events_type ON monitor_events(event_type);
`
	if _, err := s.db.Exec(stmt); err != nil {
		return fmt.Errorf("monitor: 初始化表失败: %w", err)
	}
	return nil
}

// Record 写入单个事件。
func (s *Service) Record(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("monitor: 序列化事件失败: %w", err)
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO monitor_events (event_type, payload, created_at) VALUES (?, ?, ?)`,
		string(event.Type), string(payload), event.Timestamp.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("monitor: 写入事件失败: %w", err)
	}

	return nil
}

// RecordStatusChange 记录标的状态迁移。
func (s *Service) RecordStatusChange(ctx context.Context, symbol, name string, previous market.StatusCode, current market.Status, phase market.SessionPhase) {
	if err := s.Record(ctx, Event{
		Type:      EventStatusChange,
		Timestamp: time.Now().UTC(),
		Payload: StatusChangePayload{
			Symbol:   symbol,
			Name:     name,
			Previous: previous,
			Current:  current,
			Phase:    phase.String(),
		},
	}); err != nil {
		s.logger.Warn("记录状态迁移事件失败", zap.Error(err), zap.String("symbol", symbol))
	}
}

// RecordBatchSummary 记录批次概况。
func (s *Service) RecordBatchSummary(ctx context.Context, phase market.SessionPhase, statuses map[string]market.Status, elapsed time.Duration) {
	counts := make(map[market.StatusCode]int, 8)
	for _, st := range statuses {
		counts[st.Code]++
	}
	if err := s.Record(ctx, Event{
		Type:      EventBatchSummary,
		Timestamp: time.Now().UTC(),
		Payload: BatchSummaryPayload{
			Phase:     phase.String(),
			Symbols:   len(statuses),
			Counts:    counts,
			ElapsedMS: elapsed.Milliseconds(),
		},
	}); err != nil {
		s.logger.Warn("记录批次概况失败", zap.Error(err))
	}
}

// RecordError 记录异常。
func (s *Service) RecordError(ctx context.Context, message string, cause error, context map[string]interface{}) {
	errText := ""
	if cause != nil {
		errText = cause.Error()
	}
	if err := s.Record(ctx, Event{
		Type:      EventError,
		Timestamp: time.Now().UTC(),
		Payload: ErrorPayload{
			Message: message,
			Error:   errText,
			Context: context,
		},
	}); err != nil {
		s.logger.Warn("记录错误事件失败", zap.Error(err))
	}
}

// ListEvents 按类型（可选）倒序返回最近的事件。
func (s *Service) ListEvents(ctx context.Context, eventType EventType, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 200
	}

	query := `SELECT event_type, payload, created_at FROM monitor_events`
	args := make([]interface{}, 0, 2)
	if eventType != "" {
		query += ` WHERE event_type = ?`
		args = append(args, string(eventType))
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("monitor: 查询事件失败: %w", err)
	}
	defer rows.Close()

	events := make([]Event, 0, limit)
	for rows.Next() {
		var (
			typ     string
			payload string
			created string
		)
		if err := rows.Scan(&typ, &payload, &created); err != nil {
			return nil, fmt.Errorf("monitor: 读取事件失败: %w", err)
		}

		event := Event{Type: EventType(typ)}
		if ts, parseErr := time.Parse(time.RFC3339, created); parseErr == nil {
			event.Timestamp = ts
		}
		var decoded interface{}
		if err := json.Unmarshal([]byte(payload), &decoded); err == nil {
			event.Payload = decoded
		} else {
			event.Payload = payload
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("monitor: 遍历事件失败: %w", err)
	}

	return events, nil
}
