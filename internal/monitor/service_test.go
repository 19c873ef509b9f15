package monitor

import (
	"context"
	"testing"
	"time"

	"ashare-sentinel/internal/config"
	"ashare-sentinel/internal/market"
	"ashare-sentinel/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	st, err := store.NewSQLite(config.DatabaseConfig{
		InMemory:     true,
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	if err != nil {
		t.Fatalf("NewSQLite returned error: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	svc, err := NewService(st, nil)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func TestServiceRecordAndList(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	svc.RecordStatusChange(ctx, "600519", "贵州茅台", market.StatusNormal,
		market.Status{Code: market.StatusLimitUp, IsTradable: true, IsLimitUp: true},
		market.PhaseMorningSession,
	)
	svc.RecordError(ctx, "拉取行情批次失败", context.DeadlineExceeded, map[string]interface{}{"page": 3})

	events, err := svc.ListEvents(ctx, "", 10)
	if err != nil {
		t.Fatalf("ListEvents returned error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	// 倒序：最近的 error 在前。
	if events[0].Type != EventError || events[1].Type != EventStatusChange {
		t.Errorf("unexpected order: %s, %s", events[0].Type, events[1].Type)
	}

	changes, err := svc.ListEvents(ctx, EventStatusChange, 10)
	if err != nil {
		t.Fatalf("ListEvents(filter) returned error: %v", err)
	}
	if len(changes) != 1 {
		t.Fatalf("len(changes) = %d, want 1", len(changes))
	}
	if changes[0].Timestamp.IsZero() {
		t.Errorf("expected parsed timestamp")
	}
}

func TestServiceRecordBatchSummary(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	statuses := map[string]market.Status{
		"600519": {Code: market.StatusNormal, IsTradable: true},
		"300750": {Code: market.StatusLimitUp, IsTradable: true, IsLimitUp: true},
		"000005": {Code: market.StatusDataAbnormal},
	}
	svc.RecordBatchSummary(ctx, market.PhaseAfternoonSession, statuses, 42*time.Millisecond)

	events, err := svc.ListEvents(ctx, EventBatchSummary, 5)
	if err != nil {
		t.Fatalf("ListEvents returned error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}

	payload, ok := events[0].Payload.(map[string]interface{})
	if !ok {
		t.Fatalf("payload type %T, want map", events[0].Payload)
	}
	if payload["phase"] != "afternoon_session" {
		t.Errorf("phase = %v, want afternoon_session", payload["phase"])
	}
	if int(payload["symbols"].(float64)) != 3 {
		t.Errorf("symbols = %v, want 3", payload["symbols"])
	}
}
