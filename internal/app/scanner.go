package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"ashare-sentinel/internal/config"
	"ashare-sentinel/internal/feed"
	"ashare-sentinel/internal/market"
	"ashare-sentinel/internal/monitor"
	"ashare-sentinel/internal/store"
)

// scanner 驱动单次轮询：拉取行情批次、整批判定状态、
// 与上一轮比对并记录迁移。
type scanner struct {
	feed    *feed.Service
	batch   *market.BatchClassifier
	monitor *monitor.Service
	logger  *zap.Logger

	mu       sync.RWMutex
	statuses map[string]market.Status
}

func newScanner(cfg *config.Config, logger *zap.Logger, store *store.Store) (*scanner, error) {
	calendar, err := market.NewCalendar(cfg.Session)
	if err != nil {
		return nil, err
	}
	rules := market.NewLimitRules(cfg.Limits)

	monitorSvc, err := monitor.NewService(store, logger)
	if err != nil {
		return nil, err
	}

	feedClient := feed.NewClient(cfg.Feed, logger)

	return &scanner{
		feed:     feed.NewService(feedClient, logger),
		batch:    market.NewBatchClassifier(calendar, rules, logger),
		monitor:  monitorSvc,
		logger:   logger,
		statuses: make(map[string]market.Status),
	}, nil
}

// Tick 执行一次轮询。行情拉取失败会中断本次轮询并上报，
// 单个标的的坏快照不会——它以 data_abnormal 状态出现在结果里。
func (s *scanner) Tick(ctx context.Context) error {
	start := time.Now()

	symbols, err := s.feed.FetchBatch(ctx)
	if err != nil {
		s.monitor.RecordError(ctx, "拉取行情批次失败", err, nil)
		return err
	}

	phase, statuses := s.batch.ClassifyBatch(time.Now(), symbols)

	names := make(map[string]string, len(symbols))
	for _, sym := range symbols {
		names[sym.Symbol] = sym.Name
	}

	s.mu.RLock()
	previous := s.statuses
	s.mu.RUnlock()

	for symbol, current := range statuses {
		prev, seen := previous[symbol]
		if seen && prev.Code == current.Code {
			continue
		}

		prevCode := market.StatusCode("")
		if seen {
			prevCode = prev.Code
		}
		s.monitor.RecordStatusChange(ctx, symbol, names[symbol], prevCode, current, phase)

		switch {
		case current.Code == market.StatusDataAbnormal:
			s.logger.Warn("标的行情异常",
				zap.String("symbol", symbol),
				zap.String("name", names[symbol]),
				zap.String("detail", current.Detail),
			)
		case seen && prev.IsTradable != current.IsTradable:
			s.logger.Info("标的可交易状态变化",
				zap.String("symbol", symbol),
				zap.String("name", names[symbol]),
				zap.String("from", string(prevCode)),
				zap.String("to", string(current.Code)),
			)
		}
	}

	s.monitor.RecordBatchSummary(ctx, phase, statuses, time.Since(start))

	s.mu.Lock()
	s.statuses = statuses
	s.mu.Unlock()

	s.logger.Info("轮询完成",
		zap.String("phase", phase.String()),
		zap.Int("symbols", len(statuses)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return nil
}

// Statuses 返回最近一轮判定结果的副本，供监控接口读取。
func (s *scanner) Statuses() map[string]market.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]market.Status, len(s.statuses))
	for symbol, status := range s.statuses {
		out[symbol] = status
	}
	return out
}

// Monitor 返回监控服务。
func (s *scanner) Monitor() *monitor.Service {
	return s.monitor
}
