package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ashare-sentinel/internal/config"
	"ashare-sentinel/internal/store"
)

// App 聚合核心依赖并驱动扫描器生命周期。
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store
}

// New 创建 App 实例。
func New(cfg *config.Config, logger *zap.Logger, store *store.Store) *App {
	return &App{
		cfg:    cfg,
		logger: logger,
		store:  store,
	}
}

// Run 初始化扫描器并进入轮询循环，直到上下文取消。
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("市场状态扫描器已初始化",
		zap.String("environment", a.cfg.App.Environment),
		zap.String("timezone", a.cfg.Session.Timezone),
		zap.Duration("poll_interval", a.cfg.Scheduler.PollInterval),
	)

	scn, err := newScanner(a.cfg, a.logger, a.store)
	if err != nil {
		return err
	}

	if a.cfg.Monitor.Enabled {
		if err := startMonitorServer(ctx, scn, a.cfg.Monitor.Port, a.logger); err != nil {
			return err
		}
	}

	pollInterval := a.cfg.Scheduler.PollInterval
	if pollInterval <= 0 {
		pollInterval = 3 * time.Second
	}

	if err = scn.Tick(ctx); err != nil {
		a.logger.Error("首次轮询失败", zap.Error(err))
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("扫描器异常退出: %w", err)
			}
			a.logger.Info("扫描器收到退出信号，正在停止")
			return nil
		case <-ticker.C:
			if err = scn.Tick(ctx); err != nil {
				a.logger.Error("轮询执行失败", zap.Error(err))
			}
		}
	}
}
