package feed

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ashare-sentinel/internal/market"
)

// Service 聚合分页行情拉取：先取首页拿到总条数，
// 剩余页并发获取后合并为一个批次。
type Service struct {
	client   *Client
	maxPages int
	pageSize int
	logger   *zap.Logger
}

// NewService 创建行情快照服务。
func NewService(client *Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client:   client,
		maxPages: client.cfg.MaxPages,
		pageSize: client.cfg.PageSize,
		logger:   logger,
	}
}

// FetchBatch 拉取全市场一轮盘口快照。
func (s *Service) FetchBatch(ctx context.Context) ([]market.SymbolSnapshot, error) {
	first, total, err := s.client.FetchPage(ctx, 1)
	if err != nil {
		return nil, err
	}

	pages := 1
	if s.pageSize > 0 {
		pages = (total + s.pageSize - 1) / s.pageSize
	}
	if pages > s.maxPages {
		s.logger.Warn("行情页数超过上限，后续页被截断",
			zap.Int("total", total),
			zap.Int("pages", pages),
			zap.Int("max_pages", s.maxPages),
		)
		pages = s.maxPages
	}

	if pages <= 1 {
		return first, nil
	}

	rest := make([][]market.SymbolSnapshot, pages-1)
	group, groupCtx := errgroup.WithContext(ctx)
	for page := 2; page <= pages; page++ {
		idx := page - 2
		p := page
		group.Go(func() error {
			snapshots, _, err := s.client.FetchPage(groupCtx, p)
			if err != nil {
				return err
			}
			rest[idx] = snapshots
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("并发拉取行情失败: %w", err)
	}

	batch := make([]market.SymbolSnapshot, 0, total)
	batch = append(batch, first...)
	for _, snapshots := range rest {
		batch = append(batch, snapshots...)
	}

	s.logger.Debug("行情批次拉取完成",
		zap.Int("symbols", len(batch)),
		zap.Int("pages", pages),
		zap.Time("retrieved_at", time.Now().UTC()),
	)

	return batch, nil
}
