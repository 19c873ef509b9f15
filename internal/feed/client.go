// Package feed 封装东方财富行情列表接口，产出批量盘口快照。
// 行情源是引擎的外部协作方：这里只负责把 HTTP 响应翻译成
// market.SymbolSnapshot，状态判定一概不在本包发生。
package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"ashare-sentinel/internal/config"
	"ashare-sentinel/internal/market"
)

// 列表接口请求字段：f2 现价 f3 涨跌幅(%) f12 代码 f14 名称
// f31 买一价 f32 买一量 f33 卖一价 f34 卖一量
const listFields = "f2,f3,f12,f14,f31,f32,f33,f34"

// 市场过滤：沪市主板/科创板 + 深市主板/创业板 + 北交所
const listMarkets = "m:0+t:6,m:0+t:80,m:1+t:2,m:1+t:23,m:0+t:81+s:2048"

// 请求头（模拟浏览器，接口对裸客户端有风控）
const (
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	referer        = "https://quote.eastmoney.com/"
	acceptLanguage = "zh-CN,zh;q=0.9,en;q=0.8"
)

const httpStatusTooMany = 429

// Client 为行情列表接口的 HTTP 客户端，带重试与限流退避。
type Client struct {
	cfg    config.FeedConfig
	http   *http.Client
	logger *zap.Logger
}

// NewClient 创建行情客户端。
func NewClient(cfg config.FeedConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// FetchPage 拉取单页行情并解析为快照，返回快照与全市场总条数。
func (c *Client) FetchPage(ctx context.Context, page int) ([]market.SymbolSnapshot, int, error) {
	url := fmt.Sprintf("%s?pn=%d&pz=%d&fs=%s&fields=%s",
		c.cfg.BaseURL, page, c.cfg.PageSize, listMarkets, listFields)

	body, err := c.doWithRetry(ctx, url)
	if err != nil {
		return nil, 0, fmt.Errorf("拉取行情第 %d 页失败: %w", page, err)
	}

	return parseQuotePage(body, time.Now().UTC())
}

func (c *Client) doWithRetry(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := c.cfg.RetryDelay
			if isTooMany(lastErr) {
				// 被限流时退避更久，避免连续触发风控。
				delay = c.cfg.RetryDelay * 10
			}
			c.logger.Debug("行情请求重试",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Referer", referer)
		req.Header.Set("Accept", "application/json, text/plain, */*")
		req.Header.Set("Accept-Language", acceptLanguage)

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			lastErr = &statusError{code: resp.StatusCode}
			continue
		}
		return body, nil
	}
	return nil, lastErr
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("http %d", e.code)
}

func isTooMany(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.code == httpStatusTooMany
}

// parseQuotePage 解析列表接口 JSON：data.total 为总条数，
// data.diff 可能是数组，也可能是 "0","1",... 为键的对象，两者都要接受。
func parseQuotePage(body []byte, asOf time.Time) ([]market.SymbolSnapshot, int, error) {
	root := gjson.ParseBytes(body)
	data := root.Get("data")
	if !data.Exists() {
		return nil, 0, fmt.Errorf("行情响应缺少 data 字段")
	}

	total := int(data.Get("total").Int())
	diff := data.Get("diff")
	if !diff.Exists() {
		return nil, total, nil
	}

	snapshots := make([]market.SymbolSnapshot, 0, 64)
	diff.ForEach(func(_, item gjson.Result) bool {
		symbol := item.Get("f12").String()
		if symbol == "" {
			return true
		}
		snapshots = append(snapshots, market.SymbolSnapshot{
			Symbol: symbol,
			Name:   item.Get("f14").String(),
			Book: market.BookSnapshot{
				Bid1Price: item.Get("f31").Float(),
				Bid1Size:  item.Get("f32").Float(),
				Ask1Price: item.Get("f33").Float(),
				Ask1Size:  item.Get("f34").Float(),
				ChangePct: item.Get("f3").Float(),
				AsOf:      asOf,
			},
		})
		return true
	})

	return snapshots, total, nil
}
