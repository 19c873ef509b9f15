package market

import (
	"fmt"
	"time"

	"ashare-sentinel/internal/config"
)

// SessionPhase 表示交易日内的粗粒度时段。
type SessionPhase int

const (
	// PhasePreAuction 开盘集合竞价，可报单但未撮合。
	PhasePreAuction SessionPhase = iota
	// PhaseAuctionVacuum 竞价撮合完成到连续竞价开始之间的真空期，
	// 盘口深度接近于零是正常现象。
	PhaseAuctionVacuum
	// PhaseMorningSession 上午连续竞价。
	PhaseMorningSession
	// PhaseLunchRecess 午间休市，交易日未结束但撮合暂停。
	PhaseLunchRecess
	// PhaseAfternoonSession 下午连续竞价。
	PhaseAfternoonSession
	// PhaseClosed 休市（含周末与夜间）。
	PhaseClosed
)

// String 返回时段的可读名称。
func (p SessionPhase) String() string {
	switch p {
	case PhasePreAuction:
		return "pre_auction"
	case PhaseAuctionVacuum:
		return "auction_vacuum"
	case PhaseMorningSession:
		return "morning_session"
	case PhaseLunchRecess:
		return "lunch_recess"
	case PhaseAfternoonSession:
		return "afternoon_session"
	default:
		return "closed"
	}
}

// Continuous 表示该时段是否处于连续竞价（可成交）。
func (p SessionPhase) Continuous() bool {
	return p == PhaseMorningSession || p == PhaseAfternoonSession
}

// Calendar 将时间戳解析为交易所当地时段。
// 仅承载单一交易所的固定日内时段模式，节假日由外部交易日历负责；
// 周末在此无条件视为休市。
type Calendar struct {
	loc *time.Location

	preAuctionStart int // 当地时间当日秒数，下同
	vacuumStart     int
	vacuumEnd       int
	morningEnd      int
	afternoonStart  int
	afternoonEnd    int
}

// NewCalendar 根据配置构建 Calendar。时区无法解析或边界时间格式非法
// 属于配置错误，直接返回 error，由调用方终止启动（见错误处理约定：
// 时区配置错误会同时污染整批标的的判定，不允许静默猜测）。
func NewCalendar(cfg config.SessionConfig) (*Calendar, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("解析交易所时区 %q 失败: %w", cfg.Timezone, err)
	}

	c := &Calendar{loc: loc}
	for _, b := range []struct {
		key   string
		value string
		dst   *int
	}{
		{"pre_auction_start", cfg.PreAuctionStart, &c.preAuctionStart},
		{"auction_match", cfg.AuctionMatch, &c.vacuumStart},
		{"vacuum_end", cfg.VacuumEnd, &c.vacuumEnd},
		{"morning_end", cfg.MorningEnd, &c.morningEnd},
		{"afternoon_start", cfg.AfternoonStart, &c.afternoonStart},
		{"afternoon_end", cfg.AfternoonEnd, &c.afternoonEnd},
	} {
		sec, err := parseClock(b.value)
		if err != nil {
			return nil, fmt.Errorf("解析时段边界 session.%s=%q 失败: %w", b.key, b.value, err)
		}
		*b.dst = sec
	}

	if !(c.preAuctionStart < c.vacuumStart &&
		c.vacuumStart <= c.vacuumEnd &&
		c.vacuumEnd < c.morningEnd &&
		c.morningEnd < c.afternoonStart &&
		c.afternoonStart <= c.afternoonEnd) {
		return nil, fmt.Errorf("时段边界顺序非法: %s %s %s %s %s %s",
			cfg.PreAuctionStart, cfg.AuctionMatch, cfg.VacuumEnd,
			cfg.MorningEnd, cfg.AfternoonStart, cfg.AfternoonEnd)
	}

	return c, nil
}

// Location 返回交易所时区。
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Phase 将时间戳归类到唯一时段。边界遵循交易所规则：
//
//	[09:15, 09:25:01)   → PreAuction
//	[09:25:01, 09:29:59] → AuctionVacuum
//	(09:29:59, 11:30]   → MorningSession
//	(11:30, 13:00)      → LunchRecess
//	[13:00, 15:00]      → AfternoonSession
//	其余               → Closed
//
// 每个轮询周期只需调用一次，调用方自行把结果分摊到整批标的。
func (c *Calendar) Phase(now time.Time) SessionPhase {
	local := now.In(c.loc)

	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return PhaseClosed
	}

	sec := local.Hour()*3600 + local.Minute()*60 + local.Second()
	switch {
	case sec >= c.preAuctionStart && sec < c.vacuumStart:
		return PhasePreAuction
	case sec >= c.vacuumStart && sec <= c.vacuumEnd:
		return PhaseAuctionVacuum
	case sec > c.vacuumEnd && sec <= c.morningEnd:
		return PhaseMorningSession
	case sec > c.morningEnd && sec < c.afternoonStart:
		return PhaseLunchRecess
	case sec >= c.afternoonStart && sec <= c.afternoonEnd:
		return PhaseAfternoonSession
	default:
		return PhaseClosed
	}
}

// parseClock 解析 HH:MM:SS（秒可省略）为当日秒数。
func parseClock(s string) (int, error) {
	var h, m, sec int
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil {
		sec = 0
		if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
			return 0, fmt.Errorf("期望 HH:MM[:SS] 格式: %w", err)
		}
	}
	if h < 0 || h > 23 || m < 0 || m > 59 || sec < 0 || sec > 59 {
		return 0, fmt.Errorf("时间分量越界: %q", s)
	}
	return h*3600 + m*60 + sec, nil
}
