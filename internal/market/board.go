package market

import (
	"strings"

	"ashare-sentinel/internal/config"
)

// BoardClass 表示证券的上市板块，决定其法定日内涨跌幅限制。
type BoardClass int

const (
	// BoardMain 沪深主板，±10%。
	BoardMain BoardClass = iota
	// BoardChiNext 创业板（300/301 前缀），±20%。
	BoardChiNext
	// BoardStar 科创板（688 前缀），±20%。
	BoardStar
	// BoardBeijing 北交所（8/4 前缀族），±30%。
	BoardBeijing
	// BoardSpecialTreatment ST/退市整理标的，±5%，优先级高于前缀规则。
	BoardSpecialTreatment
)

// String 返回板块的可读名称。
func (b BoardClass) String() string {
	switch b {
	case BoardChiNext:
		return "chinext"
	case BoardStar:
		return "star"
	case BoardBeijing:
		return "beijing"
	case BoardSpecialTreatment:
		return "special_treatment"
	default:
		return "main"
	}
}

// LimitThresholds 为单个标的当日的涨跌幅判定阈值（百分比，幅度对称）。
type LimitThresholds struct {
	UpPct   float64 `json:"up_pct"`
	DownPct float64 `json:"down_pct"`
}

// LimitRules 将证券代码与名称映射到板块及涨跌幅阈值。
// 纯函数集合，无缓存：名称可能跨交易日进出 ST 状态，每次调用重新判定。
type LimitRules struct {
	mainPct    float64
	growthPct  float64
	beijingPct float64
	specialPct float64
	stMarkers  []string
}

// NewLimitRules 根据配置构建板块规则。
func NewLimitRules(cfg config.LimitsConfig) *LimitRules {
	markers := cfg.STMarkers
	if len(markers) == 0 {
		markers = []string{"ST", "退"}
	}
	return &LimitRules{
		mainPct:    cfg.MainBoardPct,
		growthPct:  cfg.GrowthBoardPct,
		beijingPct: cfg.BeijingPct,
		specialPct: cfg.SpecialPct,
		stMarkers:  markers,
	}
}

// Classify 判定板块，首个命中规则生效：
// ST 标记 > 创业板/科创板前缀 > 北交所前缀 > 主板兜底。
func (r *LimitRules) Classify(symbol, displayName string) BoardClass {
	for _, marker := range r.stMarkers {
		if marker != "" && strings.Contains(displayName, marker) {
			return BoardSpecialTreatment
		}
	}

	switch {
	case strings.HasPrefix(symbol, "300"), strings.HasPrefix(symbol, "301"):
		return BoardChiNext
	case strings.HasPrefix(symbol, "688"):
		return BoardStar
	case strings.HasPrefix(symbol, "8"), strings.HasPrefix(symbol, "4"):
		return BoardBeijing
	default:
		return BoardMain
	}
}

// Thresholds 返回标的当日的涨跌幅阈值。
func (r *LimitRules) Thresholds(symbol, displayName string) LimitThresholds {
	return r.ThresholdsFor(r.Classify(symbol, displayName))
}

// ThresholdsFor 返回指定板块的涨跌幅阈值。
func (r *LimitRules) ThresholdsFor(board BoardClass) LimitThresholds {
	var pct float64
	switch board {
	case BoardSpecialTreatment:
		pct = r.specialPct
	case BoardChiNext, BoardStar:
		pct = r.growthPct
	case BoardBeijing:
		pct = r.beijingPct
	default:
		pct = r.mainPct
	}
	return LimitThresholds{UpPct: pct, DownPct: pct}
}
