package market

import (
	"math"
	"time"
)

// StatusCode 表示单个标的的即时交易状态。
type StatusCode string

const (
	StatusNormal       StatusCode = "normal"
	StatusLimitUp      StatusCode = "limit_up"
	StatusLimitDown    StatusCode = "limit_down"
	StatusPreOpen      StatusCode = "pre_open"
	StatusLunchRecess  StatusCode = "lunch_recess"
	StatusClosed       StatusCode = "closed"
	StatusOffHours     StatusCode = "off_hours"
	StatusDataAbnormal StatusCode = "data_abnormal"
)

// BookSnapshot 为单个标的的盘口快照，由行情源提供、每次调用传入，
// 引擎不持有也不老化它。
type BookSnapshot struct {
	Bid1Price float64   `json:"bid1_price"`
	Bid1Size  float64   `json:"bid1_size"`
	Ask1Price float64   `json:"ask1_price"`
	Ask1Size  float64   `json:"ask1_size"`
	ChangePct float64   `json:"change_pct"`
	AsOf      time.Time `json:"as_of"`
}

// Status 为一次状态判定的输出。IsTradable 仅在 normal/limit_up/limit_down
// 时为真；Detail 面向运维日志，仅在 data_abnormal/off_hours 时填充。
type Status struct {
	Code        StatusCode `json:"code"`
	IsTradable  bool       `json:"is_tradable"`
	IsLimitUp   bool       `json:"is_limit_up"`
	IsLimitDown bool       `json:"is_limit_down"`
	Detail      string     `json:"detail,omitempty"`
}

const (
	detailQuoteLost = "盘口价量全为零，疑似行情丢失或全天停牌"
	detailOffHours  = "非交易时段残留盘口报价，仅供参考"
)

// Classify 把 (时段, 阈值, 盘口) 映射到唯一状态。
//
// 判定是全函数：任何合法输入组合都恰好返回一个状态，不抛错——
// 行情源给出坏快照是实盘扫描中的常态，必须以 data_abnormal 的形式
// 返回给调用方，让批处理继续迭代其余标的。非法数值（负的量、NaN
// 涨跌幅）在判定前钳制归零。
//
// 两条容易误判的路径须特别注意：
//  1. 真空期与午休期间盘口深度合法为零，必须在深度检查之前短路返回，
//     否则会把正常的静默时段报成异常；
//  2. 涨停时卖一挂零、跌停时买一挂零是预期形态而非数据问题，
//     涨跌停判定必须先于深度检查。
func Classify(phase SessionPhase, thresholds LimitThresholds, book BookSnapshot) Status {
	book = sanitize(book)

	switch phase {
	case PhaseAuctionVacuum:
		return Status{Code: StatusPreOpen}
	case PhaseLunchRecess:
		return Status{Code: StatusLunchRecess}
	}

	isLimitUp := book.ChangePct >= thresholds.UpPct
	isLimitDown := book.ChangePct <= -thresholds.DownPct

	if phase.Continuous() {
		switch {
		case isLimitUp:
			return Status{Code: StatusLimitUp, IsTradable: true, IsLimitUp: true}
		case isLimitDown:
			return Status{Code: StatusLimitDown, IsTradable: true, IsLimitDown: true}
		case book.Bid1Size == 0 && book.Ask1Size == 0:
			if book.Bid1Price == 0 && book.Ask1Price == 0 {
				return Status{Code: StatusDataAbnormal, Detail: detailQuoteLost}
			}
			// 价不为零、量瞬时为零：快速成交吃掉盘口顶部，不是数据错误。
			return Status{Code: StatusNormal, IsTradable: true}
		default:
			return Status{Code: StatusNormal, IsTradable: true}
		}
	}

	// PreAuction 或 Closed：盘口已被交易所清空则视为休市，
	// 仍有残留报价说明是过时缓存。
	if book.Bid1Size == 0 && book.Ask1Size == 0 {
		return Status{Code: StatusClosed}
	}
	return Status{Code: StatusOffHours, Detail: detailOffHours}
}

// sanitize 钳制非法数值：负的价量归零，NaN/Inf 涨跌幅按 0 处理。
func sanitize(book BookSnapshot) BookSnapshot {
	if book.Bid1Price < 0 || math.IsNaN(book.Bid1Price) {
		book.Bid1Price = 0
	}
	if book.Ask1Price < 0 || math.IsNaN(book.Ask1Price) {
		book.Ask1Price = 0
	}
	if book.Bid1Size < 0 || math.IsNaN(book.Bid1Size) {
		book.Bid1Size = 0
	}
	if book.Ask1Size < 0 || math.IsNaN(book.Ask1Size) {
		book.Ask1Size = 0
	}
	if math.IsNaN(book.ChangePct) || math.IsInf(book.ChangePct, 0) {
		book.ChangePct = 0
	}
	return book
}
