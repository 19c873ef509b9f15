package market

import (
	"math"
	"testing"
)

func mainThresholds() LimitThresholds {
	return LimitThresholds{UpPct: 9.5, DownPct: 9.5}
}

func normalBook() BookSnapshot {
	return BookSnapshot{
		Bid1Price: 10.50,
		Bid1Size:  1200,
		Ask1Price: 10.51,
		Ask1Size:  800,
		ChangePct: 1.2,
	}
}

func TestClassify_LimitUpMainBoard(t *testing.T) {
	// 涨停形态：卖一挂零是预期现象，不得报 data_abnormal。
	book := BookSnapshot{
		Bid1Price: 11.0,
		Bid1Size:  500,
		Ask1Price: 0,
		Ask1Size:  0,
		ChangePct: 9.6,
	}

	got := Classify(PhaseMorningSession, mainThresholds(), book)
	if got.Code != StatusLimitUp {
		t.Fatalf("Classify = %s, want limit_up", got.Code)
	}
	if !got.IsTradable || !got.IsLimitUp || got.IsLimitDown {
		t.Errorf("unexpected flags: %+v", got)
	}
}

func TestClassify_LimitDownSymmetric(t *testing.T) {
	book := BookSnapshot{
		Bid1Price: 0,
		Bid1Size:  0,
		Ask1Price: 9.0,
		Ask1Size:  3000,
		ChangePct: -9.8,
	}

	got := Classify(PhaseAfternoonSession, mainThresholds(), book)
	if got.Code != StatusLimitDown {
		t.Fatalf("Classify = %s, want limit_down", got.Code)
	}
	if !got.IsTradable || !got.IsLimitDown {
		t.Errorf("unexpected flags: %+v", got)
	}
}

func TestClassify_LimitBoundaryInclusive(t *testing.T) {
	book := normalBook()

	// 恰好等于阈值：涨停（含边界）。
	book.ChangePct = 9.5
	if got := Classify(PhaseMorningSession, mainThresholds(), book); got.Code != StatusLimitUp {
		t.Errorf("ChangePct==9.5: got %s, want limit_up", got.Code)
	}

	// 低一个可表示单位：normal。
	book.ChangePct = math.Nextafter(9.5, 0)
	if got := Classify(PhaseMorningSession, mainThresholds(), book); got.Code != StatusNormal {
		t.Errorf("ChangePct just below 9.5: got %s, want normal", got.Code)
	}
}

func TestClassify_VacuumAndLunchShortCircuit(t *testing.T) {
	// 真空期喂进涨停形态的快照，必须返回 pre_open 而非 limit_up。
	book := BookSnapshot{ChangePct: 9.9, Bid1Size: 0, Ask1Size: 0}
	if got := Classify(PhaseAuctionVacuum, mainThresholds(), book); got.Code != StatusPreOpen {
		t.Errorf("vacuum: got %s, want pre_open", got.Code)
	}

	// 午休期间盘口合法冻结为零，必须返回 lunch_recess 而非 data_abnormal。
	book = BookSnapshot{Bid1Size: 0, Ask1Size: 0}
	if got := Classify(PhaseLunchRecess, mainThresholds(), book); got.Code != StatusLunchRecess {
		t.Errorf("lunch: got %s, want lunch_recess", got.Code)
	}
}

func TestClassify_GenuineHalt(t *testing.T) {
	book := BookSnapshot{}

	got := Classify(PhaseMorningSession, mainThresholds(), book)
	if got.Code != StatusDataAbnormal {
		t.Fatalf("Classify = %s, want data_abnormal", got.Code)
	}
	if got.IsTradable {
		t.Errorf("data_abnormal must not be tradable")
	}
	if got.Detail == "" {
		t.Errorf("expected diagnostic detail for data_abnormal")
	}
}

func TestClassify_ZeroDepthWithPrices(t *testing.T) {
	// 价在量空：盘口顶部刚被吃掉，不是数据问题。
	book := BookSnapshot{
		Bid1Price: 10.50,
		Bid1Size:  0,
		Ask1Price: 10.51,
		Ask1Size:  0,
		ChangePct: 0.4,
	}

	got := Classify(PhaseMorningSession, mainThresholds(), book)
	if got.Code != StatusNormal || !got.IsTradable {
		t.Errorf("Classify = %+v, want tradable normal", got)
	}
}

func TestClassify_OutsideSession(t *testing.T) {
	// 盘口被清空 → closed。
	empty := BookSnapshot{}
	for _, phase := range []SessionPhase{PhasePreAuction, PhaseClosed} {
		if got := Classify(phase, mainThresholds(), empty); got.Code != StatusClosed {
			t.Errorf("phase=%s empty book: got %s, want closed", phase, got.Code)
		}
	}

	// 残留报价 → off_hours，带运维提示。
	stale := normalBook()
	got := Classify(PhaseClosed, mainThresholds(), stale)
	if got.Code != StatusOffHours {
		t.Fatalf("stale quote: got %s, want off_hours", got.Code)
	}
	if got.IsTradable {
		t.Errorf("off_hours must not be tradable")
	}
	if got.Detail == "" {
		t.Errorf("expected diagnostic detail for off_hours")
	}
}

func TestClassify_SanitizesMalformedInput(t *testing.T) {
	// 负的量钳制归零后价仍存在 → normal，不崩批。
	book := BookSnapshot{
		Bid1Price: 10.0,
		Bid1Size:  -300,
		Ask1Price: 10.02,
		Ask1Size:  -100,
		ChangePct: 0.1,
	}
	if got := Classify(PhaseMorningSession, mainThresholds(), book); got.Code != StatusNormal {
		t.Errorf("negative sizes: got %s, want normal", got.Code)
	}

	// NaN 涨跌幅按 0 处理。
	book = normalBook()
	book.ChangePct = math.NaN()
	if got := Classify(PhaseAfternoonSession, mainThresholds(), book); got.Code != StatusNormal {
		t.Errorf("NaN change: got %s, want normal", got.Code)
	}
}

func TestClassify_TotalAndIdempotent(t *testing.T) {
	phases := []SessionPhase{
		PhasePreAuction, PhaseAuctionVacuum, PhaseMorningSession,
		PhaseLunchRecess, PhaseAfternoonSession, PhaseClosed,
	}
	thresholds := []LimitThresholds{
		{UpPct: 9.5, DownPct: 9.5},
		{UpPct: 19.5, DownPct: 19.5},
		{UpPct: 29.5, DownPct: 29.5},
		{UpPct: 4.8, DownPct: 4.8},
	}
	changes := []float64{-30.5, -19.5, -9.5, -4.8, -0.1, 0, 0.1, 4.8, 9.5, 19.5, 30.5, math.NaN()}
	sizes := []float64{0, -50, 100}
	prices := []float64{0, 10.5}

	valid := map[StatusCode]bool{
		StatusNormal: true, StatusLimitUp: true, StatusLimitDown: true,
		StatusPreOpen: true, StatusLunchRecess: true, StatusClosed: true,
		StatusOffHours: true, StatusDataAbnormal: true,
	}

	for _, phase := range phases {
		for _, th := range thresholds {
			for _, chg := range changes {
				for _, size := range sizes {
					for _, price := range prices {
						book := BookSnapshot{
							Bid1Price: price, Bid1Size: size,
							Ask1Price: price, Ask1Size: size,
							ChangePct: chg,
						}
						first := Classify(phase, th, book)
						if !valid[first.Code] {
							t.Fatalf("phase=%s th=%+v book=%+v: invalid code %q", phase, th, book, first.Code)
						}
						if second := Classify(phase, th, book); second != first {
							t.Fatalf("classification not idempotent: %+v vs %+v", first, second)
						}
					}
				}
			}
		}
	}
}
