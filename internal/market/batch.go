package market

import (
	"time"

	"go.uber.org/zap"
)

// PhaseResolver 把时间戳解析为交易时段。*Calendar 是生产实现，
// 接口存在的意义是让批处理可以在测试中替换时钟。
type PhaseResolver interface {
	Phase(now time.Time) SessionPhase
}

// SymbolSnapshot 为批处理输入的单个标的：代码、用于 ST 判定的
// 显示名称、以及盘口快照。
type SymbolSnapshot struct {
	Symbol string
	Name   string
	Book   BookSnapshot
}

// BatchClassifier 对整批标的做状态判定。时段解析只在每个批次
// 执行一次——对数百个标的逐一做时区换算是这层包装要省掉的开销，
// 单标的判定本身只有若干次比较。
type BatchClassifier struct {
	clock  PhaseResolver
	rules  *LimitRules
	logger *zap.Logger
}

// NewBatchClassifier 创建批处理判定器。
func NewBatchClassifier(clock PhaseResolver, rules *LimitRules, logger *zap.Logger) *BatchClassifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchClassifier{
		clock:  clock,
		rules:  rules,
		logger: logger,
	}
}

// ClassifyBatch 用同一个时段值判定整批标的，返回时段与按代码索引的
// 状态表。标的之间无任何依赖，结果也不区分顺序。
func (b *BatchClassifier) ClassifyBatch(now time.Time, symbols []SymbolSnapshot) (SessionPhase, map[string]Status) {
	phase := b.clock.Phase(now)

	statuses := make(map[string]Status, len(symbols))
	for _, s := range symbols {
		thresholds := b.rules.Thresholds(s.Symbol, s.Name)
		statuses[s.Symbol] = Classify(phase, thresholds, s.Book)
	}

	b.logger.Debug("批次判定完成",
		zap.Time("as_of", now),
		zap.String("phase", phase.String()),
		zap.Int("symbols", len(symbols)),
	)

	return phase, statuses
}
