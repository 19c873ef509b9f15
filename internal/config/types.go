package config

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
)

// Config 聚合了扫描器运行所需的全部配置项。
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Session   SessionConfig   `mapstructure:"session"`
	Limits    LimitsConfig    `mapstructure:"limits"`
	Feed      FeedConfig      `mapstructure:"feed"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Monitor   MonitorConfig   `mapstructure:"monitor"`
}

// AppConfig 控制应用级参数。
type AppConfig struct {
	Environment string `mapstructure:"environment"`
}

// SessionConfig 描述交易所时区与六个交易时段边界。
// 边界时间为交易所当地时间，格式 HH:MM:SS；默认值对应沪深 A 股日内时段，
// 交易所规则调整时只改配置、不改代码。
type SessionConfig struct {
	Timezone        string `mapstructure:"timezone"`
	PreAuctionStart string `mapstructure:"pre_auction_start"` // 集合竞价开始（含）
	AuctionMatch    string `mapstructure:"auction_match"`     // 竞价撮合完成、真空期开始（含）
	VacuumEnd       string `mapstructure:"vacuum_end"`        // 真空期结束（含）
	MorningEnd      string `mapstructure:"morning_end"`       // 上午连续竞价结束（含）
	AfternoonStart  string `mapstructure:"afternoon_start"`   // 下午连续竞价开始（含）
	AfternoonEnd    string `mapstructure:"afternoon_end"`     // 收盘（含）
}

// LimitsConfig 描述各板块涨跌幅阈值（百分比）与 ST 标记。
// 阈值刻意略低于名义涨跌停幅度（如 9.5 而非 10.0），用于吸收上游
// 涨跌幅计算的舍入误差；改成名义值会把临界涨停判成 normal。
type LimitsConfig struct {
	MainBoardPct   float64  `mapstructure:"main_board_pct"`
	GrowthBoardPct float64  `mapstructure:"growth_board_pct"` // 创业板 300/301 与科创板 688
	BeijingPct     float64  `mapstructure:"beijing_pct"`
	SpecialPct     float64  `mapstructure:"special_pct"` // ST / 退市整理
	STMarkers      []string `mapstructure:"st_markers"`
}

// FeedConfig 描述行情快照来源。
type FeedConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	PageSize    int           `mapstructure:"page_size"`
	MaxPages    int           `mapstructure:"max_pages"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	RetryDelay  time.Duration `mapstructure:"retry_delay"`
}

// DatabaseConfig 管理数据库连接。
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	InMemory        bool          `mapstructure:"in_memory"`
}

// LoggingConfig 控制日志输出。
type LoggingConfig struct {
	Level            string   `mapstructure:"level"`
	Encoding         string   `mapstructure:"encoding"`
	Development      bool     `mapstructure:"development"`
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// SchedulerConfig 控制轮询节奏。
type SchedulerConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// MonitorConfig 控制监控接口。
type MonitorConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// Validate 对配置进行基本校验。
func (c *Config) Validate() error {
	var err error

	if c.App.Environment == "" {
		err = multierr.Append(err, errors.New("app.environment 不能为空"))
	}
	if c.Session.Timezone == "" {
		err = multierr.Append(err, errors.New("session.timezone 不能为空"))
	}
	for _, b := range []struct {
		key   string
		value string
	}{
		{"session.pre_auction_start", c.Session.PreAuctionStart},
		{"session.auction_match", c.Session.AuctionMatch},
		{"session.vacuum_end", c.Session.VacuumEnd},
		{"session.morning_end", c.Session.MorningEnd},
		{"session.afternoon_start", c.Session.AfternoonStart},
		{"session.afternoon_end", c.Session.AfternoonEnd},
	} {
		if b.value == "" {
			err = multierr.Append(err, fmt.Errorf("%s 不能为空", b.key))
		}
	}
	for _, p := range []struct {
		key   string
		value float64
	}{
		{"limits.main_board_pct", c.Limits.MainBoardPct},
		{"limits.growth_board_pct", c.Limits.GrowthBoardPct},
		{"limits.beijing_pct", c.Limits.BeijingPct},
		{"limits.special_pct", c.Limits.SpecialPct},
	} {
		if p.value <= 0 || p.value >= 100 {
			err = multierr.Append(err, fmt.Errorf("%s 必须位于(0,100)", p.key))
		}
	}
	if len(c.Limits.STMarkers) == 0 {
		err = multierr.Append(err, errors.New("limits.st_markers 至少包含一个标记"))
	}
	if c.Feed.BaseURL == "" {
		err = multierr.Append(err, errors.New("feed.base_url 不能为空"))
	}
	if c.Feed.PageSize <= 0 {
		err = multierr.Append(err, errors.New("feed.page_size 必须大于0"))
	}
	if c.Feed.MaxPages <= 0 {
		err = multierr.Append(err, errors.New("feed.max_pages 必须大于0"))
	}
	if c.Feed.Timeout <= 0 {
		err = multierr.Append(err, errors.New("feed.timeout 必须大于0"))
	}
	if c.Feed.MaxAttempts <= 0 {
		err = multierr.Append(err, errors.New("feed.max_attempts 必须大于0"))
	}
	if c.Feed.RetryDelay <= 0 {
		err = multierr.Append(err, errors.New("feed.retry_delay 必须为正"))
	}
	if c.Database.Path == "" && !c.Database.InMemory {
		err = multierr.Append(err, errors.New("database.path 不能为空"))
	}
	if c.Database.MaxOpenConns <= 0 {
		err = multierr.Append(err, errors.New("database.max_open_conns 必须大于0"))
	}
	if c.Database.MaxIdleConns < 0 {
		err = multierr.Append(err, errors.New("database.max_idle_conns 不能为负"))
	}
	if c.Database.ConnMaxLifetime < 0 {
		err = multierr.Append(err, errors.New("database.conn_max_lifetime 不能为负"))
	}
	if c.Logging.Level == "" {
		err = multierr.Append(err, errors.New("logging.level 不能为空"))
	}
	if c.Logging.Encoding == "" {
		err = multierr.Append(err, errors.New("logging.encoding 不能为空"))
	}
	if len(c.Logging.OutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.output_paths 至少包含一个输出目标"))
	}
	if len(c.Logging.ErrorOutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.error_output_paths 至少包含一个输出目标"))
	}
	if c.Scheduler.PollInterval <= 0 {
		err = multierr.Append(err, errors.New("scheduler.poll_interval 必须大于0"))
	}
	if c.Monitor.Enabled && (c.Monitor.Port <= 0 || c.Monitor.Port > 65535) {
		err = multierr.Append(err, errors.New("monitor.port 必须位于(0,65535]"))
	}

	if err != nil {
		return fmt.Errorf("配置校验失败: %w", err)
	}

	return nil
}
