package config

import (
	"errors"
	"fmt"
	"strings"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	defaultConfigPath = "configs/config.yaml"
	envPrefix         = "sentinel"
)

// Load 读取配置文件并结合环境变量返回 Config。
func Load(path string) (*Config, error) {
	v := viper.New()

	if path == "" {
		path = defaultConfigPath
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	replacer := strings.NewReplacer(".", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("未找到配置文件 %q: %w", path, err)
		}
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.environment", "development")

	v.SetDefault("session.timezone", "Asia/Shanghai")
	v.SetDefault("session.pre_auction_start", "09:15:00")
	v.SetDefault("session.auction_match", "09:25:01")
	v.SetDefault("session.vacuum_end", "09:29:59")
	v.SetDefault("session.morning_end", "11:30:00")
	v.SetDefault("session.afternoon_start", "13:00:00")
	v.SetDefault("session.afternoon_end", "15:00:00")

	v.SetDefault("limits.main_board_pct", 9.5)
	v.SetDefault("limits.growth_board_pct", 19.5)
	v.SetDefault("limits.beijing_pct", 29.5)
	v.SetDefault("limits.special_pct", 4.8)
	v.SetDefault("limits.st_markers", []string{"ST", "退"})

	v.SetDefault("feed.base_url", "https://82.push2.eastmoney.com/api/qt/clist/get")
	v.SetDefault("feed.page_size", 500)
	v.SetDefault("feed.max_pages", 20)
	v.SetDefault("feed.timeout", "5s")
	v.SetDefault("feed.max_attempts", 3)
	v.SetDefault("feed.retry_delay", "500ms")

	v.SetDefault("database.path", "data/sentinel.db")
	v.SetDefault("database.max_open_conns", 4)
	v.SetDefault("database.max_idle_conns", 4)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.in_memory", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.encoding", "console")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.output_paths", []string{"stdout"})
	v.SetDefault("logging.error_output_paths", []string{"stderr"})

	v.SetDefault("scheduler.poll_interval", "3s")

	v.SetDefault("monitor.enabled", true)
	v.SetDefault("monitor.port", 8780)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
