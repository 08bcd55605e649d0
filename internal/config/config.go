package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config fleetwatch（HTTP API）配置
type Config struct {
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`

	// Redis 仅用于两个用户设置 blob（面板布局 JSON + 主题），默认禁用，
	// 禁用时退化为进程内 MemoryKV
	RedisEnabled bool `yaml:"redis_enabled"`
	Redis        struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Log struct {
		Level  string `yaml:"level"`  // debug, info, warn, error
		Format string `yaml:"format"` // json, console
	} `yaml:"log"`

	Report ReportConfig `yaml:"report"`
}

// ReportConfig 报表历史保留策略
type ReportConfig struct {
	HistoryLimit  int           `yaml:"history_limit"`  // 最多保留条数（默认 50）
	RetentionDays int           `yaml:"retention_days"` // ready 条目保留天数（默认 30）
	SweepInterval time.Duration `yaml:"sweep_interval"` // 过期扫描间隔（默认 1h）
}

// Load 从环境变量加载配置；CONFIG_FILE 指向 YAML 时先读文件再用环境变量覆盖
func Load() *Config {
	cfg := &Config{}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if data, err := os.ReadFile(path); err == nil {
			_ = yaml.Unmarshal(data, cfg)
		}
	}

	cfg.HTTP.Addr = getEnv("HTTP_ADDR", defaultStr(cfg.HTTP.Addr, ":8080"))

	cfg.RedisEnabled = getEnv("REDIS_ENABLED", boolStr(cfg.RedisEnabled)) == "true"
	cfg.Redis.Addr = getEnv("REDIS_ADDR", defaultStr(cfg.Redis.Addr, "localhost:6379"))
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", strconv.Itoa(cfg.Redis.DB)), 0)

	cfg.Log.Level = getEnv("LOG_LEVEL", defaultStr(cfg.Log.Level, "info"))
	cfg.Log.Format = getEnv("LOG_FORMAT", defaultStr(cfg.Log.Format, "json"))

	cfg.Report.HistoryLimit = parseInt(getEnv("REPORT_HISTORY_LIMIT", strconv.Itoa(cfg.Report.HistoryLimit)), 0)
	if cfg.Report.HistoryLimit <= 0 {
		cfg.Report.HistoryLimit = 50
	}
	cfg.Report.RetentionDays = parseInt(getEnv("REPORT_RETENTION_DAYS", strconv.Itoa(cfg.Report.RetentionDays)), 0)
	if cfg.Report.RetentionDays <= 0 {
		cfg.Report.RetentionDays = 30
	}
	if v := getEnv("REPORT_SWEEP_INTERVAL", ""); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Report.SweepInterval = d
		}
	}
	if cfg.Report.SweepInterval <= 0 {
		cfg.Report.SweepInterval = time.Hour
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseInt(s string, fallback int) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return fallback
}

func defaultStr(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
