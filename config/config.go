package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Normativa NormativaConfig `mapstructure:"normativa"`
	Schedule  ScheduleConfig  `mapstructure:"schedule"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port         int             `mapstructure:"port"`
	MaxBodyBytes int64           `mapstructure:"max_body_bytes"`
	CORS         CORSConfig      `mapstructure:"cors"`
	RateLimit    RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig 写接口限流（依赖 Redis，未启用 Redis 时放行）
type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig 数据库配置（postgres 或 sqlite）
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"` // postgres | sqlite
	Path            string `mapstructure:"path"`   // 仅 sqlite 使用
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 分钟
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置，Addr 为空表示不启用
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StorageConfig 考试记录存储后端
type StorageConfig struct {
	Backend string `mapstructure:"backend"` // database | memory
	// FallbackToMemory 数据库不可用时是否降级到内存存储
	FallbackToMemory bool `mapstructure:"fallback_to_memory"`
}

// NormativaConfig 考试规则（导出时写入 normativa 块）
type NormativaConfig struct {
	LimiteExamenesPorDia int               `mapstructure:"limite_examenes_por_dia"`
	VentanaDiagnostica   VentanaDiagConfig `mapstructure:"ventana_diagnostica"`
}

// VentanaDiagConfig 诊断窗口（YYYY-MM-DD，闭区间）
type VentanaDiagConfig struct {
	Inicio string `mapstructure:"inicio"`
	Fin    string `mapstructure:"fin"`
}

// ScheduleConfig 排考表导出参数
type ScheduleConfig struct {
	Version    int    `mapstructure:"version"`
	WeekAnchor string `mapstructure:"week_anchor"` // 周一日期，用于由 dia 还原 fecha
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_body_bytes", 2<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.rate_limit.requests", 60)
	v.SetDefault("server.rate_limit.window", "1m")

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.path", "data/dece.db")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "dece")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "America/Guayaquil")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.lock_ttl", "5s")
	v.SetDefault("redis.cache_ttl", "10m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("storage.backend", "database")
	v.SetDefault("storage.fallback_to_memory", true)

	v.SetDefault("normativa.limite_examenes_por_dia", 3)
	v.SetDefault("normativa.ventana_diagnostica.inicio", "2025-09-17")
	v.SetDefault("normativa.ventana_diagnostica.fin", "2025-09-26")

	v.SetDefault("schedule.version", 1)
	v.SetDefault("schedule.week_anchor", "2025-03-10")

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("DECE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	switch c.Storage.Backend {
	case "database", "memory":
	default:
		return fmt.Errorf("配置校验失败: storage.backend 只能是 database 或 memory，实际 %q", c.Storage.Backend)
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("配置校验失败: db.driver 只能是 postgres 或 sqlite，实际 %q", c.Database.Driver)
	}
	if c.Normativa.LimiteExamenesPorDia < 1 {
		return fmt.Errorf("配置校验失败: normativa.limite_examenes_por_dia 不能小于 1")
	}
	inicio, err := time.Parse("2006-01-02", c.Normativa.VentanaDiagnostica.Inicio)
	if err != nil {
		return fmt.Errorf("配置校验失败: normativa.ventana_diagnostica.inicio 格式错误: %w", err)
	}
	fin, err := time.Parse("2006-01-02", c.Normativa.VentanaDiagnostica.Fin)
	if err != nil {
		return fmt.Errorf("配置校验失败: normativa.ventana_diagnostica.fin 格式错误: %w", err)
	}
	if fin.Before(inicio) {
		return fmt.Errorf("配置校验失败: 诊断窗口结束日期早于开始日期")
	}
	anchor, err := time.Parse("2006-01-02", c.Schedule.WeekAnchor)
	if err != nil {
		return fmt.Errorf("配置校验失败: schedule.week_anchor 格式错误: %w", err)
	}
	if anchor.Weekday() != time.Monday {
		return fmt.Errorf("配置校验失败: schedule.week_anchor 必须是周一")
	}
	if c.Schedule.Version < 1 {
		return fmt.Errorf("配置校验失败: schedule.version 不能小于 1")
	}
	return nil
}
