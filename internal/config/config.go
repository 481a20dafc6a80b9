// Package config 负责加载和管理应用程序的配置。
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// 全局配置变量，存储从配置文件加载的所有设置。
var Conf Config

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Log           LogConfig           `mapstructure:"log"`
	CORS          CORSConfig          `mapstructure:"cors"`
	AIService     AIServiceConfig     `mapstructure:"ai_service"`
	Dispatch      DispatchConfig      `mapstructure:"dispatch"`
	Context       ContextConfig       `mapstructure:"context"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Scheduler     SchedulerConfig     `mapstructure:"scheduler"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	MinIO         MinIOConfig         `mapstructure:"minio"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// DatabaseConfig 存储所有数据库连接的配置。
// Driver 可选 mysql / postgres / sqlite。
type DatabaseConfig struct {
	Driver   string         `mapstructure:"driver"`
	MySQL    MySQLConfig    `mapstructure:"mysql"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// MySQLConfig 存储 MySQL 数据库的配置。
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// PostgresConfig 存储 PostgreSQL 数据库的配置。
type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

// SQLiteConfig 用于本地开发。
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// RedisConfig 存储 Redis 的配置。Addr 为空时不启用 Redis。
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// JWTConfig 存储 JWT 相关的配置。
type JWTConfig struct {
	Secret                 string `mapstructure:"secret"`
	AccessTokenExpireHours int    `mapstructure:"access_token_expire_hours"`
	RefreshTokenExpireDays int    `mapstructure:"refresh_token_expire_days"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// CORSConfig 配置允许访问 API 的前端来源。
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AIServiceConfig 外部 AI 微服务（Model Gateway）的配置。
type AIServiceConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// DispatchConfig 控制动作分发的事务与锁参数。
type DispatchConfig struct {
	SkillTxTimeoutSeconds int `mapstructure:"skill_tx_timeout_seconds"`
	TxTimeoutSeconds      int `mapstructure:"tx_timeout_seconds"`
	LockTTLSeconds        int `mapstructure:"lock_ttl_seconds"`
	LockWaitSeconds       int `mapstructure:"lock_wait_seconds"`
}

// ContextConfig 控制上下文摘要的长度上限。
type ContextConfig struct {
	MaxChars int `mapstructure:"max_chars"`
}

// KafkaConfig 存储 Kafka 相关的配置。
type KafkaConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

// SchedulerConfig 控制每日/每月总结的定时触发。
type SchedulerConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	DailyHour  int  `mapstructure:"daily_hour"`
	MonthlyDay int  `mapstructure:"monthly_day"`
}

// ElasticsearchConfig 存储 Elasticsearch 相关的配置。
type ElasticsearchConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Addresses string `mapstructure:"addresses"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	IndexName string `mapstructure:"index_name"`
}

// MinIOConfig 存储 MinIO 对象存储的配置。
type MinIOConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.sqlite.path", "studylife.db")
	v.SetDefault("jwt.access_token_expire_hours", 24)
	v.SetDefault("jwt.refresh_token_expire_days", 7)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("ai_service.base_url", "http://localhost:8000")
	v.SetDefault("ai_service.timeout_seconds", 120)
	v.SetDefault("dispatch.skill_tx_timeout_seconds", 30)
	v.SetDefault("dispatch.tx_timeout_seconds", 10)
	v.SetDefault("dispatch.lock_ttl_seconds", 180)
	v.SetDefault("dispatch.lock_wait_seconds", 5)
	v.SetDefault("context.max_chars", 4000)
	v.SetDefault("kafka.topic", "studylife-summary-tasks")
	v.SetDefault("kafka.group_id", "studylife-summary-consumer")
	v.SetDefault("scheduler.daily_hour", 21)
	v.SetDefault("scheduler.monthly_day", 1)
	v.SetDefault("elasticsearch.index_name", "journals")
	v.SetDefault("minio.bucket_name", "studylife")
}

// Load 从指定路径读取 YAML 并叠加环境变量，返回解析后的配置。
// configPath 为空时只使用默认值与环境变量。
func Load(configPath string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("STUDYLIFE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// 部署脚本使用的环境变量名
	_ = v.BindEnv("ai_service.base_url", "AI_SERVICE_URL")

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("无法将配置解析到结构体中: %w", err)
	}
	return cfg, nil
}

// Init 初始化配置加载，从指定的路径读取 YAML 文件并解析到 Conf 变量中。
func Init(configPath string) {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	Conf = cfg
}
