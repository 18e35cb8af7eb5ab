package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`    // 服务器配置
	Database  DatabaseConfig  `mapstructure:"database"`  // PostgreSQL配置
	Catalogue CatalogueConfig `mapstructure:"catalogue"` // 远端卡牌目录源配置
	Assets    AssetsConfig    `mapstructure:"assets"`    // 卡图下载配置
	Archive   ArchiveConfig   `mapstructure:"archive"`   // 压缩归档与逐卡拆分配置
	Embedding EmbeddingConfig `mapstructure:"embedding"` // 向量化服务配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int    `mapstructure:"port"` // 服务端口
	Mode string `mapstructure:"mode"` // Gin运行模式：debug/release/test
}

// DatabaseConfig PostgreSQL数据库配置
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`               // 连接DSN
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
}

// CatalogueConfig 远端目录源配置
type CatalogueConfig struct {
	BaseURL string `mapstructure:"base_url"` // 目录接口地址（一次GET拉全量）
	Timeout int    `mapstructure:"timeout"`  // 请求超时（秒）
	Proxy   string `mapstructure:"proxy"`    // 代理地址（可空）
}

// AssetsConfig 卡图下载配置
type AssetsConfig struct {
	Dir     string `mapstructure:"dir"`     // 卡图输出目录
	Workers int    `mapstructure:"workers"` // 下载并发数（默认8）
	Timeout int    `mapstructure:"timeout"` // 单张卡图请求超时（秒）
}

// ArchiveConfig 归档与拆分配置
type ArchiveConfig struct {
	Path     string `mapstructure:"path"`      // 压缩归档文件路径（如 cardinfo.json.zst）
	SplitDir string `mapstructure:"split_dir"` // 逐卡JSON输出目录
	Split    bool   `mapstructure:"split"`     // 是否执行逐卡拆分
}

// EmbeddingConfig 向量化服务配置
type EmbeddingConfig struct {
	Endpoint string `mapstructure:"endpoint"` // 向量化服务地址（POST text返回向量）
	Dim      int    `mapstructure:"dim"`      // 向量维度D（默认384）
	Timeout  int    `mapstructure:"timeout"`  // 请求超时（秒）
}

// LoadConfig 加载配置文件（config/config.yaml），敏感项从 .env 覆盖（不提交 git）
func LoadConfig() (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	// 2. 读取 config.yaml
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	viper.SetTypeByDefaultValue(true)
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 敏感字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)

	// 4. 缺省值兜底
	if cfg.Assets.Workers <= 0 {
		cfg.Assets.Workers = 8
	}
	if cfg.Embedding.Dim <= 0 {
		cfg.Embedding.Dim = 384
	}
	return &cfg, nil
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("CATALOGUE_PROXY"); v != "" {
		cfg.Catalogue.Proxy = v
	}
	if v := os.Getenv("EMBEDDING_ENDPOINT"); v != "" {
		cfg.Embedding.Endpoint = v
	}
}
