package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 项目配置结构体
type Config struct {
	LLM      LLMConfig      `yaml:"llm"`
	Search   SearchConfig   `yaml:"search"`
	Reddit   RedditConfig   `yaml:"reddit"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Retry    RetryConfig    `yaml:"retry"`
	Limits   LimitsConfig   `yaml:"limits"`
	Log      LogConfig      `yaml:"log"`
	DB       DBConfig       `yaml:"db"`
}

// LLMConfig 文本分析服务所用模型的配置
type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// SearchConfig 网页搜索相关配置
type SearchConfig struct {
	Provider string        `yaml:"provider"`
	Tavily   TavilyConfig  `yaml:"tavily"`
	SearXNG  SearXNGConfig `yaml:"searxng"`
}

// TavilyConfig Tavily 配置
type TavilyConfig struct {
	APIKey string `yaml:"api_key"`
}

// SearXNGConfig SearXNG 配置
type SearXNGConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"`
}

// RedditConfig Reddit OAuth2 应用凭据
type RedditConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	UserAgent    string `yaml:"user_agent"`
}

// AnalysisConfig 文本分析服务的调用节流与开关
type AnalysisConfig struct {
	MinIntervalMs        int  `yaml:"min_interval_ms"`        // 两次调用之间的最小间隔
	ModelRelevanceFilter bool `yaml:"model_relevance_filter"` // 二阶段相关性过滤开关，默认关闭
}

// MinInterval 以 time.Duration 返回分析服务的最小调用间隔
func (a AnalysisConfig) MinInterval() time.Duration {
	return time.Duration(a.MinIntervalMs) * time.Millisecond
}

// RetryConfig 数据源客户端的重试参数
type RetryConfig struct {
	MaxAttempts int     `yaml:"max_attempts"`
	BaseDelayMs int     `yaml:"base_delay_ms"`
	Multiplier  float64 `yaml:"multiplier"`
}

// BaseDelay 以 time.Duration 返回基础退避间隔
func (r RetryConfig) BaseDelay() time.Duration {
	return time.Duration(r.BaseDelayMs) * time.Millisecond
}

// LimitsConfig 各数据源的采集上限
type LimitsConfig struct {
	RedditPostsPerQuery int `yaml:"reddit_posts_per_query"`
	WebResultsPerQuery  int `yaml:"web_results_per_query"`
	TrendsMaxArticles   int `yaml:"trends_max_articles"`
	DiscoveryMaxResults int `yaml:"discovery_max_results"`
	MaxCompetitors      int `yaml:"max_competitors"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DBConfig 数据库相关配置，可留空以跳过持久化
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// LoadConfig 从指定路径加载配置，环境变量可覆盖敏感字段
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	return &cfg, nil
}

// applyEnv 用环境变量覆盖凭据类字段，便于 .env / CI 注入
func (c *Config) applyEnv() {
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("TAVILY_API_KEY"); v != "" {
		c.Search.Tavily.APIKey = v
	}
	if v := os.Getenv("REDDIT_CLIENT_ID"); v != "" {
		c.Reddit.ClientID = v
	}
	if v := os.Getenv("REDDIT_CLIENT_SECRET"); v != "" {
		c.Reddit.ClientSecret = v
	}
}

func (c *Config) applyDefaults() {
	if c.Analysis.MinIntervalMs <= 0 {
		c.Analysis.MinIntervalMs = 1000
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = 3
	}
	if c.Retry.BaseDelayMs <= 0 {
		c.Retry.BaseDelayMs = 1000
	}
	if c.Retry.Multiplier <= 1 {
		c.Retry.Multiplier = 2.0
	}
	if c.Limits.RedditPostsPerQuery <= 0 {
		c.Limits.RedditPostsPerQuery = 10
	}
	if c.Limits.WebResultsPerQuery <= 0 {
		c.Limits.WebResultsPerQuery = 5
	}
	if c.Limits.TrendsMaxArticles <= 0 {
		c.Limits.TrendsMaxArticles = 10
	}
	if c.Limits.DiscoveryMaxResults <= 0 {
		c.Limits.DiscoveryMaxResults = 10
	}
	if c.Limits.MaxCompetitors <= 0 {
		c.Limits.MaxCompetitors = 5
	}
	if c.Reddit.UserAgent == "" {
		c.Reddit.UserAgent = "market-radar/1.0"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate 启动前校验必填凭据，缺失即视为致命的配置错误
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("config error: llm.api_key is missing")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("config error: llm.model is missing")
	}
	if c.Reddit.ClientID == "" || c.Reddit.ClientSecret == "" {
		return fmt.Errorf("config error: reddit client credentials are missing")
	}
	if c.Search.Provider == "searxng" && c.Search.SearXNG.BaseURL == "" {
		return fmt.Errorf("config error: searxng base_url is missing")
	}
	if c.Search.Provider != "searxng" && c.Search.Tavily.APIKey == "" && c.Search.SearXNG.BaseURL == "" {
		return fmt.Errorf("config error: no web search provider configured")
	}
	return nil
}
