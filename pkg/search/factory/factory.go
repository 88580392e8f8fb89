package factory

import (
	"fmt"

	"github.com/iWorld-y/market_radar/pkg/config"
	"github.com/iWorld-y/market_radar/pkg/retry"
	"github.com/iWorld-y/market_radar/pkg/search"
	"github.com/iWorld-y/market_radar/pkg/searxng"
	"github.com/iWorld-y/market_radar/pkg/tavily"
)

// NewSearcher 根据配置创建搜索实例；两个 provider 都可用时优先 tavily
func NewSearcher(cfg *config.Config) (search.Searcher, error) {
	policy := retry.Policy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   cfg.Retry.BaseDelay(),
		Multiplier:  cfg.Retry.Multiplier,
	}

	provider := cfg.Search.Provider
	if provider == "" {
		// 默认回退逻辑：配置了 tavily key 就用 tavily，否则退回 searxng
		if cfg.Search.Tavily.APIKey != "" {
			provider = "tavily"
		} else if cfg.Search.SearXNG.BaseURL != "" {
			provider = "searxng"
		} else {
			return nil, fmt.Errorf("search provider not configured")
		}
	}

	switch provider {
	case "tavily":
		if cfg.Search.Tavily.APIKey == "" {
			return nil, fmt.Errorf("tavily api key is missing")
		}
		return tavily.NewClient(cfg.Search.Tavily.APIKey, policy), nil

	case "searxng":
		if cfg.Search.SearXNG.BaseURL == "" {
			return nil, fmt.Errorf("searxng base url is missing")
		}
		return searxng.NewClient(cfg.Search.SearXNG.BaseURL, cfg.Search.SearXNG.Timeout, policy), nil

	default:
		return nil, fmt.Errorf("unknown search provider: %s", provider)
	}
}
