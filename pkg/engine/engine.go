package engine

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/iWorld-y/market_radar/pkg/agents"
	"github.com/iWorld-y/market_radar/pkg/aggregate"
	"github.com/iWorld-y/market_radar/pkg/analysis"
	"github.com/iWorld-y/market_radar/pkg/config"
	"github.com/iWorld-y/market_radar/pkg/logger"
	"github.com/iWorld-y/market_radar/pkg/model"
	"github.com/iWorld-y/market_radar/pkg/reddit"
	"github.com/iWorld-y/market_radar/pkg/retry"
	"github.com/iWorld-y/market_radar/pkg/search/factory"
	"github.com/iWorld-y/market_radar/pkg/storage"
)

// Engine 核心处理引擎：串起三个采集 Agent 与报告合成
type Engine struct {
	cfg        *config.Config
	store      *storage.Storage
	forum      *agents.RedditAgent
	competitor *agents.CompetitorAgent
	trends     *agents.TrendsAgent
}

// NewEngine 创建引擎实例。store 允许为 nil，此时跳过持久化。
func NewEngine(cfg *config.Config, store *storage.Storage) (*Engine, error) {
	ctx := context.Background()

	// 全进程共享一个限流器，三个 Agent 对文本分析服务的调用都经过它
	limiter := rate.NewLimiter(rate.Every(cfg.Analysis.MinInterval()), 1)

	analyzer, err := analysis.NewClient(ctx, cfg.LLM, limiter)
	if err != nil {
		return nil, fmt.Errorf("文本分析客户端初始化失败: %w", err)
	}

	searcher, err := factory.NewSearcher(cfg)
	if err != nil {
		return nil, fmt.Errorf("搜索客户端初始化失败: %w", err)
	}

	policy := retry.Policy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   cfg.Retry.BaseDelay(),
		Multiplier:  cfg.Retry.Multiplier,
	}
	forumClient := reddit.NewClient(cfg.Reddit.ClientID, cfg.Reddit.ClientSecret, cfg.Reddit.UserAgent, policy)

	return &Engine{
		cfg:        cfg,
		store:      store,
		forum:      agents.NewRedditAgent(forumClient, analyzer, cfg.Limits, cfg.Analysis.ModelRelevanceFilter),
		competitor: agents.NewCompetitorAgent(searcher, analyzer, cfg.Limits),
		trends:     agents.NewTrendsAgent(searcher, analyzer, cfg.Limits),
	}, nil
}

// Run 执行一次完整的市场调研。三个 Agent 按固定顺序串行执行，
// 任一数据源失败只会让对应段落为空，不会中断整个流程。
func (e *Engine) Run(ctx context.Context, sctx *model.SolutionContext) (*model.ResearchModuleOutput, error) {
	if sctx == nil || sctx.SolutionID == "" {
		return nil, fmt.Errorf("solution context missing solution_id")
	}
	logger.Log.Infof("开始为方案 [%s] 生成市场调研报告", sctx.SolutionID)

	redditData := e.forum.Collect(ctx, sctx)
	logger.Log.Infof("论坛采集完成: %d 个主题, %d 条数据", len(redditData.Topics), redditData.TotalItems)

	competitorData := e.competitor.Collect(ctx, sctx)
	logger.Log.Infof("竞品采集完成: %d 个竞品", len(competitorData.Competitors))

	trendsData := e.trends.Collect(ctx, sctx)
	logger.Log.Infof("趋势采集完成: %d 条趋势", len(trendsData.Trends))

	report := aggregate.BuildReport(sctx, redditData, competitorData, trendsData)

	if e.store != nil {
		if err := e.store.SaveReport(report); err != nil {
			logger.Log.Errorf("保存调研报告失败: %v", err)
		}
	}

	logger.Log.Infof("方案 [%s] 调研报告生成完成", sctx.SolutionID)
	return report, nil
}
