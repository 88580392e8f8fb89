package agents

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/go-shiori/go-readability"

	"github.com/iWorld-y/market_radar/pkg/analysis"
	"github.com/iWorld-y/market_radar/pkg/config"
	"github.com/iWorld-y/market_radar/pkg/logger"
	"github.com/iWorld-y/market_radar/pkg/model"
	"github.com/iWorld-y/market_radar/pkg/queries"
	"github.com/iWorld-y/market_radar/pkg/search"
)

const (
	evidenceExcerptLen = 200

	// minSnippetForEvidence 摘要低于该长度时尝试抓取正文补充证据
	minSnippetForEvidence = 120
)

// stancePriority 趋势排序优先级：风险在前，利好次之，中性最后
var stancePriority = map[string]int{
	model.StanceRisky:      0,
	model.StanceSupportive: 1,
	model.StanceNeutral:    2,
}

// stanceRank 未知 stance 按中性处理，不能抢占风险位
func stanceRank(stance string) int {
	if p, ok := stancePriority[stance]; ok {
		return p
	}
	return stancePriority[model.StanceNeutral]
}

// sortTrendsByStance 稳定排序：风险 < 利好 < 中性，同级保持原有相对顺序
func sortTrendsByStance(trends []model.TrendSummary) {
	sort.SliceStable(trends, func(i, j int) bool {
		return stanceRank(trends[i].Stance) < stanceRank(trends[j].Stance)
	})
}

// TrendsAgent 行业趋势采集 Agent
type TrendsAgent struct {
	web      search.Searcher
	analyzer analysis.Analyzer
	limits   config.LimitsConfig

	// fetchContent 可替换的正文抓取函数，默认走 readability
	fetchContent func(url string) (string, error)
}

// NewTrendsAgent 创建趋势采集 Agent
func NewTrendsAgent(web search.Searcher, analyzer analysis.Analyzer, limits config.LimitsConfig) *TrendsAgent {
	return &TrendsAgent{
		web:          web,
		analyzer:     analyzer,
		limits:       limits,
		fetchContent: fetchAndCleanContent,
	}
}

// Collect 执行趋势采集，失败返回空的合法输出
func (a *TrendsAgent) Collect(ctx context.Context, sctx *model.SolutionContext) *model.TrendsData {
	empty := &model.TrendsData{Trends: []model.TrendSummary{}}

	qs := queries.BuildTrendQueries(sctx)
	if len(qs) == 0 {
		return empty
	}

	// 并行扇出搜索，按查询下标收集以保证合并顺序稳定
	batches := make([][]search.Result, len(qs))
	var wg sync.WaitGroup
	for i, q := range qs {
		wg.Add(1)
		go func(i int, q string) {
			defer wg.Done()
			resp, err := a.web.Search(ctx, &search.Request{
				Query:      queries.EnhanceTrendQuery(q),
				Topic:      "news",
				MaxResults: a.limits.WebResultsPerQuery,
			})
			if err != nil {
				logger.Log.Warnf("趋势搜索失败 [%s]: %v", q, err)
				return
			}
			batches[i] = resp.Results
		}(i, q)
	}
	wg.Wait()

	var merged []search.Result
	for _, batch := range batches {
		merged = append(merged, batch...)
	}
	if len(merged) == 0 {
		logger.Log.Warn("趋势采集：所有查询均无结果，返回空结果")
		return empty
	}

	articles := dedupeResults(merged)
	if len(articles) > a.limits.TrendsMaxArticles {
		articles = articles[:a.limits.TrendsMaxArticles]
	}

	// 逐篇分析，串行执行以配合全局限流
	trends := make([]model.TrendSummary, 0, len(articles))
	for _, art := range articles {
		trend := a.analyzer.AnalyzeTrend(ctx, sctx, art)
		trend.Evidence = a.buildEvidence(art)
		trends = append(trends, trend)
	}

	sortTrendsByStance(trends)

	return &model.TrendsData{Trends: trends}
}

// buildEvidence 从文章摘要截取证据片段；摘要太短时尝试抓取正文
func (a *TrendsAgent) buildEvidence(art search.Result) string {
	content := art.Content
	if len(content) < minSnippetForEvidence && art.URL != "" {
		fetched, err := a.fetchContent(art.URL)
		if err == nil && len(fetched) > len(content) {
			content = fetched
		}
	}
	return truncateAtRune(content, evidenceExcerptLen)
}

// fetchAndCleanContent 抓取 URL 并提取核心文本
func fetchAndCleanContent(url string) (string, error) {
	article, err := readability.FromURL(url, 30*time.Second)
	if err != nil {
		return "", err
	}
	return article.TextContent, nil
}
