package agents

import (
	"context"
	"strings"
	"sync"

	"github.com/iWorld-y/market_radar/pkg/analysis"
	"github.com/iWorld-y/market_radar/pkg/config"
	"github.com/iWorld-y/market_radar/pkg/logger"
	"github.com/iWorld-y/market_radar/pkg/model"
	"github.com/iWorld-y/market_radar/pkg/queries"
	"github.com/iWorld-y/market_radar/pkg/search"
)

// CompetitorAgent 竞品采集 Agent：先发现候选名单，再逐个补充调研。
// 发现环节 fail closed：查不到就返回空，绝不猜测竞品名单。
type CompetitorAgent struct {
	web      search.Searcher
	analyzer analysis.Analyzer
	limits   config.LimitsConfig
}

// NewCompetitorAgent 创建竞品采集 Agent
func NewCompetitorAgent(web search.Searcher, analyzer analysis.Analyzer, limits config.LimitsConfig) *CompetitorAgent {
	return &CompetitorAgent{web: web, analyzer: analyzer, limits: limits}
}

// Collect 执行竞品采集，失败返回空的合法输出
func (a *CompetitorAgent) Collect(ctx context.Context, sctx *model.SolutionContext) *model.CompetitorData {
	empty := &model.CompetitorData{Competitors: []model.CompetitorSummary{}}

	// 第一阶段：一条宽泛查询发现候选竞品
	discoveryQuery := queries.BuildDiscoveryQuery(sctx)
	resp, err := a.web.Search(ctx, &search.Request{
		Query:      discoveryQuery,
		Topic:      "general",
		MaxResults: a.limits.DiscoveryMaxResults,
	})
	if err != nil {
		logger.Log.Warnf("竞品发现搜索失败，返回空结果: %v", err)
		return empty
	}
	if len(resp.Results) == 0 {
		logger.Log.Warn("竞品发现搜索无结果，返回空结果")
		return empty
	}

	names := a.analyzer.ExtractCompetitorNames(ctx, sctx, resp.Results)
	names = dedupeNames(names, a.limits.MaxCompetitors)
	if len(names) == 0 {
		logger.Log.Warn("未抽取到竞品名称，返回空结果")
		return empty
	}
	logger.Log.Infof("发现 %d 个候选竞品: %s", len(names), strings.Join(names, ", "))

	// 第二阶段：每个竞品一条补充查询，并行扇出
	blobs := make([]string, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			r, err := a.web.Search(ctx, &search.Request{
				Query:      queries.BuildEnrichmentQuery(name),
				Topic:      "general",
				MaxResults: a.limits.WebResultsPerQuery,
			})
			if err != nil {
				logger.Log.Warnf("竞品补充搜索失败 [%s]: %v", name, err)
				return
			}
			blobs[i] = combineHits(r.Results)
		}(i, name)
	}
	wg.Wait()

	// 查不到任何资料的竞品直接丢弃；分析串行执行以配合全局限流
	competitors := make([]model.CompetitorSummary, 0, len(names))
	for i, name := range names {
		if blobs[i] == "" {
			logger.Log.Warnf("竞品 [%s] 无可用资料，丢弃", name)
			continue
		}
		competitors = append(competitors, a.analyzer.AnalyzeCompetitor(ctx, sctx, name, blobs[i]))
	}

	return &model.CompetitorData{Competitors: competitors}
}

// dedupeNames 不区分大小写去重并截断，保序
func dedupeNames(names []string, max int) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, n := range names {
		key := strings.ToLower(strings.TrimSpace(n))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, strings.TrimSpace(n))
		if max > 0 && len(out) >= max {
			break
		}
	}
	return out
}

// combineHits 把一个竞品的所有搜索命中拼成一段分析输入
func combineHits(results []search.Result) string {
	var sb strings.Builder
	for _, r := range results {
		sb.WriteString(r.Title)
		sb.WriteString("\n")
		sb.WriteString(r.Content)
		sb.WriteString("\n\n")
	}
	return strings.TrimSpace(sb.String())
}
