package agents

import (
	"context"
	"sort"
	"sync"

	"github.com/iWorld-y/market_radar/pkg/analysis"
	"github.com/iWorld-y/market_radar/pkg/config"
	"github.com/iWorld-y/market_radar/pkg/logger"
	"github.com/iWorld-y/market_radar/pkg/model"
	"github.com/iWorld-y/market_radar/pkg/queries"
)

const (
	maxQuotesPerTopic = 3
	quoteBodyExcerpt  = 100
)

// ForumSearcher 论坛搜索能力，由 reddit.Client 实现
type ForumSearcher interface {
	Search(ctx context.Context, query string, limit int, subreddit string) ([]model.ForumPost, error)
}

// RedditAgent 论坛采集 Agent：搜索 → 去重 → 两级过滤 → 分类 → 按主题聚合
type RedditAgent struct {
	forum       ForumSearcher
	analyzer    analysis.Analyzer
	limits      config.LimitsConfig
	modelFilter bool // 二阶段相关性过滤开关
}

// NewRedditAgent 创建论坛采集 Agent
func NewRedditAgent(forum ForumSearcher, analyzer analysis.Analyzer, limits config.LimitsConfig, modelFilter bool) *RedditAgent {
	return &RedditAgent{forum: forum, analyzer: analyzer, limits: limits, modelFilter: modelFilter}
}

// Collect 执行论坛采集。任何不可恢复的失败都返回空的合法输出而非错误，
// 保证其余数据源的结果仍可继续产出报告。
func (a *RedditAgent) Collect(ctx context.Context, sctx *model.SolutionContext) *model.RedditData {
	empty := &model.RedditData{Topics: []model.TopicSummary{}}

	qs := queries.BuildRedditQueries(sctx)
	if len(qs) == 0 {
		logger.Log.Warn("论坛采集：没有可用的查询，返回空结果")
		return empty
	}

	// 并行扇出搜索，按查询下标收集以保证合并顺序稳定
	batches := make([][]model.ForumPost, len(qs))
	var wg sync.WaitGroup
	for i, q := range qs {
		wg.Add(1)
		go func(i int, q string) {
			defer wg.Done()
			posts, err := a.forum.Search(ctx, q, a.limits.RedditPostsPerQuery, "")
			if err != nil {
				logger.Log.Warnf("论坛搜索失败 [%s]: %v", q, err)
				return
			}
			batches[i] = posts
		}(i, q)
	}
	wg.Wait()

	var merged []model.ForumPost
	for _, batch := range batches {
		merged = append(merged, batch...)
	}
	if len(merged) == 0 {
		logger.Log.Warn("论坛采集：所有查询均无结果，返回空结果")
		return empty
	}

	deduped := dedupePosts(merged)

	// 一级：静态关键词过滤，无条件执行
	derived := deriveKeywords(sctx)
	var filtered []model.ForumPost
	for _, p := range deduped {
		if keepPost(&p, derived) {
			filtered = append(filtered, p)
		}
	}
	logger.Log.Infof("论坛采集：%d 条去重后剩 %d 条，静态过滤后剩 %d 条",
		len(merged), len(deduped), len(filtered))

	// 二级：模型辅助过滤，默认关闭；调用失败时 fail open 保留帖子
	if a.modelFilter {
		var kept []model.ForumPost
		for _, p := range filtered {
			relevant, err := a.analyzer.CheckRelevance(ctx, sctx.ProblemStatement, sctx.TargetUsers, p)
			if err != nil {
				logger.Log.Warnf("相关性判断失败，保留帖子 [%s]: %v", p.Title, err)
				kept = append(kept, p)
				continue
			}
			if relevant {
				kept = append(kept, p)
			}
		}
		filtered = kept
	}

	if len(filtered) == 0 {
		return empty
	}

	// 逐条分类，串行执行以配合全局限流
	classified := make([]model.ClassifiedPost, 0, len(filtered))
	for _, p := range filtered {
		classified = append(classified, model.ClassifiedPost{
			ForumPost:          p,
			PostClassification: a.analyzer.ClassifyPost(ctx, p),
		})
	}

	return &model.RedditData{
		Topics:     aggregateTopics(classified),
		TotalItems: len(classified),
	}
}

// aggregateTopics 按主题聚合分类结果，输出按提及次数降序
func aggregateTopics(posts []model.ClassifiedPost) []model.TopicSummary {
	groups := make(map[string][]model.ClassifiedPost)
	var order []string
	for _, p := range posts {
		if _, ok := groups[p.Topic]; !ok {
			order = append(order, p.Topic)
		}
		groups[p.Topic] = append(groups[p.Topic], p)
	}

	summaries := make([]model.TopicSummary, 0, len(order))
	for _, topic := range order {
		group := groups[topic]
		summaries = append(summaries, model.TopicSummary{
			Topic:             topic,
			Mentions:          len(group),
			DominantDirection: dominantDirection(group),
			DominantIntensity: dominantIntensity(group),
			SampleQuotes:      sampleQuotes(group),
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Mentions > summaries[j].Mentions
	})
	return summaries
}

// dominantDirection 取出现次数最多的方向，计数扫描中先到者胜出平局
func dominantDirection(group []model.ClassifiedPost) string {
	counts := make(map[string]int)
	var order []string
	for _, p := range group {
		if _, ok := counts[p.Direction]; !ok {
			order = append(order, p.Direction)
		}
		counts[p.Direction]++
	}

	best := ""
	bestCount := -1
	for _, dir := range order {
		if counts[dir] > bestCount {
			best = dir
			bestCount = counts[dir]
		}
	}
	if best == "" {
		return model.DirectionNeutralObservation
	}
	return best
}

// dominantIntensity 按 high > medium > low 的优先级取组内强度
func dominantIntensity(group []model.ClassifiedPost) string {
	hasMedium := false
	for _, p := range group {
		switch p.Intensity {
		case model.IntensityHigh:
			return model.IntensityHigh
		case model.IntensityMedium:
			hasMedium = true
		}
	}
	if hasMedium {
		return model.IntensityMedium
	}
	return model.IntensityLow
}

// sampleQuotes 按参与度降序取最多 3 条代表性引用，平局保持原序
func sampleQuotes(group []model.ClassifiedPost) []string {
	sorted := make([]model.ClassifiedPost, len(group))
	copy(sorted, group)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Engagement() > sorted[j].Engagement()
	})

	quotes := make([]string, 0, maxQuotesPerTopic)
	for _, p := range sorted {
		if len(quotes) >= maxQuotesPerTopic {
			break
		}
		quote := p.Title
		if p.Body != "" {
			excerpt := p.Body
			if len(excerpt) > quoteBodyExcerpt {
				excerpt = truncateAtRune(excerpt, quoteBodyExcerpt) + "..."
			}
			quote += ": " + excerpt
		}
		quotes = append(quotes, quote)
	}
	return quotes
}
