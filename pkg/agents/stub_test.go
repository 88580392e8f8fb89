package agents

import (
	"context"
	"sync"

	"github.com/iWorld-y/market_radar/pkg/model"
	"github.com/iWorld-y/market_radar/pkg/search"
)

// stubForum 固定返回同一批帖子的论坛搜索桩
type stubForum struct {
	mu    sync.Mutex
	posts []model.ForumPost
	err   error
	calls int
}

func (s *stubForum) Search(ctx context.Context, query string, limit int, subreddit string) ([]model.ForumPost, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]model.ForumPost, len(s.posts))
	copy(out, s.posts)
	return out, nil
}

// stubSearcher 按回调响应的网页搜索桩
type stubSearcher struct {
	mu     sync.Mutex
	search func(req *search.Request) (*search.Response, error)
	calls  []string
}

func (s *stubSearcher) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req.Query)
	s.mu.Unlock()
	return s.search(req)
}

// stubAnalyzer 各方法均可按测试需要替换，未设置的方法返回固定值
type stubAnalyzer struct {
	classify   func(post model.ForumPost) model.PostClassification
	relevance  func(post model.ForumPost) (bool, error)
	extract    func(hits []search.Result) []string
	competitor func(name, text string) model.CompetitorSummary
	trend      func(article search.Result) model.TrendSummary
}

func (s *stubAnalyzer) ClassifyPost(ctx context.Context, post model.ForumPost) model.PostClassification {
	if s.classify != nil {
		return s.classify(post)
	}
	return model.PostClassification{
		Topic:     "general",
		Direction: model.DirectionNeutralObservation,
		Intensity: model.IntensityLow,
	}
}

func (s *stubAnalyzer) CheckRelevance(ctx context.Context, problemArea string, targetUsers []string, post model.ForumPost) (bool, error) {
	if s.relevance != nil {
		return s.relevance(post)
	}
	return true, nil
}

func (s *stubAnalyzer) ExtractCompetitorNames(ctx context.Context, sctx *model.SolutionContext, hits []search.Result) []string {
	if s.extract != nil {
		return s.extract(hits)
	}
	return nil
}

func (s *stubAnalyzer) AnalyzeCompetitor(ctx context.Context, sctx *model.SolutionContext, name, combinedText string) model.CompetitorSummary {
	if s.competitor != nil {
		return s.competitor(name, combinedText)
	}
	return model.CompetitorSummary{
		Name:             name,
		RelevantFeatures: []string{},
		UniqueEdges:      []string{},
		Weaknesses:       []string{},
	}
}

func (s *stubAnalyzer) AnalyzeTrend(ctx context.Context, sctx *model.SolutionContext, article search.Result) model.TrendSummary {
	if s.trend != nil {
		return s.trend(article)
	}
	return model.TrendSummary{
		Name:        article.Title,
		Direction:   model.TrendStable,
		Stance:      model.StanceNeutral,
		Implication: "none",
	}
}
