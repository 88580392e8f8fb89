package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cloudwego/eino-ext/components/model/openai"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/market_radar/pkg/config"
	"github.com/iWorld-y/market_radar/pkg/logger"
	"github.com/iWorld-y/market_radar/pkg/model"
	"github.com/iWorld-y/market_radar/pkg/search"
)

// UnknownTrendImplication 趋势分析失败时的兜底结论
const UnknownTrendImplication = "Unable to analyze trend impact."

// Analyzer 文本分析服务边界。分类与抽取失败时各方法按约定回退到安全默认值，
// 只有调用方需要区别对待失败的场景（相关性判断）才透出 error。
type Analyzer interface {
	ClassifyPost(ctx context.Context, post model.ForumPost) model.PostClassification
	CheckRelevance(ctx context.Context, problemArea string, targetUsers []string, post model.ForumPost) (bool, error)
	ExtractCompetitorNames(ctx context.Context, sctx *model.SolutionContext, hits []search.Result) []string
	AnalyzeCompetitor(ctx context.Context, sctx *model.SolutionContext, name, combinedText string) model.CompetitorSummary
	AnalyzeTrend(ctx context.Context, sctx *model.SolutionContext, article search.Result) model.TrendSummary
}

// Client 基于 chat model 的分析服务适配器，所有调用共享同一个限流器
type Client struct {
	chatModel einomodel.ChatModel
	limiter   *rate.Limiter
}

var _ Analyzer = (*Client)(nil)

// NewClient 创建分析服务客户端；limiter 由上层注入，进程内全局唯一
func NewClient(ctx context.Context, cfg config.LLMConfig, limiter *rate.Limiter) (*Client, error) {
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("chat model init failed: %w", err)
	}
	return &Client{chatModel: chatModel, limiter: limiter}, nil
}

// NewClientWithModel 直接注入 chat model，便于测试
func NewClientWithModel(cm einomodel.ChatModel, limiter *rate.Limiter) *Client {
	return &Client{chatModel: cm, limiter: limiter}
}

// generate 经过限流器发起一次模型调用
func (c *Client) generate(ctx context.Context, system, user string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	messages := []*schema.Message{
		{Role: schema.System, Content: system},
		{Role: schema.User, Content: user},
	}

	resp, err := c.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

const jsonOnlySystem = "You are a JSON generator. Output only a single JSON object, no prose."

// ClassifyPost 对单条帖子做主题/方向/强度分类。
// 调用失败回退到 low 强度，解析失败回退到 medium，永不向上抛错。
func (c *Client) ClassifyPost(ctx context.Context, post model.ForumPost) model.PostClassification {
	prompt := fmt.Sprintf(`Classify the following forum post about a product or market problem.

Title: %s
Body: %s

Return JSON:
{
  "topic": "short topic label (2-4 words)",
  "direction": "pain_point" | "demand_signal" | "neutral_observation",
  "intensity": "low" | "medium" | "high",
  "reasoning": "one sentence"
}`, post.Title, truncate(post.Body, 2000))

	raw, err := c.generate(ctx, jsonOnlySystem, prompt)
	if err != nil {
		logger.Log.Warnf("帖子分类调用失败，回退默认值: %v", err)
		return model.PostClassification{
			Topic:     "other",
			Direction: model.DirectionNeutralObservation,
			Intensity: model.IntensityLow,
		}
	}

	var out model.PostClassification
	if err := decodeJSON(raw, &out); err != nil {
		logger.Log.Warnf("帖子分类结果不可解析，回退默认值: %v", err)
		return model.PostClassification{
			Topic:     "other",
			Direction: model.DirectionNeutralObservation,
			Intensity: model.IntensityMedium,
		}
	}

	if out.Topic == "" {
		out.Topic = "other"
	}
	out.Direction = normalizeDirection(out.Direction)
	out.Intensity = normalizeIntensity(out.Intensity)
	return out
}

// CheckRelevance 严格的是/否相关性判断；调用失败时返回 error，由调用方 fail open
func (c *Client) CheckRelevance(ctx context.Context, problemArea string, targetUsers []string, post model.ForumPost) (bool, error) {
	prompt := fmt.Sprintf(`Problem area: %s
Target users: %s

Forum post:
Title: %s
Body: %s

Is this post relevant to the problem area above? Return JSON: {"relevant": true|false}`,
		problemArea, strings.Join(targetUsers, ", "), post.Title, truncate(post.Body, 1500))

	raw, err := c.generate(ctx, jsonOnlySystem, prompt)
	if err != nil {
		return false, err
	}

	var out struct {
		Relevant bool `json:"relevant"`
	}
	if err := decodeJSON(raw, &out); err != nil {
		return false, err
	}
	return out.Relevant, nil
}

// ExtractCompetitorNames 从原始搜索摘要中抽取真实的公司/产品名。
// 失败一律返回空列表（fail closed，宁缺毋滥）。
func (c *Client) ExtractCompetitorNames(ctx context.Context, sctx *model.SolutionContext, hits []search.Result) []string {
	var sb strings.Builder
	for i, hit := range hits {
		if i >= 10 {
			break
		}
		fmt.Fprintf(&sb, "%d. %s — %s\n", i+1, hit.Title, truncate(hit.Content, 300))
	}

	prompt := fmt.Sprintf(`We are researching competitors for this solution: %s (%s)

Search results:
%s

Extract 2-5 real company or product names that compete in this space.
Exclude generic terms, exclude payment processors unless payments is the domain itself, and exclude "%s".
Return JSON: {"competitors": ["Name1", "Name2"], "reasoning": "one sentence"}`,
		sctx.Title, truncate(sctx.Summary, 400), sb.String(), sctx.Title)

	raw, err := c.generate(ctx, jsonOnlySystem, prompt)
	if err != nil {
		logger.Log.Warnf("竞品名称抽取调用失败，返回空列表: %v", err)
		return nil
	}

	// 条目按原始 JSON 接收，数组里混入非字符串时只丢弃该条目，不拖垮整个列表
	var out struct {
		Competitors []json.RawMessage `json:"competitors"`
	}
	if err := decodeJSON(raw, &out); err != nil {
		logger.Log.Warnf("竞品名称抽取结果不可解析，返回空列表: %v", err)
		return nil
	}

	var names []string
	for _, entry := range out.Competitors {
		var n string
		if json.Unmarshal(entry, &n) != nil {
			continue
		}
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if strings.EqualFold(n, sctx.Title) {
			continue // 排除方案自身
		}
		names = append(names, n)
	}
	return names
}

// AnalyzeCompetitor 对单个竞品做特性/优势/弱点分析，缺字段回退为空数组
func (c *Client) AnalyzeCompetitor(ctx context.Context, sctx *model.SolutionContext, name, combinedText string) model.CompetitorSummary {
	prompt := fmt.Sprintf(`Our solution: %s — %s

Competitor: %s
Collected search text:
%s

Return JSON:
{
  "relevant_features": ["..."],
  "unique_edges": ["..."],
  "weaknesses": ["..."]
}`, sctx.Title, truncate(sctx.Summary, 400), name, truncate(combinedText, 4000))

	summary := model.CompetitorSummary{
		Name:             name,
		RelevantFeatures: []string{},
		UniqueEdges:      []string{},
		Weaknesses:       []string{},
	}

	raw, err := c.generate(ctx, jsonOnlySystem, prompt)
	if err != nil {
		logger.Log.Warnf("竞品分析调用失败 [%s]，返回空字段: %v", name, err)
		return summary
	}

	var out struct {
		RelevantFeatures []string `json:"relevant_features"`
		UniqueEdges      []string `json:"unique_edges"`
		Weaknesses       []string `json:"weaknesses"`
	}
	if err := decodeJSON(raw, &out); err != nil {
		logger.Log.Warnf("竞品分析结果不可解析 [%s]，返回空字段: %v", name, err)
		return summary
	}

	if out.RelevantFeatures != nil {
		summary.RelevantFeatures = out.RelevantFeatures
	}
	if out.UniqueEdges != nil {
		summary.UniqueEdges = out.UniqueEdges
	}
	if out.Weaknesses != nil {
		summary.Weaknesses = out.Weaknesses
	}
	return summary
}

// AnalyzeTrend 把一条新闻归类为行业趋势，失败回退到 stable/neutral 的兜底结论
func (c *Client) AnalyzeTrend(ctx context.Context, sctx *model.SolutionContext, article search.Result) model.TrendSummary {
	prompt := fmt.Sprintf(`Our solution: %s — %s

News article:
Title: %s
Snippet: %s
URL: %s
Date: %s

Return JSON:
{
  "name": "short trend name",
  "direction": "growing" | "stable" | "declining",
  "stance": "supportive" | "neutral" | "risky",
  "implication": "one sentence on what this means for the solution",
  "reasoning": "one sentence"
}
Stance is the trend's effect on the solution: supportive helps it, risky threatens it.`,
		sctx.Title, truncate(sctx.Summary, 400),
		article.Title, truncate(article.Content, 1000), article.URL, article.PublishedDate)

	fallback := model.TrendSummary{
		Name:        article.Title,
		Direction:   model.TrendStable,
		Stance:      model.StanceNeutral,
		Implication: UnknownTrendImplication,
	}

	raw, err := c.generate(ctx, jsonOnlySystem, prompt)
	if err != nil {
		logger.Log.Warnf("趋势分析调用失败 [%s]，回退默认值: %v", article.Title, err)
		return fallback
	}

	var out model.TrendSummary
	if err := decodeJSON(raw, &out); err != nil {
		logger.Log.Warnf("趋势分析结果不可解析 [%s]，回退默认值: %v", article.Title, err)
		return fallback
	}

	if out.Name == "" {
		out.Name = article.Title
	}
	out.Direction = normalizeTrendDirection(out.Direction)
	out.Stance = normalizeStance(out.Stance)
	if out.Implication == "" {
		out.Implication = UnknownTrendImplication
	}
	return out
}

// normalizeDirection 非法枚举值回退到中性观察
func normalizeDirection(s string) string {
	switch s {
	case model.DirectionPainPoint, model.DirectionDemandSignal, model.DirectionNeutralObservation:
		return s
	}
	return model.DirectionNeutralObservation
}

// normalizeIntensity 非法枚举值回退到 medium
func normalizeIntensity(s string) string {
	switch s {
	case model.IntensityLow, model.IntensityMedium, model.IntensityHigh:
		return s
	}
	return model.IntensityMedium
}

func normalizeTrendDirection(s string) string {
	switch s {
	case model.TrendGrowing, model.TrendStable, model.TrendDeclining:
		return s
	}
	return model.TrendStable
}

func normalizeStance(s string) string {
	switch s {
	case model.StanceSupportive, model.StanceNeutral, model.StanceRisky:
		return s
	}
	return model.StanceNeutral
}

// truncate 截断过长文本，避免无意义地撑大上下文；截断点回退到 rune 边界
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
