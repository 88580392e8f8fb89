package aggregate

import (
	"fmt"
	"strings"

	"github.com/iWorld-y/market_radar/pkg/model"
)

// 报告中的固定措辞。阈值与句式是对外契约的一部分，调整前需确认下游兼容。
const (
	emptyCustomerVoice = "No customer voice data available from Reddit posts."

	noCompetitorsPosition = "No direct competitors identified. Opportunity to enter an underserved market."
)

// BuildReport 纯函数：把三个数据源的结构化输出合成最终调研报告。
// 不做任何 I/O，相同输入必然产生相同输出。
func BuildReport(sctx *model.SolutionContext, redditData *model.RedditData, competitorData *model.CompetitorData, trendsData *model.TrendsData) *model.ResearchModuleOutput {
	return &model.ResearchModuleOutput{
		SolutionID:          sctx.SolutionID,
		Summary:             buildSummary(sctx, redditData, competitorData, trendsData),
		CustomerVoice:       buildCustomerVoice(redditData),
		IndustryTrends:      buildSimplifiedTrends(trendsData),
		CompetitiveAnalysis: buildCompetitiveAnalysis(competitorData),
	}
}

// buildSummary 由简单阈值选择 PM 摘要句式：
// 竞品数 < 3 且论坛条目 > 20 视为强机会；竞品数 ≥ 3 且条目 < 10 视为艰难市场
func buildSummary(sctx *model.SolutionContext, redditData *model.RedditData, competitorData *model.CompetitorData, trendsData *model.TrendsData) string {
	competitorCount := len(competitorData.Competitors)
	itemCount := redditData.TotalItems

	var assessment string
	switch {
	case competitorCount < 3 && itemCount > 20:
		assessment = "a strong market opportunity with clear demand and limited direct competition"
	case competitorCount >= 3 && itemCount < 10:
		assessment = "a challenging market with established competitors and limited observable demand"
	default:
		assessment = "a moderate market opportunity worth further validation"
	}

	return fmt.Sprintf(
		"Market research for %q across community discussions, competitor scans and industry news indicates %s. "+
			"The analysis covered %d community data points, %d identified competitors and %d industry trends.",
		sctx.Title, assessment, itemCount, competitorCount, len(trendsData.Trends))
}

// buildCustomerVoice 拼装客户之声段落：
// 高强度痛点主题 → 不满句；需求信号主题 → 机会句；无需求主题时用通用需求句兜底
func buildCustomerVoice(redditData *model.RedditData) string {
	if redditData.TotalItems == 0 || len(redditData.Topics) == 0 {
		return emptyCustomerVoice
	}

	var frustrations, demands []string
	for _, t := range redditData.Topics {
		if t.DominantDirection == model.DirectionPainPoint && t.DominantIntensity == model.IntensityHigh {
			frustrations = append(frustrations, t.Topic)
		}
		if t.DominantDirection == model.DirectionDemandSignal {
			demands = append(demands, t.Topic)
		}
	}

	var sentences []string
	if len(frustrations) > 0 {
		sentences = append(sentences, fmt.Sprintf(
			"Customers voice strong frustration around %s.", joinTopics(frustrations)))
	}
	if len(demands) > 0 {
		sentences = append(sentences, fmt.Sprintf(
			"They are actively asking for solutions addressing %s.", joinTopics(demands)))
	} else {
		sentences = append(sentences,
			"Discussions show general demand for a better way to solve this problem.")
	}

	return strings.Join(sentences, " ")
}

// joinTopics 把主题列表拼成自然语言枚举
func joinTopics(topics []string) string {
	switch len(topics) {
	case 1:
		return topics[0]
	case 2:
		return topics[0] + " and " + topics[1]
	default:
		return strings.Join(topics[:len(topics)-1], ", ") + " and " + topics[len(topics)-1]
	}
}

// buildSimplifiedTrends 把趋势映射为报告条目：stance → impact，证据+结论拼成摘要
func buildSimplifiedTrends(trendsData *model.TrendsData) []model.SimplifiedTrend {
	out := make([]model.SimplifiedTrend, 0, len(trendsData.Trends))
	for _, t := range trendsData.Trends {
		out = append(out, model.SimplifiedTrend{
			Trend:   t.Name,
			Impact:  stanceToImpact(t.Stance),
			Summary: strings.TrimSpace(t.Evidence + " " + t.Implication),
		})
	}
	return out
}

func stanceToImpact(stance string) string {
	switch stance {
	case model.StanceSupportive:
		return "positive"
	case model.StanceRisky:
		return "negative"
	default:
		return "neutral"
	}
}

// buildCompetitiveAnalysis 简化竞品列表并按竞品数量生成市场定位判断
func buildCompetitiveAnalysis(competitorData *model.CompetitorData) model.CompetitiveAnalysis {
	competitors := make([]model.SimplifiedCompetitor, 0, len(competitorData.Competitors))
	for _, c := range competitorData.Competitors {
		competitors = append(competitors, simplifyCompetitor(c))
	}
	return model.CompetitiveAnalysis{
		Competitors:    competitors,
		MarketPosition: marketPosition(competitorData.Competitors),
	}
}

// simplifyCompetitor 字段为空时落到通用描述，报告中不留空位
func simplifyCompetitor(c model.CompetitorSummary) model.SimplifiedCompetitor {
	description := "No detailed feature information available."
	if len(c.RelevantFeatures) > 0 {
		description = "Offers " + joinTopics(c.RelevantFeatures) + "."
	}

	strengths := c.UniqueEdges
	if len(strengths) == 0 {
		strengths = []string{"Established market presence"}
	}
	weaknesses := c.Weaknesses
	if len(weaknesses) == 0 {
		weaknesses = []string{"No publicly visible weaknesses identified"}
	}

	return model.SimplifiedCompetitor{
		Name:        c.Name,
		Description: description,
		Strengths:   strengths,
		Weaknesses:  weaknesses,
	}
}

// marketPosition 按竞品数量的固定阈值生成一句市场定位判断
func marketPosition(competitors []model.CompetitorSummary) string {
	switch n := len(competitors); {
	case n == 0:
		return noCompetitorsPosition
	case n == 1:
		return fmt.Sprintf(
			"One direct competitor identified (%s). Differentiation against it will determine positioning.",
			competitors[0].Name)
	case n <= 3:
		return fmt.Sprintf(
			"Competitive market with %d identified players, but with exploitable weaknesses. Positioning and differentiation are key.", n)
	default:
		return fmt.Sprintf(
			"Highly competitive market with %d identified players. Focus on finding a defensible niche.", n)
	}
}
