package model

// SolutionContext 一次调研的输入上下文，整个流水线只读
type SolutionContext struct {
	SolutionID       string   `json:"solution_id"`
	Title            string   `json:"title"`
	Summary          string   `json:"summary"`
	ProblemStatement string   `json:"problem_statement"`
	TargetUsers      []string `json:"target_users"`
	Keywords         []string `json:"keywords"`
}

// PrimaryKeyword 返回首个非空关键词，没有则返回空串
func (c *SolutionContext) PrimaryKeyword() string {
	for _, kw := range c.Keywords {
		if kw != "" {
			return kw
		}
	}
	return ""
}

// ForumPost 归一化后的一条论坛帖子
type ForumPost struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	URL       string `json:"url"`
	Subreddit string `json:"subreddit"`
	Score     int    `json:"score"`
	Comments  int    `json:"comments"`
	CreatedAt int64  `json:"created_at"` // Unix 秒
}

// Engagement 帖子的参与度，用于选取代表性引用
func (p *ForumPost) Engagement() int {
	return p.Score + p.Comments
}

// 帖子分类的枚举值
const (
	DirectionPainPoint          = "pain_point"
	DirectionDemandSignal       = "demand_signal"
	DirectionNeutralObservation = "neutral_observation"

	IntensityLow    = "low"
	IntensityMedium = "medium"
	IntensityHigh   = "high"
)

// 趋势分类的枚举值
const (
	TrendGrowing   = "growing"
	TrendStable    = "stable"
	TrendDeclining = "declining"

	StanceSupportive = "supportive"
	StanceNeutral    = "neutral"
	StanceRisky      = "risky"
)

// PostClassification 单条帖子的分类结果
type PostClassification struct {
	Topic     string `json:"topic"`
	Direction string `json:"direction"`
	Intensity string `json:"intensity"`
	Reasoning string `json:"reasoning,omitempty"`
}

// ClassifiedPost 带分类标注的帖子
type ClassifiedPost struct {
	ForumPost
	PostClassification
}

// TopicSummary 同一主题下帖子组的聚合结果
type TopicSummary struct {
	Topic             string   `json:"topic"`
	Mentions          int      `json:"mentions"`
	DominantDirection string   `json:"dominant_direction"`
	DominantIntensity string   `json:"dominant_intensity"`
	SampleQuotes      []string `json:"sample_quotes"`
}

// RedditData 论坛采集 Agent 的结构化输出
type RedditData struct {
	Topics     []TopicSummary `json:"topics"`
	TotalItems int            `json:"total_items"`
}

// CompetitorSummary 单个竞品的分析结果，Name 在一次运行内唯一
type CompetitorSummary struct {
	Name             string   `json:"name"`
	RelevantFeatures []string `json:"relevant_features"`
	UniqueEdges      []string `json:"unique_edges"`
	Weaknesses       []string `json:"weaknesses"`
}

// CompetitorData 竞品采集 Agent 的结构化输出
type CompetitorData struct {
	Competitors []CompetitorSummary `json:"competitors"`
}

// TrendSummary 单条行业趋势，按 stance 优先级排序后输出
type TrendSummary struct {
	Name        string `json:"name"`
	Direction   string `json:"direction"` // growing / stable / declining
	Stance      string `json:"stance"`    // supportive / neutral / risky
	Evidence    string `json:"evidence"`
	Implication string `json:"implication"`
}

// TrendsData 趋势采集 Agent 的结构化输出
type TrendsData struct {
	Trends []TrendSummary `json:"trends"`
}

// SimplifiedTrend 报告中简化后的趋势条目
type SimplifiedTrend struct {
	Trend   string `json:"trend"`
	Impact  string `json:"impact"` // positive / negative / neutral
	Summary string `json:"summary"`
}

// SimplifiedCompetitor 报告中简化后的竞品条目
type SimplifiedCompetitor struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Strengths   []string `json:"strengths"`
	Weaknesses  []string `json:"weaknesses"`
}

// CompetitiveAnalysis 报告中的竞争分析块
type CompetitiveAnalysis struct {
	Competitors    []SimplifiedCompetitor `json:"competitors"`
	MarketPosition string                 `json:"market_position"`
}

// ResearchModuleOutput 最终产出的调研报告，构建后不再修改
type ResearchModuleOutput struct {
	SolutionID          string              `json:"solution_id"`
	Summary             string              `json:"summary"`
	CustomerVoice       string              `json:"customer_voice"`
	IndustryTrends      []SimplifiedTrend   `json:"industry_trends"`
	CompetitiveAnalysis CompetitiveAnalysis `json:"competitive_analysis"`
}
