package queries

import (
	"strings"

	"github.com/iWorld-y/market_radar/pkg/model"
)

// 各数据源的查询条数边界
const (
	RedditMinQueries = 3
	RedditMaxQueries = 8
	TrendsMinQueries = 3
	TrendsMaxQueries = 10

	// problemTokenLimit 从问题陈述中取的非停用词个数
	problemTokenLimit = 4
)

// stopwords 构造查询与派生关键词时跳过的常见词
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"for": true, "with": true, "that": true, "this": true, "these": true,
	"those": true, "from": true, "into": true, "your": true, "their": true,
	"have": true, "has": true, "will": true, "would": true, "could": true,
	"should": true, "about": true, "when": true, "where": true, "which": true,
	"while": true, "there": true, "they": true, "them": true, "then": true,
	"than": true, "been": true, "being": true, "because": true, "more": true,
	"most": true, "some": true, "such": true, "other": true,
	"want": true, "need": true, "also": true, "very": true, "just": true,
	"users": true, "people": true, "using": true, "make": true, "like": true,
}

// IsStopword 判断是否为停用词（不区分大小写）
func IsStopword(w string) bool {
	return stopwords[strings.ToLower(w)]
}

// ProblemTokens 取问题陈述开头的若干非停用词 token
func ProblemTokens(problem string, limit int) []string {
	var out []string
	for _, w := range strings.Fields(problem) {
		w = strings.Trim(strings.ToLower(w), ".,;:!?\"'()")
		if len(w) < 3 || IsStopword(w) {
			continue
		}
		out = append(out, w)
		if len(out) >= limit {
			break
		}
	}
	return out
}

// redditTemplates 论坛查询的固定短语模板
var redditTemplates = []string{
	"%s pain points",
	"%s problems",
	"%s frustrating",
	"%s alternatives",
	"%s recommendations",
}

// BuildRedditQueries 构造论坛查询列表。纯函数：
// 只要有非空关键词，返回条数就落在 [RedditMinQueries, RedditMaxQueries]。
func BuildRedditQueries(sctx *model.SolutionContext) []string {
	var raw []string

	primary := sctx.PrimaryKeyword()
	for _, kw := range sctx.Keywords {
		if kw == "" {
			continue
		}
		for _, tpl := range redditTemplates {
			raw = append(raw, strings.Replace(tpl, "%s", kw, 1))
		}
	}

	// 问题陈述的前几个实词拼一条查询
	if tokens := ProblemTokens(sctx.ProblemStatement, problemTokenLimit); len(tokens) > 0 {
		raw = append(raw, strings.Join(tokens, " "))
	}

	out := dedupeTruncate(raw, RedditMaxQueries)

	// 兜底：不足下限时复用主关键词
	return padToMin(out, primary, RedditMinQueries)
}

// BuildTrendQueries 构造趋势查询列表：每个关键词两条，外加一条目标用户和一条问题域查询
func BuildTrendQueries(sctx *model.SolutionContext) []string {
	var raw []string

	primary := sctx.PrimaryKeyword()
	for _, kw := range sctx.Keywords {
		if kw == "" {
			continue
		}
		raw = append(raw, kw+" trends", kw+" regulation")
	}

	if len(sctx.TargetUsers) > 0 && sctx.TargetUsers[0] != "" {
		raw = append(raw, sctx.TargetUsers[0]+" industry outlook")
	}
	if tokens := ProblemTokens(sctx.ProblemStatement, problemTokenLimit); len(tokens) > 0 {
		raw = append(raw, strings.Join(tokens, " ")+" market")
	}

	return padToMin(dedupeTruncate(raw, TrendsMaxQueries), primary, TrendsMinQueries)
}

// EnhanceTrendQuery 趋势查询统一追加时效后缀
func EnhanceTrendQuery(q string) string {
	return q + " news trends 2024 2025"
}

// BuildDiscoveryQuery 竞品发现阶段的唯一一条宽泛查询：
// 前两个关键词 + 第一个目标用户 + 固定后缀
func BuildDiscoveryQuery(sctx *model.SolutionContext) string {
	var parts []string
	for _, kw := range sctx.Keywords {
		if kw == "" {
			continue
		}
		parts = append(parts, kw)
		if len(parts) >= 2 {
			break
		}
	}
	if len(sctx.TargetUsers) > 0 && sctx.TargetUsers[0] != "" {
		parts = append(parts, sctx.TargetUsers[0])
	}
	parts = append(parts, "solutions platforms companies alternatives")
	return strings.Join(parts, " ")
}

// BuildEnrichmentQuery 单个竞品的补充调研查询
func BuildEnrichmentQuery(name string) string {
	return name + " features pricing review comparison"
}

// dedupeTruncate 按字符串精确去重，保序，并截断到上限
func dedupeTruncate(raw []string, max int) []string {
	seen := make(map[string]bool, len(raw))
	var out []string
	for _, q := range raw {
		if q == "" || seen[q] {
			continue
		}
		seen[q] = true
		out = append(out, q)
		if len(out) >= max {
			break
		}
	}
	return out
}

// padSuffixes 兜底查询的取词顺序
var padSuffixes = []string{"", " review", " discussion", " forum", " experience", " community"}

// padToMin 查询数不足下限时，用主关键词的变体补足，保证不引入重复串
func padToMin(out []string, primary string, min int) []string {
	if primary == "" {
		return out
	}
	seen := make(map[string]bool, len(out))
	for _, q := range out {
		seen[q] = true
	}
	for _, suffix := range padSuffixes {
		if len(out) >= min {
			break
		}
		candidate := primary + suffix
		if !seen[candidate] {
			seen[candidate] = true
			out = append(out, candidate)
		}
	}
	return out
}
