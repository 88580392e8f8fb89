package agents

import (
	"strings"

	"github.com/iWorld-y/market_radar/pkg/model"
	"github.com/iWorld-y/market_radar/pkg/queries"
)

// excludedSubreddits 与产品调研无关的社区，静态过滤阶段直接丢弃
var excludedSubreddits = map[string]bool{
	"funny":               true,
	"memes":               true,
	"dankmemes":           true,
	"adviceanimals":       true,
	"pics":                true,
	"videos":              true,
	"gaming":              true,
	"movies":              true,
	"television":          true,
	"music":               true,
	"politics":            true,
	"worldpolitics":       true,
	"politicalhumor":      true,
	"relationships":       true,
	"relationship_advice": true,
	"dating":              true,
	"dating_advice":       true,
	"aita":                true,
	"amitheasshole":       true,
}

// deriveKeywords 从上下文派生相关性关键词：
// 显式关键词 ∪ 问题/方案文本中 ≥5 字符的实词 ∪ 目标用户，统一小写去重
func deriveKeywords(sctx *model.SolutionContext) []string {
	seen := make(map[string]bool)
	var out []string

	add := func(w string) {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" || seen[w] {
			return
		}
		seen[w] = true
		out = append(out, w)
	}

	for _, kw := range sctx.Keywords {
		add(kw)
	}

	text := sctx.ProblemStatement + " " + sctx.Title + " " + sctx.Summary
	for _, w := range strings.Fields(text) {
		w = strings.Trim(strings.ToLower(w), ".,;:!?\"'()[]")
		if len(w) < 5 || queries.IsStopword(w) {
			continue
		}
		add(w)
	}

	for _, u := range sctx.TargetUsers {
		add(u)
	}

	return out
}

// keepPost 静态/关键词过滤：排除名单社区直接丢弃；
// 社区名包含任一派生关键词，或标题+正文整词命中 ≥2 个派生关键词时保留
func keepPost(post *model.ForumPost, derived []string) bool {
	sub := strings.ToLower(post.Subreddit)
	if excludedSubreddits[sub] {
		return false
	}

	for _, kw := range derived {
		if kw != "" && strings.Contains(sub, strings.ReplaceAll(kw, " ", "")) {
			return true
		}
	}

	text := strings.ToLower(post.Title + " " + post.Body)
	words := tokenSet(text)
	hits := 0
	for _, kw := range derived {
		if matchWhole(words, kw) {
			hits++
			if hits >= 2 {
				return true
			}
		}
	}
	return false
}

// tokenSet 将文本切成小写整词集合
func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(text) {
		w = strings.Trim(w, ".,;:!?\"'()[]")
		if w != "" {
			set[w] = true
		}
	}
	return set
}

// matchWhole 整词匹配；多词关键词要求每个词都命中
func matchWhole(words map[string]bool, kw string) bool {
	parts := strings.Fields(strings.ToLower(kw))
	if len(parts) == 0 {
		return false
	}
	for _, p := range parts {
		if !words[p] {
			return false
		}
	}
	return true
}
