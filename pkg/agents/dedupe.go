package agents

import (
	"github.com/iWorld-y/market_radar/pkg/model"
	"github.com/iWorld-y/market_radar/pkg/search"
)

// dedupePosts 按 URL 去重，保留首次出现的帖子，保序。
// URL 为空的帖子没有去重键，一律保留。
func dedupePosts(posts []model.ForumPost) []model.ForumPost {
	seen := make(map[string]bool, len(posts))
	out := make([]model.ForumPost, 0, len(posts))
	for _, p := range posts {
		if p.URL != "" {
			if seen[p.URL] {
				continue
			}
			seen[p.URL] = true
		}
		out = append(out, p)
	}
	return out
}

// dedupeResults 按 URL 去重，保留首次出现的搜索结果，保序。
// URL 为空的结果没有去重键，一律保留。
func dedupeResults(results []search.Result) []search.Result {
	seen := make(map[string]bool, len(results))
	out := make([]search.Result, 0, len(results))
	for _, r := range results {
		if r.URL != "" {
			if seen[r.URL] {
				continue
			}
			seen[r.URL] = true
		}
		out = append(out, r)
	}
	return out
}
