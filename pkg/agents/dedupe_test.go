package agents

import (
	"testing"

	"github.com/iWorld-y/market_radar/pkg/model"
	"github.com/iWorld-y/market_radar/pkg/search"
)

func TestDedupePostsFirstWins(t *testing.T) {
	posts := []model.ForumPost{
		{Title: "first", URL: "https://reddit.com/a"},
		{Title: "second", URL: "https://reddit.com/b"},
		{Title: "duplicate", URL: "https://reddit.com/a"},
	}

	got := dedupePosts(posts)
	if len(got) != 2 {
		t.Fatalf("dedupePosts returned %d posts, want 2", len(got))
	}
	if got[0].Title != "first" || got[1].Title != "second" {
		t.Errorf("dedupePosts order = [%s, %s], want first occurrence kept in order", got[0].Title, got[1].Title)
	}
}

func TestDedupePostsKeepsEmptyURL(t *testing.T) {
	posts := []model.ForumPost{
		{Title: "no link one"},
		{Title: "linked", URL: "https://reddit.com/a"},
		{Title: "no link two"},
	}

	got := dedupePosts(posts)
	if len(got) != 3 {
		t.Fatalf("dedupePosts returned %d posts, want 3: URL-less posts must not be dropped", len(got))
	}
	if got[0].Title != "no link one" || got[2].Title != "no link two" {
		t.Errorf("dedupePosts dropped or reordered URL-less posts: %v", got)
	}
}

func TestDedupeResultsKeepsEmptyURL(t *testing.T) {
	results := []search.Result{
		{Title: "a", URL: "https://example.com/x"},
		{Title: "b"},
		{Title: "c", URL: "https://example.com/x"},
		{Title: "d"},
	}

	got := dedupeResults(results)
	if len(got) != 3 {
		t.Fatalf("dedupeResults returned %d results, want 3", len(got))
	}
	wantTitles := []string{"a", "b", "d"}
	for i, want := range wantTitles {
		if got[i].Title != want {
			t.Errorf("result %d = %q, want %q", i, got[i].Title, want)
		}
	}
}
