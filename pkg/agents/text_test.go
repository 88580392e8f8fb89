package agents

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/iWorld-y/market_radar/pkg/model"
)

func TestTruncateAtRune(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"plain ascii", 5, "plain"},
		{"short", 100, "short"},
		{"数据同步问题", 7, "数据"}, // 7 落在第三个字中间，回退到 6
		{"数据同步问题", 6, "数据"},
		{"数据", 0, ""},
	}
	for _, tc := range cases {
		got := truncateAtRune(tc.in, tc.max)
		if got != tc.want {
			t.Errorf("truncateAtRune(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("truncateAtRune(%q, %d) produced invalid UTF-8", tc.in, tc.max)
		}
	}
}

func TestSampleQuotesKeepExcerptValidUTF8(t *testing.T) {
	group := []model.ClassifiedPost{{
		ForumPost: model.ForumPost{
			Title: "同步失败",
			Body:  strings.Repeat("数据同步一直失败，", 20),
		},
	}}

	quotes := sampleQuotes(group)

	if len(quotes) != 1 {
		t.Fatalf("got %d quotes, want 1", len(quotes))
	}
	if !utf8.ValidString(quotes[0]) {
		t.Errorf("quote contains invalid UTF-8: %q", quotes[0])
	}
	if !strings.HasSuffix(quotes[0], "...") {
		t.Errorf("quote %q should end with the truncation marker", quotes[0])
	}
}
