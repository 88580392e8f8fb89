package searxng

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iWorld-y/market_radar/pkg/retry"
	"github.com/iWorld-y/market_radar/pkg/search"
)

func testPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, Multiplier: 2.0}
}

func TestSearchMapsCategoriesAndTruncates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("format"); got != "json" {
			t.Errorf("format = %q, want json", got)
		}
		if got := r.URL.Query().Get("categories"); got != "news" {
			t.Errorf("categories = %q, want news for the news topic", got)
		}
		fmt.Fprint(w, `{"query":"q","results":[
			{"title":"a","url":"https://a","content":"ca"},
			{"title":"b","url":"https://b","content":"cb"},
			{"title":"c","url":"https://c","content":"cc"}
		]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5, testPolicy())
	resp, err := c.Search(context.Background(), &search.Request{Query: "q", Topic: "news", MaxResults: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("got %d results, want truncation to 2", len(resp.Results))
	}
	if resp.Results[0].URL != "https://a" {
		t.Errorf("first result = %+v", resp.Results[0])
	}
}

func TestSearchRetriesServerErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"query":"q","results":[{"title":"a","url":"https://a","content":"ca"}]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5, testPolicy())
	resp, err := c.Search(context.Background(), &search.Request{Query: "q", Topic: "general", MaxResults: 5})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("server hit %d times, want 2 (one retry after 502)", calls)
	}
	if len(resp.Results) != 1 {
		t.Errorf("got %d results", len(resp.Results))
	}
}
