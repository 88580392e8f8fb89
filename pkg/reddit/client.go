package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iWorld-y/market_radar/pkg/model"
	"github.com/iWorld-y/market_radar/pkg/retry"
)

const (
	defaultAuthURL = "https://www.reddit.com/api/v1/access_token"
	defaultAPIURL  = "https://oauth.reddit.com"

	// tokenSafetyMargin 在过期前提前刷新，避免边界上的 401
	tokenSafetyMargin = 60 * time.Second
)

// Client Reddit API 客户端，持有进程内唯一的 token 缓存
type Client struct {
	clientID     string
	clientSecret string
	userAgent    string
	policy       retry.Policy
	httpClient   *http.Client

	authURL string
	apiURL  string

	accessToken string
	tokenExpiry time.Time
}

// NewClient 创建一个新的 Reddit 客户端
func NewClient(clientID, clientSecret, userAgent string, policy retry.Policy) *Client {
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		userAgent:    userAgent,
		policy:       policy,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		authURL:      defaultAuthURL,
		apiURL:       defaultAPIURL,
	}
}

// tokenResponse OAuth2 token 端点的响应
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// ensureValidToken 缓存的 token 缺失或临期时用 client_credentials 重新获取
func (c *Client) ensureValidToken(ctx context.Context) error {
	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-tokenSafetyMargin)) {
		return nil
	}

	data := url.Values{}
	data.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, "POST", c.authURL, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("create token request failed: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return &retry.SourceError{Provider: "reddit", Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		return &retry.SourceError{
			Provider:   "reddit",
			StatusCode: res.StatusCode,
			Err:        fmt.Errorf("reddit token request failed: %s", string(body)),
		}
	}

	var tok tokenResponse
	if err := json.NewDecoder(res.Body).Decode(&tok); err != nil {
		return fmt.Errorf("decode token response failed: %w", err)
	}
	if tok.AccessToken == "" {
		return &retry.SourceError{
			Provider: "reddit",
			Err:      fmt.Errorf("reddit token response contained no access_token"),
		}
	}

	c.accessToken = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return nil
}

// listing Reddit 搜索接口返回的 listing 结构
type listing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title       string  `json:"title"`
				SelfText    string  `json:"selftext"`
				Permalink   string  `json:"permalink"`
				URL         string  `json:"url"`
				Subreddit   string  `json:"subreddit"`
				Score       int     `json:"score"`
				NumComments int     `json:"num_comments"`
				CreatedUTC  float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Search 搜索最近 30 天的相关帖子，可选限定社区，失败按策略重试
func (c *Client) Search(ctx context.Context, query string, limit int, subreddit string) ([]model.ForumPost, error) {
	var posts []model.ForumPost

	err := retry.Do(ctx, c.policy, func(ctx context.Context) error {
		if err := c.ensureValidToken(ctx); err != nil {
			return err
		}

		endpoint := c.apiURL + "/search"
		if subreddit != "" {
			endpoint = fmt.Sprintf("%s/r/%s/search", c.apiURL, subreddit)
		}

		u, err := url.Parse(endpoint)
		if err != nil {
			return fmt.Errorf("invalid search endpoint: %w", err)
		}

		q := u.Query()
		q.Set("q", query)
		q.Set("limit", fmt.Sprintf("%d", limit))
		q.Set("sort", "relevance")
		q.Set("t", "month") // 只看最近一段时间的讨论
		if subreddit != "" {
			q.Set("restrict_sr", "true")
		}
		u.RawQuery = q.Encode()

		req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
		if err != nil {
			return fmt.Errorf("create search request failed: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
		req.Header.Set("User-Agent", c.userAgent)

		res, err := c.httpClient.Do(req)
		if err != nil {
			return &retry.SourceError{Provider: "reddit", Err: err}
		}
		defer res.Body.Close()

		if res.StatusCode != http.StatusOK {
			// 401 可能是 token 失效，清空缓存后由下一次重试重新认证
			if res.StatusCode == http.StatusUnauthorized {
				c.accessToken = ""
			}
			body, _ := io.ReadAll(res.Body)
			return &retry.SourceError{
				Provider:   "reddit",
				StatusCode: res.StatusCode,
				Err:        fmt.Errorf("reddit search failed: %s", string(body)),
			}
		}

		var lst listing
		if err := json.NewDecoder(res.Body).Decode(&lst); err != nil {
			return fmt.Errorf("decode listing failed: %w", err)
		}

		posts = posts[:0]
		for _, child := range lst.Data.Children {
			d := child.Data
			postURL := d.URL
			if d.Permalink != "" {
				postURL = "https://www.reddit.com" + d.Permalink
			}
			posts = append(posts, model.ForumPost{
				Title:     d.Title,
				Body:      d.SelfText,
				URL:       postURL,
				Subreddit: d.Subreddit,
				Score:     d.Score,
				Comments:  d.NumComments,
				CreatedAt: int64(d.CreatedUTC),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return posts, nil
}
