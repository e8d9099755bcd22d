package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"quiz-app-service/internal/domain"
)

const (
	defaultNewsBaseURL = "https://newsapi.org/v2"
	headlinesPageSize  = 10
)

// NewsAPIClient fetches top headlines from newsapi.org.
type NewsAPIClient struct {
	baseURL string
	apiKey  string
	country string
	http    *http.Client
}

func NewNewsAPIClient(apiKey, country string) *NewsAPIClient {
	return NewNewsAPIClientWithBaseURL(defaultNewsBaseURL, apiKey, country)
}

func NewNewsAPIClientWithBaseURL(baseURL, apiKey, country string) *NewsAPIClient {
	if country == "" {
		country = "us"
	}
	return &NewsAPIClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		country: country,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type headlinesResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		Content     string    `json:"content"`
		URL         string    `json:"url"`
		PublishedAt time.Time `json:"publishedAt"`
	} `json:"articles"`
}

func (c *NewsAPIClient) TopHeadlines(ctx context.Context) ([]domain.Article, error) {
	q := url.Values{}
	q.Set("country", c.country)
	q.Set("pageSize", strconv.Itoa(headlinesPageSize))
	q.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/top-headlines?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build headlines request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch headlines: %w", err)
	}
	defer resp.Body.Close()

	var body headlinesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode headlines (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || body.Status != "ok" {
		return nil, fmt.Errorf("news api status %d: %s %s", resp.StatusCode, body.Code, body.Message)
	}

	articles := make([]domain.Article, 0, len(body.Articles))
	for _, a := range body.Articles {
		articles = append(articles, domain.Article{
			Title:       a.Title,
			Description: a.Description,
			Content:     a.Content,
			URL:         a.URL,
			PublishedAt: a.PublishedAt,
			Source:      a.Source.Name,
		})
	}
	return articles, nil
}
