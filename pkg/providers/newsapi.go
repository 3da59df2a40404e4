package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/Adda-Baaj/stock-alerts/internal/domain"
)

const (
	newsAPIProviderID = "newsapi"

	// NewsAPIBaseURL is the public "everything" endpoint.
	NewsAPIBaseURL = "https://newsapi.org/v2/everything"

	// MaxArticles caps how many articles are kept per query.
	MaxArticles = 3
)

// newsAPIFetcher searches NewsAPI for English articles sorted by popularity.
type newsAPIFetcher struct {
	client HTTPClient
	cfg    Provider
}

// NewNewsAPIFetcher builds a NewsFetcher for NewsAPI.
func NewNewsAPIFetcher(client HTTPClient, cfg Provider) NewsFetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = NewsAPIBaseURL
	}
	if cfg.ID == "" {
		cfg.ID = newsAPIProviderID
	}
	return &newsAPIFetcher{client: client, cfg: cfg}
}

func (f *newsAPIFetcher) ID() string {
	return f.cfg.ID
}

type newsAPIResponse struct {
	Status   string           `json:"status"`
	Code     string           `json:"code"`
	Message  string           `json:"message"`
	Articles []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// TopArticles returns at most MaxArticles articles in provider order. No results is not an error.
func (f *newsAPIFetcher) TopArticles(ctx context.Context, query string) ([]domain.Article, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, providerError(f.cfg.ID, query, 0, errors.New("query is empty"))
	}

	params := url.Values{}
	params.Set("apiKey", f.cfg.APIKey)
	params.Set("q", query)
	params.Set("language", "en")
	params.Set("sortBy", "popularity")

	resp, err := f.client.Get(ctx, f.cfg.BaseURL, params, Headers(f.cfg))
	if err != nil {
		return nil, providerError(f.cfg.ID, query, 0, err)
	}

	var body newsAPIResponse
	decodeErr := json.Unmarshal(resp.Body(), &body)

	if !resp.IsSuccess() {
		msg := responseSnippet(resp.Body())
		if decodeErr == nil {
			msg = firstNonEmpty(body.Message, body.Code, msg)
		}
		return nil, providerError(f.cfg.ID, query, resp.StatusCode(), errors.New(msg))
	}
	if decodeErr != nil {
		return nil, providerError(f.cfg.ID, query, resp.StatusCode(), fmt.Errorf("decode articles: %w", decodeErr))
	}
	if strings.EqualFold(body.Status, "error") {
		return nil, providerError(f.cfg.ID, query, resp.StatusCode(), errors.New(firstNonEmpty(body.Message, body.Code, "provider reported an error")))
	}

	return buildArticles(body.Articles), nil
}

// buildArticles keeps the first MaxArticles entries. Headlines are passed through as sent; descriptions lose HTML markup.
func buildArticles(raw []newsAPIArticle) []domain.Article {
	if len(raw) > MaxArticles {
		raw = raw[:MaxArticles]
	}

	articles := make([]domain.Article, 0, len(raw))
	for _, item := range raw {
		art := domain.Article{
			SourceName: strings.TrimSpace(item.Source.Name),
			Headline:   strings.TrimSpace(item.Title),
		}
		if item.Description != nil {
			body := plainText(*item.Description)
			art.Body = &body
		}
		articles = append(articles, art)
	}
	return articles
}
