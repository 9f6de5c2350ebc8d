package qiita

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/article-eval/backend/internal/metrics"
	"github.com/article-eval/backend/internal/storage/models"
	"github.com/article-eval/backend/pkg/logger"
)

// ErrArticleNotFound is returned for every fetch that does not end in a 200
// with a decodable item, including transport failures.
var ErrArticleNotFound = errors.New("qiita article not found")

const DefaultBaseURL = "https://qiita.com"

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchArticle retrieves /api/v2/items/{id}. It does not retry.
func (c *Client) FetchArticle(ctx context.Context, id string) (*models.Article, error) {
	endpoint := fmt.Sprintf("%s/api/v2/items/%s", c.baseURL, url.PathEscape(id))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build request: %v", ErrArticleNotFound, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ArticleFetchTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: request failed: %v", ErrArticleNotFound, err)
	}
	defer resp.Body.Close()

	logger.Debug("Qiita API response", zap.String("article_id", id), zap.Int("status", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		metrics.ArticleFetchTotal.WithLabelValues(fmt.Sprintf("%d", resp.StatusCode)).Inc()
		return nil, fmt.Errorf("%w: status %d", ErrArticleNotFound, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ArticleFetchTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrArticleNotFound, err)
	}

	var article models.Article
	if err := json.Unmarshal(body, &article); err != nil {
		metrics.ArticleFetchTotal.WithLabelValues("malformed").Inc()
		return nil, fmt.Errorf("%w: failed to decode item: %v", ErrArticleNotFound, err)
	}

	if article.ID == "" {
		article.ID = id
	}
	article.Outline = Outline(article.RenderedBody)

	metrics.ArticleFetchTotal.WithLabelValues("200").Inc()
	logger.Info("Qiita article fetched",
		zap.String("article_id", article.ID),
		zap.Int("body_length", len([]rune(article.Body))),
		zap.Int("tags", len(article.Tags)),
	)

	return &article, nil
}
