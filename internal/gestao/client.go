package gestao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gestao-report/internal/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// noDataSentinel is the upstream's way of saying a resource has no records.
// It arrives as a string payload where a list is normally expected.
const noDataSentinel = "Não há dados!"

var (
	errNoData      = errors.New("no data available")
	errSoftPayload = errors.New("string payload where record list expected")
)

type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("gestao api error: %s", e.Status)
	}
	return fmt.Sprintf("gestao api error: %s: %s", e.Status, e.Body)
}

// Client drains paginated resources from the commerce-management API. Pages
// are fetched strictly one at a time with a fixed pause in between, to stay
// under the upstream rate limit.
type Client struct {
	http       *resty.Client
	logger     *zap.Logger
	maxRetries int
	retryDelay time.Duration
	pageDelay  time.Duration
}

func NewClient(cfg config.Config, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.APIBaseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("access-token", cfg.APIToken).
		SetHeader("secret-access-token", cfg.SecretAPIToken).
		SetTimeout(cfg.Timeout)

	return &Client{
		http:       httpClient,
		logger:     logger.Named("gestao"),
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		pageDelay:  cfg.PageDelay,
	}
}

// FetchAll drains one resource starting at path, following meta.proxima_url
// until it is absent. It never fails: a page that exhausts its retry budget
// degrades to an empty page and whatever was accumulated so far is returned.
func FetchAll[T any](ctx context.Context, c *Client, path string) []T {
	var all []T
	pages := 0

	url := path
	for url != "" {
		if pages > 0 && !sleep(ctx, c.pageDelay) {
			break
		}

		raw, next := c.fetchPage(ctx, url)
		pages++

		var records []T
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &records); err != nil {
				c.logger.Warn("discarding undecodable page",
					zap.String("url", url),
					zap.Error(err),
				)
			}
		}
		all = append(all, records...)
		c.logger.Debug("page loaded",
			zap.String("url", url),
			zap.Int("records", len(records)),
		)

		url = next
	}

	c.logger.Info("resource drained",
		zap.String("path", path),
		zap.Int("pages", pages),
		zap.Int("records", len(all)),
	)
	return all
}

// fetchPage retrieves one page within the retry budget. It never reports an
// error upward: exhaustion and the no-data sentinel both yield an empty page
// with no successor.
func (c *Client) fetchPage(ctx context.Context, url string) (json.RawMessage, string) {
	for attempt := 0; ; attempt++ {
		raw, next, err := c.getPage(ctx, url)
		if err == nil {
			return raw, next
		}
		if errors.Is(err, errNoData) {
			c.logger.Info("no data available", zap.String("url", url))
			return nil, ""
		}
		if attempt >= c.maxRetries {
			c.logger.Error("retry budget exhausted, continuing with empty page",
				zap.String("url", url),
				zap.Error(err),
			)
			return nil, ""
		}
		c.logger.Warn("page fetch failed, retrying",
			zap.String("url", url),
			zap.Int("remaining", c.maxRetries-attempt),
			zap.Duration("delay", c.retryDelay),
			zap.Error(err),
		)
		if !sleep(ctx, c.retryDelay) {
			return nil, ""
		}
	}
}

func (c *Client) getPage(ctx context.Context, url string) (json.RawMessage, string, error) {
	var env pageEnvelope
	resp, err := c.http.R().SetContext(ctx).SetResult(&env).Get(url)
	if err != nil {
		return nil, "", fmt.Errorf("request %s: %w", url, err)
	}
	if resp.IsError() {
		return nil, "", &APIError{
			StatusCode: resp.StatusCode(),
			Status:     resp.Status(),
			Body:       resp.String(),
		}
	}

	if len(env.Data) == 0 {
		return nil, "", errSoftPayload
	}
	if env.Data[0] == '"' {
		var msg string
		if err := json.Unmarshal(env.Data, &msg); err == nil && msg == noDataSentinel {
			return nil, "", errNoData
		}
		return nil, "", fmt.Errorf("%w: %s", errSoftPayload, env.Data)
	}
	if env.Data[0] != '[' {
		return nil, "", errSoftPayload
	}

	return env.Data, env.Meta.NextPageURL, nil
}

// sleep waits for d unless the context ends first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
