// Package reliefweb fetches Haiti content from the ReliefWeb v1 API.
package reliefweb

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/haiti-crisis-monitor/internal/domain"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/observability"
	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is the public ReliefWeb v1 endpoint.
const DefaultBaseURL = "https://api.reliefweb.int/v1"

// Client implements pipeline.Fetcher.
type Client struct {
	http    *resty.Client
	appName string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewClient creates a ReliefWeb client. appName is sent as the required
// "appname" parameter on every request.
func NewClient(baseURL, appName string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Client{
		http:    rc,
		appName: appName,
		logger:  logger,
		metrics: metrics,
	}
}

// Fetch returns up to limit documents of one content type, newest first.
// Entries that cannot be decoded are skipped.
func (c *Client) Fetch(ctx context.Context, contentType string, limit int) ([]domain.RawDocument, error) {
	var body response
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(QueryParams(contentType, c.appName, limit)).
		ForceContentType("application/json").
		SetResult(&body).
		Get("/" + contentType)
	if err != nil {
		c.metrics.FetchErrors.WithLabelValues(contentType).Inc()
		return nil, fmt.Errorf("fetch %s: %w", contentType, err)
	}
	if resp.IsError() {
		c.metrics.FetchErrors.WithLabelValues(contentType).Inc()
		return nil, fmt.Errorf("fetch %s: reliefweb API error: status %d: %s", contentType, resp.StatusCode(), resp.Body())
	}

	docs := make([]domain.RawDocument, 0, len(body.Data))
	for i, raw := range body.Data {
		doc, err := decodeItem(raw, contentType)
		if err != nil {
			c.logger.Warn("skipping invalid reliefweb entry",
				"content_type", contentType,
				"index", i,
				"error", err,
			)
			continue
		}
		docs = append(docs, doc)
	}

	c.metrics.DocumentsFetched.WithLabelValues(contentType).Add(float64(len(docs)))
	c.logger.Info("fetched reliefweb content", "content_type", contentType, "count", len(docs))
	return docs, nil
}

// QueryParams builds the per-content-type request parameters.
func QueryParams(contentType, appName string, limit int) url.Values {
	params := url.Values{
		"appname": {appName},
		"limit":   {strconv.Itoa(limit)},
		"sort[]":  {"date:desc"},
	}

	switch contentType {
	case "reports":
		params.Set("filter[field]", "country")
		params.Set("filter[value]", "Haiti")
		params["fields[include][]"] = []string{
			"id", "title", "body", "url_alias", "date.created", "date.original",
			"source.name", "theme.name", "format.name", "language.name",
		}
	case "blog":
		params.Set("filter[field]", "theme")
		params.Set("filter[value]", "Haiti")
		params["fields[include][]"] = []string{
			"id", "title", "body", "url_alias", "date.created", "source.name", "theme.name",
		}
	case "references":
		params.Set("query[value]", "Haiti")
		params["fields[include][]"] = []string{
			"id", "title", "body", "url_alias", "date.created", "source.name", "theme.name",
		}
	case "disasters":
		params.Set("query[value]", "Haiti")
		params["fields[include][]"] = []string{
			"id", "name", "description", "url_alias", "date.created",
		}
	default:
		params.Set("query[value]", "Haiti")
		params["fields[include][]"] = []string{"id", "title", "body", "date.created"}
	}
	return params
}
