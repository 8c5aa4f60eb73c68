package client

import (
	"context"
	"net/url"
	"strconv"

	"github.com/multiplica-sam/sam/internal/ui/types"
)

// DefaultLogLimit is used when ScrapingLogs is called without a positive limit
const DefaultLogLimit = 50

// ScrapingLogs returns the most recent scraping runs (GET /logs-scraping?limit=)
func (c *Client) ScrapingLogs(ctx context.Context, limit int) ([]types.ScrapingLogEntry, error) {
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	path := "/logs-scraping?" + q.Encode()

	var res types.ScrapingLogsResponse
	if err := c.get(ctx, path, &res); err != nil {
		return nil, err
	}
	if res.Failed() {
		return nil, c.fail(ctx, path, NewClientRejectedError(path, res.Error))
	}
	if res.Logs == nil {
		return []types.ScrapingLogEntry{}, nil
	}
	return res.Logs, nil
}

// GeneralStats returns the aggregate counters of the system (GET /estatisticas/geral).
// A response without the estatisticas object is returned as empty stats.
func (c *Client) GeneralStats(ctx context.Context) (*types.GeneralStats, error) {
	const path = "/estatisticas/geral"

	var res types.GeneralStatsResponse
	if err := c.get(ctx, path, &res); err != nil {
		return nil, err
	}
	if res.Failed() {
		return nil, c.fail(ctx, path, NewClientRejectedError(path, res.Error))
	}
	if res.Stats == nil {
		return &types.GeneralStats{}, nil
	}
	return res.Stats, nil
}

// Health probes the api (GET /health)
func (c *Client) Health(ctx context.Context) (*types.HealthResponse, error) {
	var res types.HealthResponse
	if err := c.get(ctx, "/health", &res); err != nil {
		return nil, err
	}
	return &res, nil
}
