package client

import (
	"context"
	"fmt"

	"github.com/multiplica-sam/sam/internal/ui/types"
)

// Localities returns every locality with its statistics (GET /localidades)
func (c *Client) Localities(ctx context.Context) ([]types.Locality, error) {
	const path = "/localidades"

	var res types.LocalitiesResponse
	if err := c.get(ctx, path, &res); err != nil {
		return nil, err
	}
	if res.Failed() {
		return nil, c.fail(ctx, path, NewClientRejectedError(path, res.Error))
	}
	if res.Data == nil {
		return []types.Locality{}, nil
	}
	return res.Data, nil
}

// Locality returns the detail of one locality: the summary row, its students and consolidated statistics (GET /localidade/{id})
func (c *Client) Locality(ctx context.Context, churchID int) (*types.LocalityDetailResponse, error) {
	path := fmt.Sprintf("/localidade/%d", churchID)

	var res types.LocalityDetailResponse
	if err := c.get(ctx, path, &res); err != nil {
		return nil, err
	}
	if res.Failed() {
		return nil, c.fail(ctx, path, NewClientRejectedError(path, res.Error))
	}
	return &res, nil
}
