// Package dashboard holds the state of one dashboard page load: the locality collection, the general statistics and the selected locality.
//
// A page is rebuilt from the api on every load (Bootstrap). Passive loading never fails: each step degrades to an empty or default value and logs the cause.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/multiplica-sam/sam/internal/logger"
	"github.com/multiplica-sam/sam/internal/ui/types"
)

// API is the part of the SAM api client used by the dashboard
type API interface {
	Health(ctx context.Context) (*types.HealthResponse, error)
	Localities(ctx context.Context) ([]types.Locality, error)
	GeneralStats(ctx context.Context) (*types.GeneralStats, error)
	Locality(ctx context.Context, churchID int) (*types.LocalityDetailResponse, error)
}

// Page is the state of one dashboard page load
type Page struct {
	APIOnline  bool                    `json:"api_online"`
	Localities []types.LocalityCard    `json:"localidades"`
	Stats      StatsDisplay            `json:"estatisticas"`
	Selected   *types.SelectedLocality `json:"localidade_selecionada,omitempty"`
	LoadedAt   time.Time               `json:"loaded_at"`
}

// Bootstrap loads a page: health probe, locality listing, statistics, in that order.
// Each call is awaited before the next one starts and a failure in one step does not stop the following steps.
func Bootstrap(ctx context.Context, api API) *Page {
	reqLogger := logger.ContextRequestLogger(ctx)

	page := &Page{
		Localities: []types.LocalityCard{},
		Stats:      NewStatsDisplay(nil),
		LoadedAt:   time.Now().UTC(),
	}

	if health, err := api.Health(ctx); err != nil {
		reqLogger.Warn("SAM api offline - showing default values", slog.String("error", err.Error()))
	} else {
		page.APIOnline = true
		reqLogger.Debug("SAM api connected", slog.String("status", health.Status), slog.String("service", health.Service))
	}

	page.Localities = LoadLocalities(ctx, api)
	page.Stats = LoadStats(ctx, api)

	return page
}

// LoadLocalities fetches the locality listing and maps it to cards. Failures yield an empty collection.
func LoadLocalities(ctx context.Context, api API) []types.LocalityCard {
	reqLogger := logger.ContextRequestLogger(ctx)

	rows, err := api.Localities(ctx)
	if err != nil {
		reqLogger.Error("failed to load localities", slog.String("error", err.Error()))
		return []types.LocalityCard{}
	}

	cards := types.NewLocalityCards(rows)
	reqLogger.Debug("localities loaded", slog.Int("count", len(cards)))
	return cards
}

// LoadStats fetches the general statistics. Failures yield the default display values.
func LoadStats(ctx context.Context, api API) StatsDisplay {
	stats, err := api.GeneralStats(ctx)
	if err != nil {
		logger.ContextRequestLogger(ctx).Error("failed to update general statistics", slog.String("error", err.Error()))
		return NewStatsDisplay(nil)
	}
	return NewStatsDisplay(stats)
}

// Select makes the card at index the selected locality.
//
// The detail is fetched from the api and merged over the card. When the detail cannot be fetched the plain card is selected.
// The only error is an index outside the collection.
func (p *Page) Select(ctx context.Context, api API, index int) (*types.SelectedLocality, error) {
	if index < 0 || index >= len(p.Localities) {
		return nil, fmt.Errorf("locality index %d out of range (0-%d)", index, len(p.Localities)-1)
	}
	reqLogger := logger.ContextRequestLogger(ctx)
	card := p.Localities[index]

	reqLogger.Debug("fetching locality detail", slog.String("locality", card.FullName), slog.Int("id_igreja", card.ChurchID))

	detail, err := api.Locality(ctx, card.ChurchID)
	if err != nil {
		reqLogger.Warn("failed to load locality detail - using summary data",
			slog.Int("id_igreja", card.ChurchID),
			slog.String("error", err.Error()),
		)
		sel := types.NewSelection(index, card)
		p.Selected = &sel
		return p.Selected, nil
	}

	sel, err := types.MergeDetail(index, card, detail)
	if err != nil {
		reqLogger.Warn("locality detail not usable - using summary data",
			slog.Int("id_igreja", card.ChurchID),
			slog.String("error", err.Error()),
		)
	} else {
		reqLogger.Debug("locality detail loaded", slog.Int("count_alunos", detail.StudentCount))
	}
	p.Selected = &sel
	return p.Selected, nil
}

// Clone returns a copy of the page that can be changed without affecting p.
// Cards and the selection are values that are only ever replaced, so copying the slice and the selection is enough.
func (p *Page) Clone() *Page {
	c := *p
	c.Localities = append([]types.LocalityCard(nil), p.Localities...)
	if p.Selected != nil {
		sel := *p.Selected
		c.Selected = &sel
	}
	return &c
}

// Card returns the card at index
func (p *Page) Card(index int) (types.LocalityCard, bool) {
	if index < 0 || index >= len(p.Localities) {
		return types.LocalityCard{}, false
	}
	return p.Localities[index], true
}
