package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/multiplica-sam/sam/internal/ui/types"
)

type fakeAPI struct {
	healthErr     error
	localities    []types.Locality
	localitiesErr error
	stats         *types.GeneralStats
	statsErr      error
	detail        *types.LocalityDetailResponse
	detailErr     error

	calls []string
}

func (f *fakeAPI) Health(ctx context.Context) (*types.HealthResponse, error) {
	f.calls = append(f.calls, "health")
	if f.healthErr != nil {
		return nil, f.healthErr
	}
	return &types.HealthResponse{Status: "ok"}, nil
}

func (f *fakeAPI) Localities(ctx context.Context) ([]types.Locality, error) {
	f.calls = append(f.calls, "localities")
	return f.localities, f.localitiesErr
}

func (f *fakeAPI) GeneralStats(ctx context.Context) (*types.GeneralStats, error) {
	f.calls = append(f.calls, "stats")
	return f.stats, f.statsErr
}

func (f *fakeAPI) Locality(ctx context.Context, churchID int) (*types.LocalityDetailResponse, error) {
	f.calls = append(f.calls, "locality")
	return f.detail, f.detailErr
}

func intPtr(v int) *int { return &v }

func sampleLocalities() []types.Locality {
	return []types.Locality{
		{ChurchID: 1, Name: "Vila Progresso", Code: "BR-22-0101", Sector: "1", City: "Jundiaí", TotalStudents: 10, TotalMTS: 2, TotalMSA: 3, AverageScore: 7.5},
		{ChurchID: 2, Name: "Jardim Santa Gertrudes Norte", Code: "BR-22-0102", TotalStudents: 20},
		{ChurchID: 3, Name: "Centro", Code: "BR-22-0103"},
	}
}

func TestBootstrapPopulatesCards(t *testing.T) {
	api := &fakeAPI{
		localities: sampleLocalities(),
		stats:      &types.GeneralStats{TotalLocalities: intPtr(3), TotalStudents: intPtr(30), TotalExams: intPtr(12)},
	}

	page := Bootstrap(context.Background(), api)

	assert.Equal(t, []string{"health", "localities", "stats"}, api.calls)
	assert.True(t, page.APIOnline)
	require.Len(t, page.Localities, 3)
	assert.Equal(t, "Jardim Santa Gertr...", page.Localities[1].ShortName)
	assert.Equal(t, "Jardim Santa Gertrudes Norte", page.Localities[1].FullName)
	assert.Equal(t, StatsDisplay{Localities: "3", Enrolled: "30", Lessons: "12/235"}, page.Stats)
	assert.Nil(t, page.Selected)
}

func TestBootstrapDegrades(t *testing.T) {
	api := &fakeAPI{
		healthErr:     errors.New("connection refused"),
		localitiesErr: errors.New("HTTP 500"),
		statsErr:      errors.New("HTTP 500"),
	}

	var page *Page
	require.NotPanics(t, func() {
		page = Bootstrap(context.Background(), api)
	})

	// every step still ran
	assert.Equal(t, []string{"health", "localities", "stats"}, api.calls)
	assert.False(t, page.APIOnline)
	assert.NotNil(t, page.Localities)
	assert.Empty(t, page.Localities)
	assert.Equal(t, StatsDisplay{Localities: "87", Enrolled: "478", Lessons: "87/235"}, page.Stats)
}

func TestBootstrapHealthFailureDoesNotStopLoading(t *testing.T) {
	api := &fakeAPI{
		healthErr:  errors.New("timeout"),
		localities: sampleLocalities(),
		stats:      &types.GeneralStats{},
	}

	page := Bootstrap(context.Background(), api)
	assert.False(t, page.APIOnline)
	assert.Len(t, page.Localities, 3)
}

func TestNewStatsDisplayFallbacks(t *testing.T) {
	tests := []struct {
		name  string
		stats *types.GeneralStats
		want  StatsDisplay
	}{
		{
			name:  "nil stats",
			stats: nil,
			want:  StatsDisplay{Localities: "87", Enrolled: "478", Lessons: "87/235"},
		},
		{
			name:  "all fields omitted",
			stats: &types.GeneralStats{},
			want:  StatsDisplay{Localities: "87", Enrolled: "478", Lessons: "87/235"},
		},
		{
			name:  "zero counts use fallback",
			stats: &types.GeneralStats{TotalLocalities: intPtr(0), TotalStudents: intPtr(0), TotalExams: intPtr(0)},
			want:  StatsDisplay{Localities: "87", Enrolled: "478", Lessons: "87/235"},
		},
		{
			name:  "partial",
			stats: &types.GeneralStats{TotalStudents: intPtr(512)},
			want:  StatsDisplay{Localities: "87", Enrolled: "512", Lessons: "87/235"},
		},
		{
			name:  "complete",
			stats: &types.GeneralStats{TotalLocalities: intPtr(90), TotalStudents: intPtr(600), TotalExams: intPtr(140)},
			want:  StatsDisplay{Localities: "90", Enrolled: "600", Lessons: "140/235"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewStatsDisplay(tt.stats))
		})
	}
}

func TestSelectMergesDetail(t *testing.T) {
	api := &fakeAPI{localities: sampleLocalities(), stats: &types.GeneralStats{}}
	page := Bootstrap(context.Background(), api)

	api.detail = &types.LocalityDetailResponse{
		Envelope:     types.Envelope{Success: true},
		Locality:     json.RawMessage(`{"id_igreja":1,"nome_localidade":"Vila Progresso (detalhe)","total_alunos":12,"alunos_ativos":9,"cidade":"Itupeva"}`),
		Students:     []types.Student{{ID: 100, Name: "Ana"}},
		Statistics:   map[string]any{"total_provas": 4.0},
		StudentCount: 1,
	}

	sel, err := page.Select(context.Background(), api, 0)
	require.NoError(t, err)
	require.Same(t, page.Selected, sel)

	// detail fields win
	assert.Equal(t, 12, sel.TotalStudents)
	assert.Equal(t, 9, sel.ActiveStudents)
	assert.Equal(t, "Itupeva", sel.City)

	// summary-only fields survive
	assert.Equal(t, "Vila Progresso", sel.FullName)
	assert.Equal(t, "BR-22-0101", sel.Code)
	assert.Equal(t, "1", sel.Sector)
	assert.Equal(t, 2, sel.TotalMTS)
	assert.Equal(t, 3, sel.TotalMSA)
	assert.InDelta(t, 7.5, sel.AverageScore, 0.0001)
	assert.Equal(t, "br-22-0101", sel.Image)

	assert.True(t, sel.Detailed)
	assert.Len(t, sel.Students, 1)
	assert.Equal(t, 4.0, sel.Statistics["total_provas"])
	assert.Contains(t, sel.Detail, "nome_localidade")
}

func TestSelectFallsBackToCard(t *testing.T) {
	api := &fakeAPI{localities: sampleLocalities(), stats: &types.GeneralStats{}}
	page := Bootstrap(context.Background(), api)

	api.detailErr = errors.New("HTTP 500")
	sel, err := page.Select(context.Background(), api, 1)
	require.NoError(t, err)

	assert.False(t, sel.Detailed)
	assert.Equal(t, page.Localities[1], sel.LocalityCard)
	assert.Empty(t, sel.Students)
	assert.Equal(t, 1, sel.Index)
}

func TestSelectReplacesPreviousSelection(t *testing.T) {
	api := &fakeAPI{localities: sampleLocalities(), stats: &types.GeneralStats{}, detailErr: errors.New("offline")}
	page := Bootstrap(context.Background(), api)

	_, err := page.Select(context.Background(), api, 0)
	require.NoError(t, err)
	_, err = page.Select(context.Background(), api, 2)
	require.NoError(t, err)

	assert.Equal(t, "Centro", page.Selected.FullName)
}

func TestSelectOutOfRange(t *testing.T) {
	page := Bootstrap(context.Background(), &fakeAPI{localitiesErr: errors.New("down")})

	_, err := page.Select(context.Background(), &fakeAPI{}, 0)
	assert.Error(t, err)
	assert.Nil(t, page.Selected)
}
