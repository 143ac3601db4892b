package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/better-bets/internal/models"
	"github.com/yourusername/better-bets/internal/provider"
	"github.com/yourusername/better-bets/internal/scanner"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchOdds(ctx context.Context, req provider.Request) (*provider.FetchResult, error) {
	args := m.Called(ctx, req)
	result, _ := args.Get(0).(*provider.FetchResult)
	return result, args.Error(1)
}

func price(v float64) *float64 { return &v }

func arbBatch() []models.Event {
	return []models.Event{{
		ID:           "evt1",
		SportTitle:   "NBA",
		CommenceTime: time.Date(2026, time.October, 18, 17, 30, 0, 0, time.UTC),
		HomeTeam:     "Home",
		AwayTeam:     "Away",
		Bookmakers: []models.Bookmaker{
			{Key: "fanduel", Title: "FanDuel", Markets: []models.Market{{Key: "h2h", Outcomes: []models.Outcome{
				{Name: "Home", Price: price(150)}, {Name: "Away", Price: price(-200)},
			}}}},
			{Key: "draftkings", Title: "DraftKings", Markets: []models.Market{{Key: "h2h", Outcomes: []models.Outcome{
				{Name: "Home", Price: price(-200)}, {Name: "Away", Price: price(150)},
			}}}},
		},
	}}
}

func TestScanRunsBothScannersOnOneFetch(t *testing.T) {
	fetcher := &mockFetcher{}
	fetcher.On("FetchOdds", mock.Anything, provider.Request{
		Sport:      "basketball_nba",
		OddsFormat: provider.OddsFormatAmerican,
	}).Return(&provider.FetchResult{Events: arbBatch(), Cached: true}, nil).Once()

	svc := NewScanService(fetcher, nil, nil, nil)
	result, err := svc.Scan(context.Background(), ScanRequest{Sport: "basketball_nba", MinEdgePercent: 5, Stake: 100})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, result.ScanID)
	assert.True(t, result.Cached)
	assert.Equal(t, 1, result.Events)

	require.Len(t, result.EV, 2)
	assert.InDelta(t, 25.0, result.EV[0].EVPercent, 1e-9)

	require.Len(t, result.Arbs, 1)
	assert.InDelta(t, 25.0, result.Arbs[0].ROI, 1e-9)
	assert.Equal(t, 50.0, result.Arbs[0].Stakes[0].Stake)

	fetcher.AssertExpectations(t)
}

func TestScanClampsMinEdge(t *testing.T) {
	fetcher := &mockFetcher{}
	fetcher.On("FetchOdds", mock.Anything, mock.Anything).Return(&provider.FetchResult{Events: arbBatch()}, nil)

	svc := NewScanService(fetcher, nil, nil, nil)

	// 500 clamps to 100, which the +25% edges cannot meet
	result, err := svc.Scan(context.Background(), ScanRequest{Sport: "basketball_nba", MinEdgePercent: 500})
	require.NoError(t, err)
	assert.Empty(t, result.EV)

	// -500 clamps to -10, which still drops the -25% sides
	result, err = svc.Scan(context.Background(), ScanRequest{Sport: "basketball_nba", MinEdgePercent: -500})
	require.NoError(t, err)
	assert.Len(t, result.EV, 2)
}

func TestScanFiltersByBucket(t *testing.T) {
	fetcher := &mockFetcher{}
	fetcher.On("FetchOdds", mock.Anything, mock.Anything).Return(&provider.FetchResult{Events: arbBatch()}, nil)

	svc := NewScanService(fetcher, nil, nil, nil)
	result, err := svc.Scan(context.Background(), ScanRequest{Sport: "basketball_nba", MarketType: scanner.BucketProps})
	require.NoError(t, err)
	assert.Empty(t, result.EV)
	// arbitrage always looks at h2h regardless of the edge bucket
	assert.Len(t, result.Arbs, 1)
}

func TestScanPropagatesProviderErrors(t *testing.T) {
	fetcher := &mockFetcher{}
	fetcher.On("FetchOdds", mock.Anything, mock.Anything).Return(nil, provider.NewStatusError(503, "down"))

	svc := NewScanService(fetcher, nil, nil, nil)
	_, err := svc.Scan(context.Background(), ScanRequest{Sport: "basketball_nba"})
	assert.ErrorIs(t, err, provider.ErrUpstream)
}

func TestScanRejectsInvalidBatch(t *testing.T) {
	fetcher := &mockFetcher{}
	fetcher.On("FetchOdds", mock.Anything, mock.Anything).Return(&provider.FetchResult{Events: []models.Event{{}}}, nil)

	svc := NewScanService(fetcher, nil, nil, nil)
	_, err := svc.Scan(context.Background(), ScanRequest{Sport: "basketball_nba"})
	assert.ErrorIs(t, err, models.ErrInvalidBatch)
}

func TestOddsReturnsRawPayload(t *testing.T) {
	raw := json.RawMessage(`[{"id":"evt1"}]`)
	req := provider.Request{Sport: "soccer_epl", OddsFormat: provider.OddsFormatDecimal}

	fetcher := &mockFetcher{}
	fetcher.On("FetchOdds", mock.Anything, req).Return(&provider.FetchResult{Raw: raw}, nil)

	svc := NewScanService(fetcher, nil, nil, nil)
	got, err := svc.Odds(context.Background(), req)
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(got))
}
