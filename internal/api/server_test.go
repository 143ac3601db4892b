package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/better-bets/internal/health"
	"github.com/yourusername/better-bets/internal/models"
	"github.com/yourusername/better-bets/internal/provider"
	"github.com/yourusername/better-bets/internal/scanner"
	"github.com/yourusername/better-bets/internal/service"
)

type mockScanner struct {
	mock.Mock
}

func (m *mockScanner) Scan(ctx context.Context, req service.ScanRequest) (*service.ScanResult, error) {
	args := m.Called(ctx, req)
	result, _ := args.Get(0).(*service.ScanResult)
	return result, args.Error(1)
}

func (m *mockScanner) Odds(ctx context.Context, req provider.Request) (json.RawMessage, error) {
	args := m.Called(ctx, req)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

const testKey = "secret-key"

func newTestServer(t *testing.T, cfg Config, sc Scanner) *Server {
	t.Helper()
	log, _ := test.NewNullLogger()
	return NewServer(cfg, sc, nil, log)
}

func get(t *testing.T, h http.Handler, target string, key string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if key != "" {
		req.Header.Set(APIKeyHeader, key)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAPIHealthRequiresKey(t *testing.T) {
	srv := newTestServer(t, Config{APIKey: testKey}, &mockScanner{})

	rec := get(t, srv.Handler(), "/api/health", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decodeError(t, rec)["error"])

	rec = get(t, srv.Handler(), "/api/health", "wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = get(t, srv.Handler(), "/api/health", testKey)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuthDisabledWithoutKeyInDevelopment(t *testing.T) {
	log, hook := test.NewNullLogger()
	srv := NewServer(Config{}, &mockScanner{}, nil, log)

	for i := 0; i < 3; i++ {
		rec := get(t, srv.Handler(), "/api/health", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	warnings := 0
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warnings++
		}
	}
	assert.Equal(t, 1, warnings)
}

func TestMissingKeyInProductionIsMisconfiguration(t *testing.T) {
	srv := newTestServer(t, Config{Production: true}, &mockScanner{})

	rec := get(t, srv.Handler(), "/api/health", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "server misconfiguration", decodeError(t, rec)["error"])
}

func TestAuthExemptPaths(t *testing.T) {
	for _, p := range []string{"/api", "/api/", "/api/assets/app.js", "/api/favicon.ico"} {
		assert.True(t, authExempt(p), p)
	}
	for _, p := range []string{"/api/health", "/api/scan", "/api/odds"} {
		assert.False(t, authExempt(p), p)
	}
}

func TestScanEndpoint(t *testing.T) {
	sc := &mockScanner{}
	sc.On("Scan", mock.Anything, service.ScanRequest{
		Sport:          "basketball_nba",
		Markets:        provider.DefaultMarkets,
		Regions:        provider.DefaultRegions,
		MarketType:     scanner.BucketMain,
		Book:           "fanduel",
		MinEdgePercent: 2.5,
		Stake:          250,
	}).Return(&service.ScanResult{
		EV:   []models.EdgeRecord{{ID: "evt1-fanduel-h2h-Home", EVPercent: 3.1}},
		Arbs: []models.ArbitrageRecord{{ID: "evt1-arb-h2h", ROI: 1.2}},
	}, nil).Twice()

	srv := newTestServer(t, Config{APIKey: testKey}, sc)

	for _, path := range []string{"/api/scan", "/api/ev-full"} {
		rec := get(t, srv.Handler(), path+"?sport=basketball_nba&marketType=main&book=fanduel&minEdge=2.5&stake=250", testKey)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var resp ScanResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.EV, 1)
		assert.Equal(t, "evt1-fanduel-h2h-Home", resp.EV[0].ID)
		require.Len(t, resp.Arbs, 1)
		assert.Equal(t, 1.2, resp.Arbs[0].ROI)
	}
	sc.AssertExpectations(t)
}

func TestScanEndpointEmptyResultIsArrays(t *testing.T) {
	sc := &mockScanner{}
	sc.On("Scan", mock.Anything, mock.Anything).Return(&service.ScanResult{}, nil)

	srv := newTestServer(t, Config{}, sc)
	rec := get(t, srv.Handler(), "/api/scan?sport=soccer_epl", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ev":[],"arbs":[]}`, rec.Body.String())
}

func TestScanEndpointClampsNumbers(t *testing.T) {
	sc := &mockScanner{}
	sc.On("Scan", mock.Anything, mock.MatchedBy(func(req service.ScanRequest) bool {
		return req.MinEdgePercent == 100 && req.Stake == MinStake
	})).Return(&service.ScanResult{}, nil).Once()
	sc.On("Scan", mock.Anything, mock.MatchedBy(func(req service.ScanRequest) bool {
		return req.MinEdgePercent == DefaultMinEdge && req.Stake == DefaultStake
	})).Return(&service.ScanResult{}, nil).Once()

	srv := newTestServer(t, Config{}, sc)

	rec := get(t, srv.Handler(), "/api/scan?sport=basketball_nba&minEdge=900&stake=0", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, srv.Handler(), "/api/scan?sport=basketball_nba&minEdge=abc&stake=Infinity", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	sc.AssertExpectations(t)
}

func TestInvalidSportRejected(t *testing.T) {
	sc := &mockScanner{}
	srv := newTestServer(t, Config{}, sc)

	for _, target := range []string{
		"/api/scan",
		"/api/scan?sport=cricket_ipl",
		"/api/odds?sport=../../etc",
	} {
		rec := get(t, srv.Handler(), target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		body := decodeError(t, rec)
		assert.Equal(t, "invalid-parameters", body["error"])
		assert.Equal(t, msgInvalidSport, body["message"])
	}
	sc.AssertNotCalled(t, "Scan", mock.Anything, mock.Anything)
	sc.AssertNotCalled(t, "Odds", mock.Anything, mock.Anything)
}

func TestInvalidMarketTypeRejected(t *testing.T) {
	srv := newTestServer(t, Config{}, &mockScanner{})

	rec := get(t, srv.Handler(), "/api/scan?sport=basketball_nba&marketType=futures", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid-parameters", decodeError(t, rec)["error"])
}

func TestConfiguredSportList(t *testing.T) {
	sc := &mockScanner{}
	sc.On("Scan", mock.Anything, mock.Anything).Return(&service.ScanResult{}, nil)
	srv := newTestServer(t, Config{AllowedSports: []string{"tennis_atp"}}, sc)

	assert.Equal(t, http.StatusOK, get(t, srv.Handler(), "/api/scan?sport=tennis_atp", "").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, srv.Handler(), "/api/scan?sport=basketball_nba", "").Code)
}

func TestOddsEndpointPassesRawPayload(t *testing.T) {
	sc := &mockScanner{}
	sc.On("Odds", mock.Anything, provider.Request{
		Sport:      "icehockey_nhl",
		Markets:    "h2h",
		Regions:    "us,uk",
		OddsFormat: provider.OddsFormatAmerican,
	}).Return(json.RawMessage(`[{"id":"evt1"}]`), nil).Once()

	srv := newTestServer(t, Config{}, sc)
	rec := get(t, srv.Handler(), "/api/odds?sport=icehockey_nhl&markets=h2h&regions=us,uk&oddsFormat=fractional", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":"evt1"}]`, rec.Body.String())
	sc.AssertExpectations(t)
}

func TestUpstreamErrorIsBadGateway(t *testing.T) {
	sc := &mockScanner{}
	sc.On("Odds", mock.Anything, mock.Anything).
		Return(nil, provider.NewStatusError(http.StatusUnauthorized, `{"message":"API key is invalid"}`)).Once()
	sc.On("Scan", mock.Anything, mock.Anything).
		Return(nil, provider.NewStatusError(http.StatusTooManyRequests, "quota exceeded")).Once()

	srv := newTestServer(t, Config{}, sc)

	rec := get(t, srv.Handler(), "/api/odds?sport=basketball_nba", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "upstream-unavailable", body["error"])
	assert.Equal(t, "Odds API error 401", body["message"])
	assert.Equal(t, map[string]interface{}{"message": "API key is invalid"}, body["details"])

	rec = get(t, srv.Handler(), "/api/scan?sport=basketball_nba", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "quota exceeded", decodeError(t, rec)["details"])
}

func TestInternalErrorHidesCause(t *testing.T) {
	sc := &mockScanner{}
	sc.On("Scan", mock.Anything, mock.Anything).Return(nil, errors.New("boom")).Once()

	srv := newTestServer(t, Config{}, sc)
	rec := get(t, srv.Handler(), "/api/scan?sport=basketball_nba", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal-error"}`, rec.Body.String())
}

func TestHealthProbesMounted(t *testing.T) {
	log, _ := test.NewNullLogger()
	hh := health.NewHandler(health.Config{ServiceName: "better-bets"})
	hh.SetReady(true)
	srv := NewServer(Config{APIKey: testKey, MetricsPath: "/metrics"}, &mockScanner{}, hh, log)

	assert.Equal(t, http.StatusOK, get(t, srv.Handler(), "/health", "").Code)
	assert.Equal(t, http.StatusOK, get(t, srv.Handler(), "/ready", "").Code)
	assert.Equal(t, http.StatusOK, get(t, srv.Handler(), "/metrics", "").Code)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, Config{CORSOrigins: []string{"https://app.example.com"}}, &mockScanner{})

	req := httptest.NewRequest(http.MethodOptions, "/api/scan", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", APIKeyHeader)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStaticFallbackServesIndex(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets", "app.js"), []byte("console.log(1)"), 0o644))

	srv := newTestServer(t, Config{StaticDir: dir}, &mockScanner{})

	rec := get(t, srv.Handler(), "/assets/app.js", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "console.log(1)", rec.Body.String())

	rec = get(t, srv.Handler(), "/results/nba", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "app")
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"", 0},
		{"  ", 0},
		{"abc", 0},
		{"NaN", 0},
		{"-Inf", 0},
		{"5.5", 5.5},
		{"-50", -10},
		{"1e6", 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseNumber(tt.raw, scanner.MinEdgeFloor, scanner.MinEdgeCeiling, DefaultMinEdge), tt.raw)
	}
}

func TestOddsFormat(t *testing.T) {
	assert.Equal(t, "decimal", oddsFormat("decimal"))
	assert.Equal(t, "american", oddsFormat("american"))
	assert.Equal(t, "american", oddsFormat(""))
	assert.Equal(t, "american", oddsFormat("DECIMAL"))
}
