package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amesdash/adapters/ames"
	"amesdash/adapters/plot"
	statstests "amesdash/adapters/stats/tests"
	"amesdash/app"
	"amesdash/domain/core"
	"amesdash/domain/housing"
	domstats "amesdash/domain/stats"
	"amesdash/internal/testkit"
)

func newTestServer(t *testing.T) (*Server, *testkit.FakeSource) {
	t.Helper()

	fake, err := testkit.NewTestKit().Source()
	require.NoError(t, err, "build fixture source")
	cached := ames.NewCachedSource(fake)

	methods := map[housing.Attribute]domstats.Method{
		housing.AttributeOverallQual:  domstats.MethodANOVA,
		housing.AttributeNeighborhood: domstats.MethodKruskalWallis,
		housing.AttributeGarageType:   domstats.MethodANOVA,
	}
	svc := app.NewAnalysisService(cached, statstests.NewChecker(), statstests.NewRunner(), plot.NewRenderer(), methods)

	return NewServer(svc, cached, Config{Port: "0", Mode: gin.TestMode}), fake
}

func getJSON(t *testing.T, s *Server, path string, out interface{}) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if out != nil && rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), "decode %s", path)
	}
	return rec
}

func TestServer_Health(t *testing.T) {
	server, _ := newTestServer(t)

	var health map[string]interface{}
	rec := getJSON(t, server, "/api/health", &health)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, false, health["dataset_loaded"], "nothing loaded before the first request")

	rec = getJSON(t, server, "/api/dataset", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = getJSON(t, server, "/api/health", &health)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, health["dataset_loaded"], "first request primes the cache")
}

func TestServer_Dataset(t *testing.T) {
	server, _ := newTestServer(t)

	var overview app.DatasetOverview
	rec := getJSON(t, server, "/api/dataset", &overview)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, testkit.DefaultAmesConfig().RowCount, overview.RowCount)
	assert.Greater(t, overview.ColumnCount, 0)
	assert.Less(t, overview.PriceMin, overview.PriceMax)
	assert.Less(t, overview.LogPriceMin, overview.LogPriceMax)
	assert.NotEmpty(t, overview.Fingerprint)
}

func TestServer_Analysis(t *testing.T) {
	server, _ := newTestServer(t)

	var analysis housing.AttributeAnalysis
	rec := getJSON(t, server, "/api/analyses/overall_qual", &analysis)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, domstats.MethodANOVA, analysis.Method)
	assert.Equal(t, housing.AttributeOverallQual, analysis.Attribute.Attribute)
	require.NotNil(t, analysis.Omnibus)
	require.NotNil(t, analysis.Omnibus.Table, "parametric result carries the ANOVA table")
	assert.GreaterOrEqual(t, analysis.Omnibus.PValue, 0.0)
	assert.LessOrEqual(t, analysis.Omnibus.PValue, 1.0)
	assert.NotEmpty(t, analysis.Groups)
	require.NotNil(t, analysis.Figure)
	assert.Contains(t, analysis.Figure.SVG, "<svg")
	assert.Contains(t, analysis.ConclusionMarkdown, "Conclusion")
	assert.False(t, analysis.Filtered())
}

func TestServer_AnalysisFiltered(t *testing.T) {
	server, _ := newTestServer(t)

	var overview app.DatasetOverview
	rec := getJSON(t, server, "/api/dataset", &overview)
	require.Equal(t, http.StatusOK, rec.Code)
	mid := (overview.LogPriceMin + overview.LogPriceMax) / 2

	var analysis housing.AttributeAnalysis
	rec = getJSON(t, server, fmt.Sprintf("/api/analyses/overall_qual?maxLogPrice=%.4f", mid), &analysis)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.True(t, analysis.Filtered(), "midpoint threshold drops the upper half")
	assert.Less(t, analysis.FilteredRows, analysis.TotalRows)
	assert.InDelta(t, mid, analysis.MaxLogPrice, 1e-3)

	rec = getJSON(t, server, "/api/analyses/overall_qual?maxLogPrice=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_FilterTooTight(t *testing.T) {
	server, _ := newTestServer(t)

	rec := getJSON(t, server, "/api/analyses/neighborhood?maxLogPrice=1.0", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestServer_UnknownAttribute(t *testing.T) {
	server, _ := newTestServer(t)

	rec := getJSON(t, server, "/api/analyses/lot_shape", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown grouping attribute")
}

func TestServer_MissingDataset(t *testing.T) {
	server, fake := newTestServer(t)
	fake.SetError(fmt.Errorf("%w: AmesHousing.csv", core.ErrDatasetNotFound))

	rec := getJSON(t, server, "/api/dataset", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "dataset not available")

	rec = getJSON(t, server, "/api/analyses/garage_type", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var health map[string]interface{}
	rec = getJSON(t, server, "/api/health", &health)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, health["dataset_loaded"], "failed loads are never cached")
}
