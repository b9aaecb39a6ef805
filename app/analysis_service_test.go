package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amesdash/adapters/plot"
	statstests "amesdash/adapters/stats/tests"
	"amesdash/domain/core"
	"amesdash/domain/housing"
	domstats "amesdash/domain/stats"
	"amesdash/internal/testkit"
)

func defaultMethods() map[housing.Attribute]domstats.Method {
	return map[housing.Attribute]domstats.Method{
		housing.AttributeOverallQual:  domstats.MethodANOVA,
		housing.AttributeNeighborhood: domstats.MethodKruskalWallis,
		housing.AttributeGarageType:   domstats.MethodANOVA,
	}
}

func newTestService(t *testing.T) (*AnalysisService, *testkit.FakeSource) {
	t.Helper()
	source, err := testkit.NewTestKit().Source()
	require.NoError(t, err, "build fixture source")
	svc := NewAnalysisService(source, statstests.NewChecker(), statstests.NewRunner(), plot.NewRenderer(), defaultMethods())
	return svc, source
}

func TestAnalysisService_RunNeighborhood(t *testing.T) {
	svc, _ := newTestService(t)

	analysis, err := svc.Run(context.Background(), AnalysisRequest{Attribute: housing.AttributeNeighborhood})
	require.NoError(t, err)

	assert.NotEmpty(t, analysis.ID)
	assert.Equal(t, domstats.MethodKruskalWallis, analysis.Method)
	assert.Equal(t, housing.AttributeNeighborhood, analysis.Attribute.Attribute)

	require.NotNil(t, analysis.Omnibus)
	assert.Nil(t, analysis.Omnibus.Table, "rank test carries no ANOVA table")
	assert.GreaterOrEqual(t, analysis.Omnibus.Statistic, 0.0)
	assert.True(t, analysis.Omnibus.Significant(),
		"generated neighborhoods carry strong price shifts, p = %f", analysis.Omnibus.PValue)

	require.NotNil(t, analysis.Assumptions)
	assert.GreaterOrEqual(t, analysis.Assumptions.NormalityP, 0.0)
	assert.LessOrEqual(t, analysis.Assumptions.NormalityP, 1.0)
	assert.GreaterOrEqual(t, analysis.Assumptions.VarianceP, 0.0)
	assert.LessOrEqual(t, analysis.Assumptions.VarianceP, 1.0)

	require.NotNil(t, analysis.Figure)
	assert.Contains(t, analysis.Figure.SVG, "<svg")
	assert.Contains(t, analysis.ConclusionMarkdown, "Kruskal-Wallis")

	assert.Equal(t, analysis.TotalRows, analysis.FilteredRows, "no filter requested")
	assert.False(t, analysis.Filtered())
}

func TestAnalysisService_RunOverallQualANOVA(t *testing.T) {
	svc, _ := newTestService(t)

	analysis, err := svc.Run(context.Background(), AnalysisRequest{Attribute: housing.AttributeOverallQual})
	require.NoError(t, err)

	assert.Equal(t, domstats.MethodANOVA, analysis.Method)
	require.NotNil(t, analysis.Omnibus.Table)
	require.Len(t, analysis.Omnibus.Table.Rows, 2, "factor row plus residual row")

	factor := analysis.Omnibus.Table.Rows[0]
	residual := analysis.Omnibus.Table.Rows[1]
	require.NotNil(t, factor.F)
	require.NotNil(t, factor.PValue)
	assert.Nil(t, residual.F)
	assert.InDelta(t, factor.SumSq+residual.SumSq, analysis.Omnibus.Table.TotalSumSq(), 1e-9)

	assert.True(t, analysis.Omnibus.Significant(),
		"quality grades shift generated prices, p = %f", analysis.Omnibus.PValue)
}

func TestAnalysisService_GroupsOrderedByMedian(t *testing.T) {
	svc, _ := newTestService(t)

	analysis, err := svc.Run(context.Background(), AnalysisRequest{Attribute: housing.AttributeGarageType})
	require.NoError(t, err)
	require.NotEmpty(t, analysis.Groups)

	for i := 1; i < len(analysis.Groups); i++ {
		assert.LessOrEqual(t, analysis.Groups[i-1].Median, analysis.Groups[i].Median,
			"group %d out of median order", i)
	}
	for _, g := range analysis.Groups {
		assert.Positive(t, g.Count)
		assert.LessOrEqual(t, g.Min, g.Median)
		assert.LessOrEqual(t, g.Median, g.Max)
	}
}

func TestAnalysisService_FilterThreshold(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	overview, err := svc.Overview(ctx)
	require.NoError(t, err)

	t.Run("max_is_noop", func(t *testing.T) {
		analysis, err := svc.Run(ctx, AnalysisRequest{
			Attribute:   housing.AttributeNeighborhood,
			MaxLogPrice: &overview.LogPriceMax,
		})
		require.NoError(t, err)
		assert.Equal(t, analysis.TotalRows, analysis.FilteredRows, "ceiling at max keeps every row")
	})

	t.Run("midpoint_drops_rows", func(t *testing.T) {
		mid := (overview.LogPriceMin + overview.LogPriceMax) / 2
		analysis, err := svc.Run(ctx, AnalysisRequest{
			Attribute:   housing.AttributeNeighborhood,
			MaxLogPrice: &mid,
		})
		require.NoError(t, err)
		assert.Less(t, analysis.FilteredRows, analysis.TotalRows)
		assert.True(t, analysis.Filtered())
		assert.Equal(t, mid, analysis.MaxLogPrice)
	})

	t.Run("min_keeps_only_minimum_rows", func(t *testing.T) {
		analysis, err := svc.Run(ctx, AnalysisRequest{
			Attribute:   housing.AttributeNeighborhood,
			MaxLogPrice: &overview.LogPriceMin,
		})
		// Thin tail: either an insufficient-data error or a tiny view
		if err != nil {
			assert.True(t, core.IsDataError(err) || errors.Is(err, core.ErrInsufficientGroups),
				"unexpected error at min threshold: %v", err)
			return
		}
		assert.LessOrEqual(t, analysis.FilteredRows, analysis.TotalRows/10,
			"only rows at the exact minimum log price survive")
	})
}

func TestAnalysisService_UnknownAttribute(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Run(context.Background(), AnalysisRequest{Attribute: housing.Attribute("lot_shape")})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUnknownAttribute)
}

func TestAnalysisService_MissingDataset(t *testing.T) {
	svc, source := newTestService(t)
	source.SetError(core.ErrDatasetNotFound)

	_, err := svc.Run(context.Background(), AnalysisRequest{Attribute: housing.AttributeOverallQual})
	assert.ErrorIs(t, err, core.ErrDatasetNotFound)

	_, err = svc.Overview(context.Background())
	assert.ErrorIs(t, err, core.ErrDatasetNotFound)
}

func TestAnalysisService_MethodOverride(t *testing.T) {
	source, err := testkit.NewTestKit().Source()
	require.NoError(t, err)
	methods := defaultMethods()
	methods[housing.AttributeOverallQual] = domstats.MethodKruskalWallis
	svc := NewAnalysisService(source, statstests.NewChecker(), statstests.NewRunner(), plot.NewRenderer(), methods)

	analysis, err := svc.Run(context.Background(), AnalysisRequest{Attribute: housing.AttributeOverallQual})
	require.NoError(t, err)
	assert.Equal(t, domstats.MethodKruskalWallis, analysis.Method)
	assert.Nil(t, analysis.Omnibus.Table)
}

func TestAnalysisService_UnmappedMethod(t *testing.T) {
	source, err := testkit.NewTestKit().Source()
	require.NoError(t, err)
	svc := NewAnalysisService(source, statstests.NewChecker(), statstests.NewRunner(), plot.NewRenderer(),
		map[housing.Attribute]domstats.Method{})

	_, err = svc.Run(context.Background(), AnalysisRequest{Attribute: housing.AttributeOverallQual})
	assert.ErrorIs(t, err, core.ErrUnknownMethod)
}

func TestAnalysisService_RunAll(t *testing.T) {
	svc, _ := newTestService(t)

	analyses, err := svc.RunAll(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, analyses, 3)

	wantOrder := housing.Attributes()
	for i, analysis := range analyses {
		assert.Equal(t, wantOrder[i], analysis.Attribute.Attribute)
		assert.NotNil(t, analysis.Figure)
		assert.NotEmpty(t, analysis.ConclusionMarkdown)
	}
}

func TestAnalysisService_Overview(t *testing.T) {
	svc, _ := newTestService(t)

	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)

	cfg := testkit.DefaultAmesConfig()
	assert.Equal(t, cfg.RowCount, overview.RowCount)
	assert.Less(t, overview.LogPriceMin, overview.LogPriceMax)
	assert.GreaterOrEqual(t, overview.PriceMedian, overview.PriceMin)
	assert.LessOrEqual(t, overview.PriceMedian, overview.PriceMax)
	assert.NotEmpty(t, overview.Fingerprint)
}
