package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"amesdash/domain/core"
	"amesdash/domain/housing"
	domstats "amesdash/domain/stats"
	"amesdash/internal/logging"
	"amesdash/ports"
)

// AnalysisService runs the full analysis pass for one grouping attribute:
// assumption diagnostics, the configured omnibus test, descriptive group
// rows, the box plot, and the written conclusion. One parameterized
// routine serves all three attributes.
type AnalysisService struct {
	source   ports.DatasetSource
	checker  ports.AssumptionChecker
	runner   ports.OmnibusRunner
	renderer ports.BoxplotRenderer
	methods  map[housing.Attribute]domstats.Method
	logger   zerolog.Logger
}

// AnalysisRequest selects the attribute and the optional price ceiling.
// A nil MaxLogPrice means no filter; the pass runs over the full frame.
type AnalysisRequest struct {
	Attribute   housing.Attribute
	MaxLogPrice *float64
}

// DatasetOverview is the header summary of the loaded frame: shape, price
// range, and the slider bounds
type DatasetOverview struct {
	SourcePath  string  `json:"source_path"`
	Fingerprint string  `json:"fingerprint"`
	RowCount    int     `json:"row_count"`
	ColumnCount int     `json:"column_count"`
	PriceMin    float64 `json:"price_min"`
	PriceMax    float64 `json:"price_max"`
	PriceMedian float64 `json:"price_median"`
	LogPriceMin float64 `json:"log_price_min"`
	LogPriceMax float64 `json:"log_price_max"`
}

// NewAnalysisService wires the analysis pipeline
func NewAnalysisService(
	source ports.DatasetSource,
	checker ports.AssumptionChecker,
	runner ports.OmnibusRunner,
	renderer ports.BoxplotRenderer,
	methods map[housing.Attribute]domstats.Method,
) *AnalysisService {
	return &AnalysisService{
		source:   source,
		checker:  checker,
		runner:   runner,
		renderer: renderer,
		methods:  methods,
		logger:   logging.Component("analysis"),
	}
}

// MethodFor returns the configured omnibus method for an attribute
func (s *AnalysisService) MethodFor(attr housing.Attribute) (domstats.Method, error) {
	method, ok := s.methods[attr]
	if !ok {
		return "", fmt.Errorf("%w: no method mapped for %q", core.ErrUnknownMethod, attr)
	}
	return method, nil
}

// Overview loads the frame and summarizes it for the dashboard header and
// the slider bounds
func (s *AnalysisService) Overview(ctx context.Context) (*DatasetOverview, error) {
	frame, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}

	price, err := frame.NumericValues(housing.ColSalePrice)
	if err != nil {
		return nil, err
	}
	logPrice, err := frame.NumericValues(housing.ColSalePriceLog)
	if err != nil {
		return nil, err
	}
	if len(price) == 0 || len(logPrice) == 0 {
		return nil, core.ErrInsufficientData
	}

	priceMin, _ := stats.Min(price)
	priceMax, _ := stats.Max(price)
	priceMedian, _ := stats.Median(price)
	logMin, _ := stats.Min(logPrice)
	logMax, _ := stats.Max(logPrice)

	return &DatasetOverview{
		SourcePath:  frame.SourcePath,
		Fingerprint: frame.Fingerprint.Short(),
		RowCount:    frame.RowCount(),
		ColumnCount: frame.ColumnCount(),
		PriceMin:    priceMin,
		PriceMax:    priceMax,
		PriceMedian: priceMedian,
		LogPriceMin: logMin,
		LogPriceMax: logMax,
	}, nil
}

// Run executes one full analysis pass. The assumption check, the omnibus
// test, and the figure render are pure functions of the same filtered
// view, so they run concurrently.
func (s *AnalysisService) Run(ctx context.Context, req AnalysisRequest) (*housing.AttributeAnalysis, error) {
	start := time.Now()

	spec, err := housing.SpecFor(req.Attribute)
	if err != nil {
		return nil, err
	}
	method, err := s.MethodFor(spec.Attribute)
	if err != nil {
		return nil, err
	}

	frame, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}

	view := frame
	maxLogPrice, err := s.resolveThreshold(frame, req.MaxLogPrice)
	if err != nil {
		return nil, err
	}
	if req.MaxLogPrice != nil {
		view, err = frame.FilterLogPriceAtMost(*req.MaxLogPrice)
		if err != nil {
			return nil, err
		}
	}

	var (
		report  *domstats.AssumptionReport
		omnibus *domstats.OmnibusResult
		figure  *housing.Figure
		skip    *domstats.Warning
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := s.checker.Check(gctx, view, housing.ColSalePriceLog, spec.Column)
		if err != nil {
			// Diagnostics failing on thin data must not block the pass;
			// the test still runs and the skip is surfaced as a warning.
			if core.IsDataError(err) {
				w := domstats.Warning{
					Code:    domstats.WarningAssumptionSkip,
					Message: fmt.Sprintf("assumption diagnostics skipped: %v", err),
				}
				skip = &w
				return nil
			}
			return err
		}
		report = r
		return nil
	})
	g.Go(func() error {
		r, err := s.runner.Run(gctx, view, housing.ColSalePriceLog, spec.Column, method)
		if err != nil {
			return err
		}
		omnibus = r
		return nil
	})
	g.Go(func() error {
		f, err := s.renderer.RenderBoxplot(view, housing.ColSalePriceLog, spec.Column, ports.BoxplotOptions{
			Title:        spec.Title,
			XLabel:       spec.XLabel,
			YLabel:       "log(SalePrice + 1)",
			Palette:      spec.Palette,
			RotateLabels: spec.RotateLabels,
		})
		if err != nil {
			return err
		}
		figure = f
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	groups, err := summarizeGroups(view, spec.Column)
	if err != nil {
		return nil, err
	}

	var warnings []domstats.Warning
	if skip != nil {
		warnings = append(warnings, *skip)
	}
	warnings = append(warnings, omnibus.Warnings...)

	analysis := &housing.AttributeAnalysis{
		ID:           core.NewAnalysisID(),
		Attribute:    spec,
		Method:       method,
		Assumptions:  report,
		Omnibus:      omnibus,
		Groups:       groups,
		Figure:       figure,
		Warnings:     warnings,
		TotalRows:    frame.RowCount(),
		FilteredRows: view.RowCount(),
		MaxLogPrice:  maxLogPrice,
		ComputedAt:   core.Now(),
	}
	analysis.ConclusionMarkdown = BuildConclusion(analysis)

	s.logger.Info().
		Str("attribute", spec.Attribute.String()).
		Str("method", method.String()).
		Float64("p_value", omnibus.PValue).
		Int("rows", view.RowCount()).
		Dur("elapsed", time.Since(start)).
		Msg("analysis pass complete")
	return analysis, nil
}

// RunAll runs every attribute in display order with one shared threshold.
// Used by the report CLI; attribute-level failures abort the whole report.
func (s *AnalysisService) RunAll(ctx context.Context, maxLogPrice *float64) ([]*housing.AttributeAnalysis, error) {
	analyses := make([]*housing.AttributeAnalysis, 0, len(housing.Attributes()))
	for _, attr := range housing.Attributes() {
		analysis, err := s.Run(ctx, AnalysisRequest{Attribute: attr, MaxLogPrice: maxLogPrice})
		if err != nil {
			return nil, fmt.Errorf("analysis for %s: %w", attr, err)
		}
		analyses = append(analyses, analysis)
	}
	return analyses, nil
}

// resolveThreshold pins the effective ceiling recorded on the bundle; with
// no filter requested it is the column maximum (the slider's no-op spot)
func (s *AnalysisService) resolveThreshold(frame *housing.Frame, requested *float64) (float64, error) {
	if requested != nil {
		return *requested, nil
	}
	logPrice, err := frame.NumericValues(housing.ColSalePriceLog)
	if err != nil {
		return 0, err
	}
	if len(logPrice) == 0 {
		return 0, core.ErrInsufficientData
	}
	max, _ := stats.Max(logPrice)
	return max, nil
}

// summarizeGroups builds the descriptive table, ordered ascending by
// median so rows line up with the plot
func summarizeGroups(frame *housing.Frame, groupColumn string) ([]domstats.GroupSummary, error) {
	groups, err := frame.Partition(housing.ColSalePriceLog, groupColumn)
	if err != nil {
		return nil, err
	}

	summaries := make([]domstats.GroupSummary, 0, len(groups))
	for _, g := range groups {
		mean, _ := stats.Mean(g.Values)
		median, _ := stats.Median(g.Values)
		min, _ := stats.Min(g.Values)
		max, _ := stats.Max(g.Values)
		sd := 0.0
		if len(g.Values) > 1 {
			sd, _ = stats.SampleStandardDeviation(g.Values)
		}
		summaries = append(summaries, domstats.GroupSummary{
			Label:  g.Label,
			Count:  len(g.Values),
			Mean:   mean,
			Median: median,
			StdDev: sd,
			Min:    min,
			Max:    max,
		})
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Median < summaries[j].Median
	})
	return summaries, nil
}
