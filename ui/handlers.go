package ui

import (
	"context"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"amesdash/app"
	"amesdash/domain/core"
	"amesdash/domain/housing"
	"amesdash/ui/templates/fragments"
)

// handleDashboard renders the landing page on the default attribute
func (a *App) handleDashboard(w http.ResponseWriter, r *http.Request) {
	a.renderDashboard(w, r, housing.AttributeOverallQual)
}

// handleAttribute renders the page with the requested attribute active
func (a *App) handleAttribute(w http.ResponseWriter, r *http.Request) {
	attr, err := housing.ParseAttribute(chi.URLParam(r, "attribute"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	a.renderDashboard(w, r, attr)
}

func (a *App) renderDashboard(w http.ResponseWriter, r *http.Request, attr housing.Attribute) {
	ctx := r.Context()

	overview, err := a.analysis.Overview(ctx)
	if err != nil {
		a.logger.Warn().Err(err).Msg("dataset unavailable")
		a.renderTemplate(w, fragments.Dashboard, newNoDataView(noDataMessage(err)))
		return
	}

	maxLogPrice := parseMaxLogPrice(r)
	slider := overview.LogPriceMax
	if maxLogPrice != nil {
		slider = *maxLogPrice
	}

	view := newDashboardView(overview, attr, slider, a.buildPanel(ctx, attr, maxLogPrice))
	a.renderTemplate(w, fragments.Dashboard, view)
}

// handleAnalysisFragment recomputes one attribute's panel for an HTMX swap.
// The response carries the panel plus an out-of-band tab bar so the active
// highlight follows tab clicks.
func (a *App) handleAnalysisFragment(w http.ResponseWriter, r *http.Request) {
	attr, err := housing.ParseAttribute(r.URL.Query().Get("attribute"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	panel := a.buildPanel(r.Context(), attr, parseMaxLogPrice(r))
	if isHTMX(r) {
		a.renderPartial(w, fragments.AnalysisUpdate, FragmentView{
			Panel:  panel,
			TabBar: newTabBarView(attr, true),
		})
		return
	}
	a.renderPartial(w, fragments.Analysis, panel)
}

// handleFigure serves one attribute's box plot as a standalone SVG
func (a *App) handleFigure(w http.ResponseWriter, r *http.Request) {
	attr, err := housing.ParseAttribute(chi.URLParam(r, "attribute"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	analysis, err := a.analysis.Run(r.Context(), app.AnalysisRequest{
		Attribute:   attr,
		MaxLogPrice: parseMaxLogPrice(r),
	})
	if err != nil {
		switch {
		case core.IsNotFoundError(err):
			http.Error(w, "dataset not available", http.StatusServiceUnavailable)
		case core.IsDataError(err):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			a.logger.Error().Err(err).Str("attribute", attr.String()).Msg("figure render failed")
			http.Error(w, "figure render failed", http.StatusInternalServerError)
		}
		return
	}
	if analysis.Figure == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write([]byte(analysis.Figure.SVG))
}

func (a *App) buildPanel(ctx context.Context, attr housing.Attribute, maxLogPrice *float64) *AnalysisPanel {
	analysis, err := a.analysis.Run(ctx, app.AnalysisRequest{Attribute: attr, MaxLogPrice: maxLogPrice})
	if err != nil {
		a.logger.Warn().Err(err).Str("attribute", attr.String()).Msg("analysis pass failed")
		return errorPanel(panelMessage(err))
	}
	return newAnalysisPanel(analysis)
}

func noDataMessage(err error) string {
	if core.IsNotFoundError(err) {
		return "Dataset not found. Place AmesHousing.csv in the working directory or point AMES_DATA_FILE at it."
	}
	return "Dataset could not be loaded: " + err.Error()
}

func panelMessage(err error) string {
	switch {
	case core.IsNotFoundError(err):
		return "Dataset not found. Place AmesHousing.csv in the working directory or point AMES_DATA_FILE at it."
	case core.IsDataError(err):
		return "Analysis unavailable: " + err.Error()
	default:
		return "Analysis failed unexpectedly."
	}
}

// parseMaxLogPrice reads the slider threshold. Absent or malformed values
// mean no filter.
func parseMaxLogPrice(r *http.Request) *float64 {
	raw := r.URL.Query().Get("max_log_price")
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) {
		return nil
	}
	return &v
}
