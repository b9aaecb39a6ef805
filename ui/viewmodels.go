package ui

import (
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"amesdash/app"
	"amesdash/domain/housing"
	"amesdash/domain/stats"
)

// DashboardView is the full-page view model. LoadError set means the
// dataset could not be loaded; the page then shows a single error banner
// and nothing else.
type DashboardView struct {
	Title       string
	Overview    *app.DatasetOverview
	TabBar      TabBarView
	SliderValue float64
	Panel       *AnalysisPanel
	LoadError   string
}

// TabBarView renders the attribute tab bar. OOB marks the fragment copy
// that HTMX swaps out-of-band to move the active highlight.
type TabBarView struct {
	Tabs   []TabView
	Active housing.Attribute
	OOB    bool
}

// TabView is one attribute tab
type TabView struct {
	Attribute housing.Attribute
	Label     string
	Active    bool
}

// AnalysisPanel is the per-attribute panel. Error set means the pass was
// aborted; the panel then shows a single banner instead of results.
type AnalysisPanel struct {
	Analysis       *housing.AttributeAnalysis
	AnovaRows      []AnovaRowView
	FigureSVG      template.HTML
	ConclusionHTML template.HTML
	Error          string
}

// AnovaRowView is one pre-formatted ANOVA table row. F and P are empty on
// the residual row.
type AnovaRowView struct {
	Term  string
	SumSq string
	DF    int
	F     string
	P     string
}

// FragmentView is the HTMX swap payload: the panel plus the out-of-band
// tab bar that carries the active-attribute state.
type FragmentView struct {
	Panel  *AnalysisPanel
	TabBar TabBarView
}

func newTabBarView(active housing.Attribute, oob bool) TabBarView {
	tabs := make([]TabView, 0, len(housing.Attributes()))
	for _, attr := range housing.Attributes() {
		tabs = append(tabs, TabView{
			Attribute: attr,
			Label:     attr.Label(),
			Active:    attr == active,
		})
	}
	return TabBarView{Tabs: tabs, Active: active, OOB: oob}
}

func newDashboardView(overview *app.DatasetOverview, active housing.Attribute, slider float64, panel *AnalysisPanel) *DashboardView {
	return &DashboardView{
		Title:       "Ames Housing Price Explorer",
		Overview:    overview,
		TabBar:      newTabBarView(active, false),
		SliderValue: slider,
		Panel:       panel,
	}
}

func newNoDataView(message string) *DashboardView {
	return &DashboardView{
		Title:     "Ames Housing Price Explorer",
		LoadError: message,
	}
}

func newAnalysisPanel(analysis *housing.AttributeAnalysis) *AnalysisPanel {
	panel := &AnalysisPanel{
		Analysis:       analysis,
		ConclusionHTML: renderMarkdown(analysis.ConclusionMarkdown),
	}
	if analysis.Figure != nil {
		panel.FigureSVG = template.HTML(analysis.Figure.SVG)
	}
	if analysis.Omnibus != nil && analysis.Omnibus.Table != nil {
		for _, row := range analysis.Omnibus.Table.Rows {
			view := AnovaRowView{
				Term:  row.Term,
				SumSq: fmt.Sprintf("%.4f", row.SumSq),
				DF:    row.DF,
			}
			if row.F != nil {
				view.F = fmt.Sprintf("%.2f", *row.F)
			}
			if row.PValue != nil {
				view.P = stats.FormatPValue(*row.PValue)
			}
			panel.AnovaRows = append(panel.AnovaRows, view)
		}
	}
	return panel
}

func errorPanel(message string) *AnalysisPanel {
	return &AnalysisPanel{Error: message}
}

// renderMarkdown converts the conclusion markdown into safe-to-embed HTML.
// The source is generated by this process, never user input.
func renderMarkdown(src string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	out := markdown.ToHTML([]byte(src), p, renderer)
	return template.HTML(out)
}

// formatUSD renders a dollar amount with thousands separators
func formatUSD(v float64) string {
	digits := strconv.FormatFloat(v, 'f', 0, 64)
	neg := strings.HasPrefix(digits, "-")
	if neg {
		digits = digits[1:]
	}
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	if neg {
		return "-$" + b.String()
	}
	return "$" + b.String()
}
