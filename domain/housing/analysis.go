package housing

import (
	"amesdash/domain/core"
	"amesdash/domain/stats"
)

// Figure is a rendered plot, SVG markup plus its viewport size
type Figure struct {
	ID     core.FigureID `json:"id"`
	SVG    string        `json:"svg"`
	Width  int           `json:"width"`
	Height int           `json:"height"`
}

// AttributeAnalysis is the full output of one analysis pass: diagnostics,
// omnibus result, descriptive rows, the figure, and the written conclusion.
// Ephemeral - recomputed on every interaction, never persisted.
type AttributeAnalysis struct {
	ID        core.AnalysisID `json:"id"`
	Attribute AttributeSpec   `json:"attribute"`
	Method    stats.Method    `json:"method"`

	Assumptions *stats.AssumptionReport `json:"assumptions"`
	Omnibus     *stats.OmnibusResult    `json:"omnibus"`
	Groups      []stats.GroupSummary    `json:"groups"`
	Figure      *Figure                 `json:"figure,omitempty"`

	// ConclusionMarkdown is the written interpretation, markdown source
	ConclusionMarkdown string `json:"conclusion_markdown"`

	Warnings []stats.Warning `json:"warnings,omitempty"`

	// Filter context for this pass
	TotalRows    int     `json:"total_rows"`
	FilteredRows int     `json:"filtered_rows"`
	MaxLogPrice  float64 `json:"max_log_price"`

	ComputedAt core.Timestamp `json:"computed_at"`
}

// Filtered reports whether the slider actually removed rows in this pass
func (a *AttributeAnalysis) Filtered() bool {
	return a.FilteredRows < a.TotalRows
}
