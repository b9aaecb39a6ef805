package ports

import (
	"amesdash/domain/housing"
)

// BoxplotOptions carries the presentation knobs of one boxplot render
type BoxplotOptions struct {
	Title        string
	XLabel       string
	YLabel       string
	Palette      string
	RotateLabels bool
}

// BoxplotRenderer draws the grouped distribution figure. Groups are always
// ordered by ascending median of the target column.
type BoxplotRenderer interface {
	RenderBoxplot(frame *housing.Frame, targetColumn, groupColumn string, opts BoxplotOptions) (*housing.Figure, error)
}
