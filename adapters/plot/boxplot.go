package plot

import (
	"fmt"
	"html"
	"math"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"

	"amesdash/domain/core"
	"amesdash/domain/housing"
	"amesdash/ports"
)

// RenderConfig holds the fixed geometry of rendered figures
type RenderConfig struct {
	Width         int `json:"width"`
	Height        int `json:"height"`
	MarginTop     int `json:"margin_top"`
	MarginRight   int `json:"margin_right"`
	MarginBottom  int `json:"margin_bottom"`
	MarginLeft    int `json:"margin_left"`
	RotatedBottom int `json:"rotated_bottom"`
}

// DefaultRenderConfig returns the standard dashboard figure geometry
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		Width:         960,
		Height:        540,
		MarginTop:     48,
		MarginRight:   24,
		MarginBottom:  72,
		MarginLeft:    76,
		RotatedBottom: 132,
	}
}

// Renderer draws grouped box plots as standalone SVG documents
type Renderer struct {
	config RenderConfig
}

// NewRenderer creates a renderer with the default geometry
func NewRenderer() *Renderer {
	return &Renderer{config: DefaultRenderConfig()}
}

// NewRendererWithConfig creates a renderer with custom geometry
func NewRendererWithConfig(config RenderConfig) *Renderer {
	return &Renderer{config: config}
}

// BoxStats summarizes one group's distribution for drawing. Whiskers sit
// at the most extreme data points within 1.5 IQR of the box; everything
// beyond them is an outlier.
type BoxStats struct {
	Label       string
	N           int
	Q1          float64
	Median      float64
	Q3          float64
	WhiskerLow  float64
	WhiskerHigh float64
	Outliers    []float64
}

// RenderBoxplot implements ports.BoxplotRenderer. Groups are drawn in
// ascending median order, left to right.
func (r *Renderer) RenderBoxplot(frame *housing.Frame, targetColumn, groupColumn string, opts ports.BoxplotOptions) (*housing.Figure, error) {
	groups, err := frame.Partition(targetColumn, groupColumn)
	if err != nil {
		return nil, err
	}

	boxes := make([]BoxStats, 0, len(groups))
	for _, g := range groups {
		boxes = append(boxes, computeBoxStats(g.Label, g.Values))
	}
	sort.SliceStable(boxes, func(i, j int) bool {
		return boxes[i].Median < boxes[j].Median
	})

	svg := r.draw(boxes, opts)
	return &housing.Figure{
		ID:     core.NewFigureID(),
		SVG:    svg,
		Width:  r.config.Width,
		Height: r.config.Height,
	}, nil
}

// computeBoxStats derives the five-number summary plus outliers for one
// group. Groups too small for quartiles collapse the box to the data range.
func computeBoxStats(label string, values []float64) BoxStats {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	median, _ := stats.Median(sorted)
	var q1, q3 float64
	if len(sorted) >= 4 {
		q1, _ = stats.Percentile(sorted, 25)
		q3, _ = stats.Percentile(sorted, 75)
	} else {
		q1 = sorted[0]
		q3 = sorted[len(sorted)-1]
	}

	iqr := q3 - q1
	loFence := q1 - 1.5*iqr
	hiFence := q3 + 1.5*iqr

	whiskerLow := math.Inf(1)
	whiskerHigh := math.Inf(-1)
	var outliers []float64
	for _, v := range values {
		if v < loFence || v > hiFence {
			outliers = append(outliers, v)
			continue
		}
		if v < whiskerLow {
			whiskerLow = v
		}
		if v > whiskerHigh {
			whiskerHigh = v
		}
	}
	if math.IsInf(whiskerLow, 1) {
		whiskerLow, whiskerHigh = q1, q3
	}

	return BoxStats{
		Label:       label,
		N:           len(values),
		Q1:          q1,
		Median:      median,
		Q3:          q3,
		WhiskerLow:  whiskerLow,
		WhiskerHigh: whiskerHigh,
		Outliers:    outliers,
	}
}

func (r *Renderer) draw(boxes []BoxStats, opts ports.BoxplotOptions) string {
	cfg := r.config
	bottom := cfg.MarginBottom
	if opts.RotateLabels {
		bottom = cfg.RotatedBottom
	}
	plotW := float64(cfg.Width - cfg.MarginLeft - cfg.MarginRight)
	plotH := float64(cfg.Height - cfg.MarginTop - bottom)
	left := float64(cfg.MarginLeft)
	top := float64(cfg.MarginTop)
	axisY := top + plotH

	domainMin, domainMax := dataDomain(boxes)
	scaleY := func(v float64) float64 {
		return top + plotH*(1-(v-domainMin)/(domainMax-domainMin))
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d" font-family="sans-serif">`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="#ffffff"/>`, cfg.Width, cfg.Height)

	if opts.Title != "" {
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" text-anchor="middle" font-size="16" font-weight="bold" fill="#1f2937">%s</text>`,
			left+plotW/2, top-22, html.EscapeString(opts.Title))
	}

	// Horizontal grid plus y tick labels
	for _, tick := range niceTicks(domainMin, domainMax, 6) {
		y := scaleY(tick)
		fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#e5e7eb" stroke-width="1"/>`,
			left, y, left+plotW, y)
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" text-anchor="end" dominant-baseline="middle" font-size="11" fill="#4b5563">%s</text>`,
			left-8, y, formatTick(tick))
	}

	// Axes
	fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#374151" stroke-width="1"/>`,
		left, top, left, axisY)
	fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#374151" stroke-width="1"/>`,
		left, axisY, left+plotW, axisY)

	colors := Colors(opts.Palette, len(boxes))
	band := plotW / float64(len(boxes))
	boxW := band * 0.6
	if boxW > 90 {
		boxW = 90
	}

	for i, box := range boxes {
		cx := left + band*(float64(i)+0.5)
		fill := colors[i]
		r.drawBox(&b, box, cx, boxW, fill, scaleY)
		r.drawXLabel(&b, box.Label, cx, axisY, opts.RotateLabels)
	}

	if opts.YLabel != "" {
		ly := top + plotH/2
		fmt.Fprintf(&b, `<text x="18" y="%.1f" text-anchor="middle" font-size="13" fill="#1f2937" transform="rotate(-90 18 %.1f)">%s</text>`,
			ly, ly, html.EscapeString(opts.YLabel))
	}
	if opts.XLabel != "" {
		fmt.Fprintf(&b, `<text x="%.1f" y="%d" text-anchor="middle" font-size="13" fill="#1f2937">%s</text>`,
			left+plotW/2, cfg.Height-10, html.EscapeString(opts.XLabel))
	}

	b.WriteString("</svg>")
	return b.String()
}

func (r *Renderer) drawBox(b *strings.Builder, box BoxStats, cx, boxW float64, fill string, scaleY func(float64) float64) {
	half := boxW / 2
	capHalf := boxW / 4
	yQ1 := scaleY(box.Q1)
	yQ3 := scaleY(box.Q3)
	yMed := scaleY(box.Median)
	yLow := scaleY(box.WhiskerLow)
	yHigh := scaleY(box.WhiskerHigh)

	// Whisker stems and caps
	fmt.Fprintf(b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#374151" stroke-width="1"/>`,
		cx, yQ3, cx, yHigh)
	fmt.Fprintf(b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#374151" stroke-width="1"/>`,
		cx, yQ1, cx, yLow)
	fmt.Fprintf(b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#374151" stroke-width="1"/>`,
		cx-capHalf, yHigh, cx+capHalf, yHigh)
	fmt.Fprintf(b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#374151" stroke-width="1"/>`,
		cx-capHalf, yLow, cx+capHalf, yLow)

	// Box and median
	fmt.Fprintf(b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" fill-opacity="0.85" stroke="#374151" stroke-width="1"/>`,
		cx-half, yQ3, boxW, yQ1-yQ3, fill)
	fmt.Fprintf(b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#111827" stroke-width="1.5"/>`,
		cx-half, yMed, cx+half, yMed)

	for _, v := range box.Outliers {
		fmt.Fprintf(b, `<circle cx="%.1f" cy="%.1f" r="2.5" fill="none" stroke="#374151" stroke-width="1"/>`,
			cx, scaleY(v))
	}
}

func (r *Renderer) drawXLabel(b *strings.Builder, label string, cx, axisY float64, rotate bool) {
	esc := html.EscapeString(label)
	if rotate {
		y := axisY + 10
		fmt.Fprintf(b, `<text x="%.1f" y="%.1f" text-anchor="end" dominant-baseline="middle" font-size="11" fill="#374151" transform="rotate(-90 %.1f %.1f)">%s</text>`,
			cx, y, cx, y, esc)
		return
	}
	fmt.Fprintf(b, `<text x="%.1f" y="%.1f" text-anchor="middle" font-size="12" fill="#374151">%s</text>`,
		cx, axisY+20, esc)
}

// dataDomain spans whiskers and outliers with a little headroom
func dataDomain(boxes []BoxStats) (float64, float64) {
	lo := math.Inf(1)
	hi := math.Inf(-1)
	for _, box := range boxes {
		lo = math.Min(lo, box.WhiskerLow)
		hi = math.Max(hi, box.WhiskerHigh)
		for _, v := range box.Outliers {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if lo > hi {
		return 0, 1
	}
	if lo == hi {
		return lo - 1, hi + 1
	}
	pad := (hi - lo) * 0.05
	return lo - pad, hi + pad
}

// niceTicks picks round tick values covering [lo, hi]
func niceTicks(lo, hi float64, target int) []float64 {
	if target < 2 {
		target = 2
	}
	step := niceStep((hi - lo) / float64(target))
	var ticks []float64
	for v := math.Ceil(lo/step) * step; v <= hi+step/1e6; v += step {
		ticks = append(ticks, v)
	}
	return ticks
}

// niceStep rounds a raw step up to 1, 2, or 5 times a power of ten
func niceStep(raw float64) float64 {
	if raw <= 0 {
		return 1
	}
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	norm := raw / mag
	switch {
	case norm <= 1:
		return mag
	case norm <= 2:
		return 2 * mag
	case norm <= 5:
		return 5 * mag
	default:
		return 10 * mag
	}
}

func formatTick(v float64) string {
	if math.Abs(v) >= 10000 {
		return fmt.Sprintf("%.0f", v)
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
