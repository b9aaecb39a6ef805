package tests

import (
	"gonum.org/v1/gonum/stat"

	"amesdash/domain/core"
	"amesdash/domain/housing"
)

// oneWayFit is the fitted one-way grouping model: per-group means against
// the grand mean, with the sum-of-squares decomposition both the residual
// diagnostics and the ANOVA table are built from.
type oneWayFit struct {
	GrandMean  float64
	GroupMeans []float64
	Residuals  []float64
	SSBetween  float64
	SSWithin   float64
	DFBetween  int
	DFWithin   int
	N          int
}

// fitOneWay fits target ~ group over the partitions. Needs at least two
// groups and more observations than groups, otherwise the within-group
// degrees of freedom vanish.
func fitOneWay(groups []housing.Group) (*oneWayFit, error) {
	if len(groups) < 2 {
		return nil, core.ErrInsufficientGroups
	}

	n := 0
	for _, g := range groups {
		n += len(g.Values)
	}
	if n <= len(groups) {
		return nil, core.ErrInsufficientData
	}

	pooled := make([]float64, 0, n)
	for _, g := range groups {
		pooled = append(pooled, g.Values...)
	}
	grand := stat.Mean(pooled, nil)

	fit := &oneWayFit{
		GrandMean:  grand,
		GroupMeans: make([]float64, len(groups)),
		Residuals:  make([]float64, 0, n),
		DFBetween:  len(groups) - 1,
		DFWithin:   n - len(groups),
		N:          n,
	}

	for i, g := range groups {
		mean := stat.Mean(g.Values, nil)
		fit.GroupMeans[i] = mean

		diff := mean - grand
		fit.SSBetween += float64(len(g.Values)) * diff * diff

		for _, v := range g.Values {
			r := v - mean
			fit.Residuals = append(fit.Residuals, r)
			fit.SSWithin += r * r
		}
	}

	return fit, nil
}
