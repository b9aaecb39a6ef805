package tests

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"

	"amesdash/domain/core"
	"amesdash/domain/housing"
	"amesdash/domain/stats"
)

// KruskalWallis runs the rank-based omnibus H-test over the groups. Ranks
// are averaged over ties and H carries the usual tie correction; the
// p-value comes from the chi-squared approximation with k-1 degrees of
// freedom.
func KruskalWallis(groups []housing.Group) (*stats.OmnibusResult, error) {
	if len(groups) < 2 {
		return nil, core.ErrInsufficientGroups
	}

	n := 0
	for _, g := range groups {
		if len(g.Values) == 0 {
			return nil, fmt.Errorf("%w: group %q is empty", core.ErrInsufficientData, g.Label)
		}
		n += len(g.Values)
	}

	pooled := make([]float64, 0, n)
	for _, g := range groups {
		pooled = append(pooled, g.Values...)
	}
	ranks := rankAverage(pooled)

	// Sum of ranks per group, walking the pooled layout
	h := 0.0
	offset := 0
	for _, g := range groups {
		var rankSum float64
		for i := range g.Values {
			rankSum += ranks[offset+i]
		}
		offset += len(g.Values)
		h += rankSum * rankSum / float64(len(g.Values))
	}

	nf := float64(n)
	h = 12.0/(nf*(nf+1))*h - 3*(nf+1)

	// Tie correction: divide by 1 - sum(t^3 - t) / (N^3 - N)
	correction := 1 - tieCorrection(pooled)/(nf*nf*nf-nf)
	if correction <= 0 {
		return nil, fmt.Errorf("%w: all observations are identical", core.ErrInsufficientData)
	}
	h /= correction
	if h < 0 {
		// Floating point noise on near-flat data
		h = 0
	}

	df := len(groups) - 1
	chiDist := distuv.ChiSquared{K: float64(df)}
	pValue := clampP(1 - chiDist.CDF(h))

	result, err := stats.NewOmnibusResult(stats.MethodKruskalWallis, h, pValue, n, len(groups))
	if err != nil {
		return nil, err
	}
	result.DF = df
	return result, nil
}
