package tests

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"amesdash/domain/core"
	"amesdash/domain/housing"
)

// Levene tests variance homogeneity across groups using median centering
// (the Brown-Forsythe form, which is what the usual library default does).
// Returns the W statistic and the p-value from F(k-1, N-k).
func Levene(groups []housing.Group) (w, p float64, err error) {
	k := len(groups)
	if k < 2 {
		return 0, 0, core.ErrInsufficientGroups
	}

	n := 0
	for _, g := range groups {
		if len(g.Values) == 0 {
			return 0, 0, fmt.Errorf("%w: group %q is empty", core.ErrInsufficientData, g.Label)
		}
		n += len(g.Values)
	}
	if n <= k {
		return 0, 0, core.ErrInsufficientData
	}

	// Absolute deviations from the group median
	z := make([][]float64, k)
	zMeans := make([]float64, k)
	var zGrand float64
	for i, g := range groups {
		med, medErr := stats.Median(g.Values)
		if medErr != nil {
			return 0, 0, fmt.Errorf("median of group %q: %w", g.Label, medErr)
		}
		z[i] = make([]float64, len(g.Values))
		var sum float64
		for j, v := range g.Values {
			z[i][j] = math.Abs(v - med)
			sum += z[i][j]
		}
		zMeans[i] = sum / float64(len(g.Values))
		zGrand += sum
	}
	zGrand /= float64(n)

	var between, within float64
	for i, g := range groups {
		diff := zMeans[i] - zGrand
		between += float64(len(g.Values)) * diff * diff
		for _, zv := range z[i] {
			d := zv - zMeans[i]
			within += d * d
		}
	}

	if within <= 0 {
		// Deviations are constant within every group; the spread carries
		// no information either way.
		return 0, 0, fmt.Errorf("%w: zero within-group deviation spread", core.ErrInsufficientData)
	}

	w = (float64(n-k) / float64(k-1)) * (between / within)
	fDist := distuv.F{D1: float64(k - 1), D2: float64(n - k)}
	p = clampP(1 - fDist.CDF(w))
	return w, p, nil
}
