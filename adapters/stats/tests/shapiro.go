package tests

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"amesdash/domain/core"
)

// Royston (1995) polynomial constants, AS R94
var (
	shapiroC1 = []float64{0, 0.221157, -0.147981, -2.071190, 4.434685, -2.706056}
	shapiroC2 = []float64{0, 0.042981, -0.293762, -1.752461, 5.682633, -3.582633}
	shapiroC3 = []float64{0.544, -0.39978, 0.025054, -6.714e-4}
	shapiroC4 = []float64{1.3822, -0.77857, 0.062767, -0.0020322}
	shapiroC5 = []float64{-1.5861, -0.31082, -0.083751, 0.0038915}
	shapiroC6 = []float64{-0.4803, -0.082676, 0.0030302}
	shapiroG  = []float64{-2.273, 0.459}
)

const (
	shapiroPi6  = 1.90985931710274 // 6/pi
	shapiroStqr = 1.04719755119660 // asin(sqrt(3/4))
)

// ShapiroWilk tests a sample for normality. Returns the W statistic and
// its p-value via Royston's approximation, which is calibrated for
// 3 <= n <= 5000; beyond that the p-value keeps the asymptotic form and
// grows conservative, it does not fail.
func ShapiroWilk(sample []float64) (w, p float64, err error) {
	n := len(sample)
	if n < 3 {
		return 0, 0, core.NewSampleSizeError(n, 3)
	}

	x := make([]float64, n)
	copy(x, sample)
	sort.Float64s(x)
	if x[n-1]-x[0] == 0 {
		return 0, 0, fmt.Errorf("%w: all observations are identical", core.ErrInsufficientData)
	}

	// ---- Normal order statistic approximations (Blom scores) ----
	m := make([]float64, n)
	var ssq float64
	for i := range m {
		m[i] = distuv.UnitNormal.Quantile((float64(i+1) - 0.375) / (float64(n) + 0.25))
		ssq += m[i] * m[i]
	}

	// ---- Weight vector: polynomial-corrected at the extremes ----
	a := make([]float64, n)
	if n == 3 {
		a[0] = -math.Sqrt(0.5)
		a[2] = math.Sqrt(0.5)
	} else {
		rsn := 1 / math.Sqrt(float64(n))
		aN := polyval(shapiroC1, rsn) + m[n-1]/math.Sqrt(ssq)
		if n > 5 {
			aN1 := polyval(shapiroC2, rsn) + m[n-2]/math.Sqrt(ssq)
			fac := math.Sqrt((ssq - 2*m[n-1]*m[n-1] - 2*m[n-2]*m[n-2]) /
				(1 - 2*aN*aN - 2*aN1*aN1))
			a[n-1], a[n-2] = aN, aN1
			a[0], a[1] = -aN, -aN1
			for i := 2; i < n-2; i++ {
				a[i] = m[i] / fac
			}
		} else {
			fac := math.Sqrt((ssq - 2*m[n-1]*m[n-1]) / (1 - 2*aN*aN))
			a[n-1] = aN
			a[0] = -aN
			for i := 1; i < n-1; i++ {
				a[i] = m[i] / fac
			}
		}
	}

	// ---- W: squared correlation between weights and order statistics ----
	mean := stat.Mean(x, nil)
	var b, ss, ssa float64
	for i := range x {
		b += a[i] * x[i]
		d := x[i] - mean
		ss += d * d
		ssa += a[i] * a[i]
	}
	w = b * b / (ssa * ss)
	if w > 1 {
		w = 1
	}

	// ---- Normalizing transformation of W to a standard normal z ----
	if n == 3 {
		p = shapiroPi6 * (math.Asin(math.Sqrt(w)) - shapiroStqr)
		return w, clampP(p), nil
	}

	w1 := 1 - w
	if w1 <= 1e-99 {
		return w, 1, nil
	}
	y := math.Log(w1)

	var z float64
	if n <= 11 {
		gamma := shapiroG[0] + shapiroG[1]*float64(n)
		if y >= gamma {
			return w, 0, nil
		}
		y = -math.Log(gamma - y)
		z = (y - polyval(shapiroC3, float64(n))) / math.Exp(polyval(shapiroC4, float64(n)))
	} else {
		logN := math.Log(float64(n))
		z = (y - polyval(shapiroC5, logN)) / math.Exp(polyval(shapiroC6, logN))
	}

	p = clampP(1 - distuv.UnitNormal.CDF(z))
	return w, p, nil
}

// polyval evaluates a polynomial with coefficients in ascending powers
func polyval(coeffs []float64, x float64) float64 {
	var sum, pow float64
	pow = 1
	for _, c := range coeffs {
		sum += c * pow
		pow *= x
	}
	return sum
}
