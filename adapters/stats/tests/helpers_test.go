package tests

import (
	"math"
)

// testNormals is a tiny deterministic normal generator (LCG + Box-Muller)
// so statistical tests stay reproducible without touching math/rand
type testNormals struct {
	state float64
}

func newTestNormals(seed int64) *testNormals {
	return &testNormals{state: float64(seed)}
}

func (g *testNormals) next() float64 {
	g.state = math.Mod(g.state*1103515245+12345, 2147483648)
	return (g.state + 1) / 2147483649.0
}

func (g *testNormals) norm() float64 {
	u1 := g.next()
	u2 := g.next()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

func (g *testNormals) sample(n int, mean, sd float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = mean + sd*g.norm()
	}
	return out
}
