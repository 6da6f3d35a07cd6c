package searcher

import "math"

// puct scores the children of one parent node.
type puct struct {
	exploration float64
}

func newPUCT(cPuct float64, N float64) *puct {
	if N < 0 {
		panic("N cannot be negative")
	}
	return &puct{exploration: cPuct * math.Sqrt(N)}
}

func (p puct) evaluate(q float64, n float64, prior float64) float64 {
	// PUCT = q/n + c*P*sqrt(N)/(1+n), with an unvisited child valued at 0
	mean := 0.0
	if n > 0 {
		mean = q / n
	}
	return mean + p.exploration*prior/(1+n)
}
