package motif

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// WeightedChoice draws an index with probability weights[i] / sum(weights).
func WeightedChoice(r *rand.Rand, weights []float64) (int, error) {
	if len(weights) == 0 {
		return 0, fmt.Errorf("%w: no weights", ErrDegenerateDistribution)
	}
	var total float64
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return 0, fmt.Errorf("%w: weight %d is %v", ErrDegenerateDistribution, i, w)
		}
		total += w
	}
	if total == 0 {
		return 0, fmt.Errorf("%w: all %d weights are zero", ErrDegenerateDistribution, len(weights))
	}

	draw := r.Float64()
	var cumulative float64
	last := 0
	for i, w := range weights {
		if w == 0 {
			continue
		}
		cumulative += w / total
		if draw <= cumulative {
			return i, nil
		}
		last = i
	}
	// rounding left the cumulative mass just under 1
	return last, nil
}
