package ranking

import (
	"fmt"
	"math"
)

// NormalizationMethod selects how raw signal columns are rescaled
type NormalizationMethod string

const (
	MethodMinMax NormalizationMethod = "minmax"
	MethodZScore NormalizationMethod = "zscore"
)

// midpoint score used when a column cannot be spread (all values equal)
const neutralScore = 50.0

// zClip bounds z-scores before rescaling
const zClip = 3.0

// ParseNormalizationMethod validates a method name from configuration
func ParseNormalizationMethod(s string) (NormalizationMethod, error) {
	switch NormalizationMethod(s) {
	case MethodMinMax, MethodZScore:
		return NormalizationMethod(s), nil
	default:
		return "", fmt.Errorf("unknown normalization method: %q", s)
	}
}

// Normalize rescales a raw signal column to [0, 100] relative to the
// spread observed across the batch. The input slice is not mutated.
// An empty input yields an empty output; a column with no spread
// collapses to the midpoint.
func Normalize(values []float64, method NormalizationMethod) []float64 {
	if len(values) == 0 {
		return []float64{}
	}

	switch method {
	case MethodZScore:
		return normalizeZScore(values)
	default:
		return normalizeMinMax(values)
	}
}

func normalizeMinMax(values []float64) []float64 {
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	scores := make([]float64, len(values))
	if max == min {
		for i := range scores {
			scores[i] = neutralScore
		}
		return scores
	}

	for i, v := range values {
		scores[i] = 100 * (v - min) / (max - min)
	}
	return scores
}

func normalizeZScore(values []float64) []float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	stddev := math.Sqrt(variance / float64(len(values)))

	scores := make([]float64, len(values))
	if stddev == 0 {
		for i := range scores {
			scores[i] = neutralScore
		}
		return scores
	}

	for i, v := range values {
		z := (v - mean) / stddev
		if z > zClip {
			z = zClip
		} else if z < -zClip {
			z = -zClip
		}
		// [-zClip, zClip] -> [0, 100]
		scores[i] = (z + zClip) / (2 * zClip) * 100
	}
	return scores
}
