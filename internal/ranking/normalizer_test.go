package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMinMax(t *testing.T) {
	scores := Normalize([]float64{3.0, -1.0, 1.0}, MethodMinMax)

	require.Len(t, scores, 3)
	assert.Equal(t, 100.0, scores[0])
	assert.Equal(t, 0.0, scores[1])
	assert.Equal(t, 50.0, scores[2])
}

func TestNormalizeMinMaxAllEqual(t *testing.T) {
	scores := Normalize([]float64{2.5, 2.5, 2.5}, MethodMinMax)

	for _, s := range scores {
		assert.Equal(t, 50.0, s, "equal raw values should collapse to midpoint")
	}
}

func TestNormalizeEmptyAndSingle(t *testing.T) {
	assert.Empty(t, Normalize(nil, MethodMinMax))
	assert.Empty(t, Normalize(nil, MethodZScore))

	single := Normalize([]float64{42.0}, MethodMinMax)
	require.Len(t, single, 1)
	assert.Equal(t, 50.0, single[0])
}

func TestNormalizeBounds(t *testing.T) {
	values := []float64{-12.3, 0.0, 0.1, 4.4, 99.0, -0.5}

	for _, method := range []NormalizationMethod{MethodMinMax, MethodZScore} {
		scores := Normalize(values, method)
		require.Len(t, scores, len(values))
		for i, s := range scores {
			assert.GreaterOrEqual(t, s, 0.0, "method %s index %d", method, i)
			assert.LessOrEqual(t, s, 100.0, "method %s index %d", method, i)
		}
	}
}

func TestNormalizeZScoreZeroStddev(t *testing.T) {
	scores := Normalize([]float64{1.0, 1.0}, MethodZScore)

	for _, s := range scores {
		assert.Equal(t, 50.0, s)
	}
}

func TestNormalizeZScoreClipsOutliers(t *testing.T) {
	// One extreme outlier among near-identical values
	values := []float64{0, 0, 0, 0, 0, 0, 0, 0, 0, 1000}
	scores := Normalize(values, MethodZScore)

	assert.Equal(t, 100.0, scores[9], "clipped outlier should map to the top of the range")
	for i := 0; i < 9; i++ {
		assert.GreaterOrEqual(t, scores[i], 0.0)
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	values := []float64{5.0, -2.0, 3.0}
	Normalize(values, MethodMinMax)

	assert.Equal(t, []float64{5.0, -2.0, 3.0}, values)
}

func TestParseNormalizationMethod(t *testing.T) {
	m, err := ParseNormalizationMethod("minmax")
	require.NoError(t, err)
	assert.Equal(t, MethodMinMax, m)

	m, err = ParseNormalizationMethod("zscore")
	require.NoError(t, err)
	assert.Equal(t, MethodZScore, m)

	_, err = ParseNormalizationMethod("percentile")
	assert.Error(t, err)
}
