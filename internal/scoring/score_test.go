// internal/scoring/score_test.go
package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantcare/wellness-backend/internal/models"
)

func sliders(discomfort, mood, energy, clarity, appetite int) map[string]int {
	return map[string]int{
		models.DimensionDiscomfort: discomfort,
		models.DimensionMood:       mood,
		models.DimensionEnergy:     energy,
		models.DimensionClarity:    clarity,
		models.DimensionAppetite:   appetite,
	}
}

func TestComputeScoreExample(t *testing.T) {
	// discomfort 8 inverts to 3; 3+6+6+6+6 = 27; doubled = 54
	s := sliders(8, 6, 6, 6, 6)
	require.NoError(t, ValidateSliders(s))
	assert.Equal(t, 54, ComputeScore(s))
}

func TestComputeScoreBounds(t *testing.T) {
	// Best case: no discomfort, everything else maxed.
	assert.Equal(t, 100, ComputeScore(sliders(1, 10, 10, 10, 10)))
	// Worst case: max discomfort, everything else at the floor.
	assert.Equal(t, 10, ComputeScore(sliders(10, 1, 1, 1, 1)))
}

func TestComputeScoreClampNeverTriggersForValidInput(t *testing.T) {
	// Exhaustive over the whole valid input space: the doubled sum must
	// already be inside [0,100] before clamping.
	for d := SliderMin; d <= SliderMax; d++ {
		for m := SliderMin; m <= SliderMax; m++ {
			for e := SliderMin; e <= SliderMax; e++ {
				for c := SliderMin; c <= SliderMax; c++ {
					for a := SliderMin; a <= SliderMax; a++ {
						raw := ((SliderMax + 1 - d) + m + e + c + a) * 2
						score := ComputeScore(sliders(d, m, e, c, a))
						require.Equal(t, raw, score, "clamp fired for %d/%d/%d/%d/%d", d, m, e, c, a)
						require.GreaterOrEqual(t, score, ScoreMin)
						require.LessOrEqual(t, score, ScoreMax)
					}
				}
			}
		}
	}
}

func TestComputeScoreMonotonicity(t *testing.T) {
	base := sliders(5, 5, 5, 5, 5)
	baseScore := ComputeScore(base)

	// Non-decreasing in each non-inverted dimension.
	for _, dim := range []string{models.DimensionMood, models.DimensionEnergy, models.DimensionClarity, models.DimensionAppetite} {
		bumped := sliders(5, 5, 5, 5, 5)
		bumped[dim]++
		assert.Greater(t, ComputeScore(bumped), baseScore, "dimension %s", dim)
	}

	// Non-increasing in the inverted dimension.
	worse := sliders(6, 5, 5, 5, 5)
	assert.Less(t, ComputeScore(worse), baseScore)
}

func TestValidateSliders(t *testing.T) {
	assert.NoError(t, ValidateSliders(sliders(1, 10, 5, 5, 5)))

	tooLow := sliders(0, 5, 5, 5, 5)
	assert.Error(t, ValidateSliders(tooLow))

	tooHigh := sliders(5, 11, 5, 5, 5)
	assert.Error(t, ValidateSliders(tooHigh))

	missing := sliders(5, 5, 5, 5, 5)
	delete(missing, models.DimensionClarity)
	assert.Error(t, ValidateSliders(missing))
}

func TestComputeDeltaUndefined(t *testing.T) {
	assert.False(t, ComputeDelta(55, nil).Defined)

	zero := 0.0
	d := ComputeDelta(55, &zero)
	assert.False(t, d.Defined)
	assert.Zero(t, d.Percent)
}

func TestComputeDeltaExample(t *testing.T) {
	prev := 50.0
	d := ComputeDelta(55, &prev)
	require.True(t, d.Defined)
	assert.InDelta(t, 10.0, d.Percent, 1e-9)
	assert.Equal(t, TrendImproved, Classify(d))
}

func TestClassifyThresholdBoundaries(t *testing.T) {
	cases := []struct {
		percent float64
		want    Trend
	}{
		{2.1, TrendImproved},
		{2.0, TrendStable}, // +2.0 exactly is stable
		{0.0, TrendStable},
		{-2.0, TrendStable}, // -2.0 exactly is stable
		{-2.1, TrendDeclined},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(Delta{Defined: true, Percent: tc.percent}), "percent %.1f", tc.percent)
	}

	assert.Equal(t, TrendStable, Classify(Delta{}))
}

func TestCompareInvertsDiscomfort(t *testing.T) {
	previous := sliders(8, 5, 5, 5, 5)
	current := sliders(4, 5, 5, 5, 5)

	trends := Compare(current, previous)
	assert.Equal(t, TrendImproved, trends[models.DimensionDiscomfort])
	assert.Equal(t, TrendStable, trends[models.DimensionMood])

	regressed := Compare(previous, current)
	assert.Equal(t, TrendDeclined, regressed[models.DimensionDiscomfort])
}
