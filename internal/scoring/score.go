// internal/scoring/score.go
package scoring

import (
	"fmt"

	"github.com/verdantcare/wellness-backend/internal/models"
)

const (
	SliderMin = 1
	SliderMax = 10

	ScoreMin = 0
	ScoreMax = 100

	// TrendThresholdPct is the fixed classification band in percent. A delta
	// of exactly +2.0 counts as stable, not improved.
	TrendThresholdPct = 2.0
)

type Trend string

const (
	TrendImproved Trend = "improved"
	TrendDeclined Trend = "declined"
	TrendStable   Trend = "stable"
)

// Delta is a comparative percentage change. Defined is false when there is
// no previous value to compare against, or the previous value is zero.
type Delta struct {
	Defined bool    `json:"defined"`
	Percent float64 `json:"percent"`
}

// ValidateSliders checks that every fixed dimension is present and in
// [SliderMin, SliderMax]. Validation happens before any derived value is
// computed.
func ValidateSliders(sliders map[string]int) error {
	for _, dim := range models.SliderDimensions {
		v, ok := sliders[dim]
		if !ok {
			return fmt.Errorf("missing slider dimension %q", dim)
		}
		if v < SliderMin || v > SliderMax {
			return fmt.Errorf("slider %q value %d out of range [%d,%d]", dim, v, SliderMin, SliderMax)
		}
	}
	return nil
}

// ComputeScore converts the five slider values into a bounded score. The
// discomfort dimension is inverted via 11 - v before summing; the sum of the
// five effective values (range [5,50]) is doubled. The clamp is defensive:
// with valid input it never triggers.
func ComputeScore(sliders map[string]int) int {
	sum := 0
	for _, dim := range models.SliderDimensions {
		sum += effectiveValue(dim, sliders[dim])
	}
	return clamp(sum*2, ScoreMin, ScoreMax)
}

// ComputeDelta returns the percentage change from previous to current.
// The delta is undefined when previous is absent or zero; division by zero
// is guarded explicitly and never produces Inf or NaN.
func ComputeDelta(current float64, previous *float64) Delta {
	if previous == nil || *previous == 0 {
		return Delta{}
	}
	return Delta{
		Defined: true,
		Percent: (current - *previous) / *previous * 100,
	}
}

// Classify maps a delta onto the fixed trend bands. An undefined delta has
// no baseline to move from and reads as stable.
func Classify(d Delta) Trend {
	switch {
	case !d.Defined:
		return TrendStable
	case d.Percent > TrendThresholdPct:
		return TrendImproved
	case d.Percent < -TrendThresholdPct:
		return TrendDeclined
	default:
		return TrendStable
	}
}

// Compare classifies each dimension of a check-in against the previous one.
// Dimension values are compared on their effective scale, so a drop in
// discomfort classifies as improved.
func Compare(current, previous map[string]int) map[string]Trend {
	trends := make(map[string]Trend, len(models.SliderDimensions))
	for _, dim := range models.SliderDimensions {
		prev := float64(effectiveValue(dim, previous[dim]))
		cur := float64(effectiveValue(dim, current[dim]))
		trends[dim] = Classify(ComputeDelta(cur, &prev))
	}
	return trends
}

func effectiveValue(dimension string, value int) int {
	if dimension == models.DimensionDiscomfort {
		return SliderMax + 1 - value
	}
	return value
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
