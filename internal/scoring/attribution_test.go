// internal/scoring/attribution_test.go
package scoring

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantcare/wellness-backend/internal/apperrors"
)

func TestResolveDistributesByWeight(t *testing.T) {
	p1, p2 := uuid.New(), uuid.New()

	result, err := Resolve(10.0, []Selection{
		{ProductID: p1, Weight: 0.5},
		{ProductID: p2, Weight: 0.3},
	})
	require.NoError(t, err)

	assert.InDelta(t, 5.0, result.Credits[p1], 1e-9)
	assert.InDelta(t, 3.0, result.Credits[p2], 1e-9)
	assert.InDelta(t, 2.0, result.Unattributed, 1e-9)
}

func TestResolveFullAttributionLeavesNoRemainder(t *testing.T) {
	p1, p2 := uuid.New(), uuid.New()

	result, err := Resolve(-4.0, []Selection{
		{ProductID: p1, Weight: 0.25},
		{ProductID: p2, Weight: 0.75},
	})
	require.NoError(t, err)

	assert.InDelta(t, -1.0, result.Credits[p1], 1e-9)
	assert.InDelta(t, -3.0, result.Credits[p2], 1e-9)
	assert.InDelta(t, 0.0, result.Unattributed, 1e-9)
}

func TestResolveNoSelectionsCreditsEverythingUnattributed(t *testing.T) {
	result, err := Resolve(7.5, nil)
	require.NoError(t, err)

	assert.Empty(t, result.Credits)
	assert.InDelta(t, 7.5, result.Unattributed, 1e-9)
}

func TestResolveZeroWeightsCreditEntireDeltaUnattributed(t *testing.T) {
	p1 := uuid.New()
	result, err := Resolve(6.0, []Selection{{ProductID: p1, Weight: 0}})
	require.NoError(t, err)

	assert.InDelta(t, 0.0, result.Credits[p1], 1e-9)
	assert.InDelta(t, 6.0, result.Unattributed, 1e-9)
}

func TestResolveRejectsOverweight(t *testing.T) {
	_, err := Resolve(10.0, []Selection{
		{ProductID: uuid.New(), Weight: 0.7},
		{ProductID: uuid.New(), Weight: 0.4},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidAttribution))
}

func TestResolveRejectsNegativeWeight(t *testing.T) {
	_, err := Resolve(10.0, []Selection{{ProductID: uuid.New(), Weight: -0.1}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidAttribution))
}

func TestResolveRejectsDuplicateProduct(t *testing.T) {
	p := uuid.New()
	_, err := Resolve(10.0, []Selection{
		{ProductID: p, Weight: 0.2},
		{ProductID: p, Weight: 0.2},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidAttribution))
}

func TestResolveToleratesFloatNoiseAtExactlyOne(t *testing.T) {
	selections := []Selection{
		{ProductID: uuid.New(), Weight: 0.1},
		{ProductID: uuid.New(), Weight: 0.2},
		{ProductID: uuid.New(), Weight: 0.3},
		{ProductID: uuid.New(), Weight: 0.4},
	}
	result, err := Resolve(10.0, selections)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, result.Unattributed, 1e-6)
}
