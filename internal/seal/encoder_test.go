// internal/seal/encoder_test.go
package seal

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantcare/wellness-backend/internal/apperrors"
)

func TestEncodeDeterministic(t *testing.T) {
	enc := NewEncoder(DefaultConfig())
	id := uuid.MustParse("7f9c24e5-2f31-4bd5-9f58-6a4a6e1c9a01")

	first, err := enc.Encode(id)
	require.NoError(t, err)
	second, err := enc.Encode(id)
	require.NoError(t, err)

	assert.Equal(t, first.PayloadHash, second.PayloadHash)
	assert.True(t, bytes.Equal(first.PNG, second.PNG))
	assert.Equal(t, PayloadHash(id), first.PayloadHash)
}

func TestEncodeDistinctProductsDistinctHashes(t *testing.T) {
	enc := NewEncoder(DefaultConfig())

	a, err := enc.Encode(uuid.New())
	require.NoError(t, err)
	b, err := enc.Encode(uuid.New())
	require.NoError(t, err)

	assert.NotEqual(t, a.PayloadHash, b.PayloadHash)
}

func TestEncodeDefaultGeometryNeedsNoRelocation(t *testing.T) {
	enc := NewEncoder(DefaultConfig())

	artifact, err := enc.Encode(uuid.New())
	require.NoError(t, err)

	assert.Zero(t, artifact.Relocated)
	assert.NotEmpty(t, artifact.PNG)
	assert.Len(t, artifact.PayloadHash, 64)
}

func TestEncodeFailsWhenSilhouetteClipsStructure(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SilhouetteScale = 0.5
	enc := NewEncoder(cfg)

	_, err := enc.Encode(uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrEncodingFailure))
}

func TestEncodeRejectsNilID(t *testing.T) {
	enc := NewEncoder(DefaultConfig())
	_, err := enc.Encode(uuid.Nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrEncodingFailure))
}

func TestNearestFreeCellIsDeterministicAndInBounds(t *testing.T) {
	const canvas = 40
	outline := newSilhouette(canvas, 24, 1.0)
	occupied := map[[2]int]bool{}

	stray := [2]int{0, 0} // far corner, outside the outline
	first, ok := nearestFreeCell(stray, canvas, outline, occupied)
	require.True(t, ok)
	assert.True(t, outline.contains(first[0], first[1]))

	again, ok := nearestFreeCell(stray, canvas, outline, map[[2]int]bool{})
	require.True(t, ok)
	assert.Equal(t, first, again)

	// Occupying the chosen cell pushes the next stray to a different cell.
	occupied[first] = true
	next, ok := nearestFreeCell(stray, canvas, outline, occupied)
	require.True(t, ok)
	assert.NotEqual(t, first, next)
	assert.True(t, outline.contains(next[0], next[1]))
}

func TestSilhouetteContainsCenteredGridAtDefaultScale(t *testing.T) {
	const n = 33
	canvas := 54 // ceil(33 * 1.64)
	offset := (canvas - n) / 2
	outline := newSilhouette(canvas, n, 1.0)

	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			require.True(t, outline.contains(offset+x, offset+y), "cell (%d,%d) escaped the outline", x, y)
		}
	}
}
