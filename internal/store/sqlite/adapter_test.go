// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cairn Contributors

package sqlite

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeUnitNorm(t *testing.T) {
	vectors := [][]float32{
		{3, 4},
		{1, 0, 0},
		{0.2, -0.7, 1.5, 2.2},
		{1e-3, 1e-3},
	}

	for _, v := range vectors {
		normalized := normalize(v)

		var sum float64
		for _, e := range normalized {
			sum += float64(e) * float64(e)
		}
		assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5, "vector %v should normalize to unit norm", v)
	}
}

func TestNormalizeZeroVectorUnchanged(t *testing.T) {
	zero := []float32{0, 0, 0}
	assert.Equal(t, zero, normalize(zero))
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	v := []float32{3, 4}
	_ = normalize(v)
	assert.Equal(t, []float32{3, 4}, v)
}

func TestNarrowAndWiden(t *testing.T) {
	doubles := []float64{0.25, -1.5, 3}
	floats := narrow(doubles)
	require.Equal(t, []float32{0.25, -1.5, 3}, floats)
	assert.Equal(t, doubles, widen(floats))
}

func TestVectorRoundTrip(t *testing.T) {
	v := []float32{0.1, -2.5, 0, 42.42}

	blob, err := encodeVector(v, false)
	require.NoError(t, err)
	require.Len(t, blob, len(v)*4)

	decoded, err := decodeVector(blob)
	require.NoError(t, err)
	assert.Equal(t, v, decoded)
}

func TestEncodeVectorNormalizes(t *testing.T) {
	blob, err := encodeVector([]float32{3, 4}, true)
	require.NoError(t, err)

	decoded, err := decodeVector(blob)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, float64(decoded[0]), 1e-6)
	assert.InDelta(t, 0.8, float64(decoded[1]), 1e-6)
}

func TestDecodeVectorRejectsTruncatedBlob(t *testing.T) {
	_, err := decodeVector([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestMetadataDocumentRoundTrip(t *testing.T) {
	metadata := map[string]any{
		"department": "eng",
		"level":      float64(4),
		"score":      0.75,
		"active":     true,
	}

	doc, err := toMetadataDocument(metadata)
	require.NoError(t, err)

	decoded, err := fromDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, metadata, decoded)
}

func TestMetadataDocumentNilMap(t *testing.T) {
	doc, err := toMetadataDocument(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", doc)

	decoded, err := fromDocument(doc)
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestFromDocumentEmptyString(t *testing.T) {
	decoded, err := fromDocument("")
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestFromDocumentRejectsMalformedJSON(t *testing.T) {
	_, err := fromDocument(`{"unterminated`)
	require.Error(t, err)
}
