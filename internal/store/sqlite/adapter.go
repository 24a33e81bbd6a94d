// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cairn Contributors

package sqlite

import (
	"encoding/binary"
	"encoding/json"
	"math"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"

	cairnerr "github.com/cairn-dev/cairn/pkg/errors"
)

// narrow converts a double-precision vector, as produced by embedding
// providers, to the single-precision representation stored on disk.
func narrow(vector []float64) []float32 {
	out := make([]float32, len(vector))
	for i, v := range vector {
		out[i] = float32(v)
	}
	return out
}

// widen converts a stored single-precision vector back to double precision.
func widen(vector []float32) []float64 {
	out := make([]float64, len(vector))
	for i, v := range vector {
		out[i] = float64(v)
	}
	return out
}

// normalize returns the L2-normalized copy of v. The zero vector is
// returned unchanged rather than dividing by zero.
func normalize(v []float32) []float32 {
	var squaredSum float64
	for _, e := range v {
		squaredSum += float64(e) * float64(e)
	}

	out := make([]float32, len(v))
	magnitude := math.Sqrt(squaredSum)
	if magnitude == 0 {
		copy(out, v)
		return out
	}

	multiplier := 1 / magnitude
	for i, e := range v {
		out[i] = float32(float64(e) * multiplier)
	}
	return out
}

// encodeVector serializes a vector into sqlite-vec's native blob format,
// optionally L2-normalizing it first.
func encodeVector(vector []float32, normalizeFirst bool) ([]byte, error) {
	if normalizeFirst {
		vector = normalize(vector)
	}
	blob, err := sqlite_vec.SerializeFloat32(vector)
	if err != nil {
		return nil, cairnerr.Wrapf(err, cairnerr.CodeStoreVectorInvalid, "serializing %d-dimensional vector", len(vector))
	}
	return blob, nil
}

// decodeVector is the inverse of encodeVector: little-endian float32
// components, four bytes each. The bindings only expose serialization, so
// the decode side is done here.
func decodeVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, cairnerr.Errorf(cairnerr.CodeStoreVectorInvalid, "vector blob length %d is not a multiple of 4", len(blob))
	}
	out := make([]float32, len(blob)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return out, nil
}

// toMetadataDocument renders a metadata map as a JSON document, preserving
// each value's native scalar type. A nil or empty map yields "{}".
func toMetadataDocument(metadata map[string]any) (string, error) {
	if len(metadata) == 0 {
		return "{}", nil
	}
	doc, err := json.Marshal(metadata)
	if err != nil {
		return "", cairnerr.Wrap(err, cairnerr.CodeStoreMetadataInvalid, "marshalling metadata document")
	}
	return string(doc), nil
}

// fromDocument decodes a stored metadata document. Strings decode to
// string, numbers to float64, booleans to bool, matching encoding/json.
func fromDocument(doc string) (map[string]any, error) {
	if doc == "" || doc == "{}" {
		return map[string]any{}, nil
	}
	var metadata map[string]any
	if err := json.Unmarshal([]byte(doc), &metadata); err != nil {
		return nil, cairnerr.Wrap(err, cairnerr.CodeStoreMetadataInvalid, "unmarshalling metadata document")
	}
	return metadata, nil
}
