// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cairn Contributors

// Package store defines the embedding store contract and the metadata
// filter expression tree shared by its backends.
package store

import "context"

// EmbeddingStore persists embeddings with their source text and metadata,
// and answers nearest-neighbor queries. Implementations are stateless
// between calls; each operation uses one pooled connection for its
// duration. Repeat adds with the same id replace the stored row (upsert).
type EmbeddingStore interface {
	// Add stores a single embedding under a generated id and returns it.
	Add(ctx context.Context, embedding []float32) (string, error)

	// AddWithID stores a single embedding under the given id.
	AddWithID(ctx context.Context, id string, embedding []float32) error

	// AddSegment stores an embedding together with the text it was
	// produced from, under a generated id.
	AddSegment(ctx context.Context, embedding []float32, segment *TextSegment) (string, error)

	// AddAll upserts a batch in one transaction and returns ids in input
	// order. segments may be nil; when given it must match embeddings in
	// length. An empty batch is a logged no-op, not an error.
	AddAll(ctx context.Context, embeddings [][]float32, segments []*TextSegment) ([]string, error)

	// Remove deletes one row by id. Deleting an absent id is not an error.
	Remove(ctx context.Context, id string) error

	// RemoveAll deletes every row whose id is in ids. An empty set deletes
	// nothing and does not error.
	RemoveAll(ctx context.Context, ids []string) error

	// RemoveAllMatching deletes every row whose metadata satisfies filter.
	// A nil filter deletes every row.
	RemoveAllMatching(ctx context.Context, filter Filter) error

	// RemoveEverything clears the table on the engine's fast path.
	RemoveEverything(ctx context.Context) error

	// Search returns the nearest stored embeddings for the request, in
	// descending score order.
	Search(ctx context.Context, req SearchRequest) (*SearchResult, error)

	Close() error
}
