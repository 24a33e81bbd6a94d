// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cairn Contributors

// Package provider defines the model-facing interfaces Cairn consumes:
// embedding text into vectors and completing prompts.
package provider

import (
	"context"
)

// Embedder turns text into embedding vectors.
type Embedder interface {
	// Embed returns the embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedAll returns embeddings for a batch of texts, in input order.
	EmbedAll(ctx context.Context, texts []string) ([][]float32, error)
	// Dimensions reports the vector length this embedder produces,
	// or 0 when unknown.
	Dimensions() int
}

// Completer generates a text completion for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
