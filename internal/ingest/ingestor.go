// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cairn Contributors

package ingest

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/cairn-dev/cairn/internal/provider"
	"github.com/cairn-dev/cairn/internal/store"
	cairnerr "github.com/cairn-dev/cairn/pkg/errors"
)

// Ingestor extracts, chunks, embeds, and stores documents.
type Ingestor struct {
	store    store.EmbeddingStore
	embedder provider.Embedder
	splitter *Splitter
	logger   *slog.Logger
}

// NewIngestor wires an ingestor from its parts. A nil splitter gets the
// default geometry.
func NewIngestor(s store.EmbeddingStore, e provider.Embedder, splitter *Splitter) *Ingestor {
	if splitter == nil {
		splitter = NewSplitter(DefaultChunkSize, DefaultChunkOverlap)
	}
	return &Ingestor{
		store:    s,
		embedder: e,
		splitter: splitter,
		logger:   slog.Default(),
	}
}

// IngestFile extracts the document at path, splits it into chunks,
// embeds each chunk, and stores the batch. It returns the stored ids in
// chunk order. Each chunk carries source and chunk-index metadata.
func (in *Ingestor) IngestFile(ctx context.Context, path string) ([]string, error) {
	text, err := ExtractText(path)
	if err != nil {
		return nil, err
	}

	chunks := in.splitter.Split(text)
	if len(chunks) == 0 {
		return nil, cairnerr.Errorf(cairnerr.CodeIngestEmptyDocument, "document %s contains no text", path)
	}

	embeddings, err := in.embedder.EmbedAll(ctx, chunks)
	if err != nil {
		return nil, err
	}

	source := filepath.Base(path)
	segments := make([]*store.TextSegment, len(chunks))
	for i, chunk := range chunks {
		segments[i] = &store.TextSegment{
			Text: chunk,
			Metadata: map[string]any{
				"source": source,
				"chunk":  i,
			},
		}
	}

	ids, err := in.store.AddAll(ctx, embeddings, segments)
	if err != nil {
		return nil, err
	}

	in.logger.InfoContext(ctx, "document ingested", "source", source, "chunks", len(chunks))
	return ids, nil
}

// RemoveSource deletes every chunk previously ingested from the named
// source file.
func (in *Ingestor) RemoveSource(ctx context.Context, source string) error {
	return in.store.RemoveAllMatching(ctx, store.Eq("source", source))
}
