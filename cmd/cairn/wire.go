// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cairn Contributors

package main

import (
	"github.com/cairn-dev/cairn/internal/config"
	"github.com/cairn-dev/cairn/internal/ingest"
	"github.com/cairn-dev/cairn/internal/provider/openai"
	"github.com/cairn-dev/cairn/internal/store/sqlite"
)

// openStore opens the embedding store described by the storage section.
// When the dimension is unset and an OpenAI embedding model is known, its
// vector length fills the gap so the similarity index can be built.
func openStore(cfg *config.Config, client *openai.Client) (*sqlite.EmbeddingStore, error) {
	opts := cfg.StoreOptions()
	if opts.Dimension == 0 && client != nil {
		opts.Dimension = client.Dimensions()
	}
	return sqlite.New(opts)
}

// newOpenAIClient builds the OpenAI client from the openai section.
func newOpenAIClient(cfg *config.Config) (*openai.Client, error) {
	return openai.New(openai.Config{
		APIKey:         cfg.OpenAI.APIKey,
		BaseURL:        cfg.OpenAI.BaseURL,
		EmbeddingModel: cfg.OpenAI.EmbeddingModel,
		ChatModel:      cfg.OpenAI.ChatModel,
	})
}

// newIngestor wires the full ingest pipeline from config.
func newIngestor(cfg *config.Config, s *sqlite.EmbeddingStore, client *openai.Client) *ingest.Ingestor {
	splitter := ingest.NewSplitter(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
	return ingest.NewIngestor(s, client, splitter)
}
