// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cairn Contributors

// Package openai implements provider.Embedder and provider.Completer on
// the OpenAI API.
package openai

import (
	"context"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/cairn-dev/cairn/internal/provider"
	cairnerr "github.com/cairn-dev/cairn/pkg/errors"
)

// Config holds OpenAI client configuration.
type Config struct {
	APIKey  string
	BaseURL string // optional, useful for testing against a mock server

	EmbeddingModel string
	ChatModel      string
}

// embeddingDimensions maps known embedding models to their vector length.
var embeddingDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// Client implements provider.Embedder and provider.Completer using the
// OpenAI SDK.
type Client struct {
	client openaisdk.Client
	config Config
}

var (
	_ provider.Embedder  = (*Client)(nil)
	_ provider.Completer = (*Client)(nil)
)

// New creates a new OpenAI client. Returns an error if the API key is missing.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, cairnerr.New(cairnerr.CodeProviderRequestInvalid, "openai: missing api_key in config")
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = "text-embedding-3-small"
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = "gpt-4o-mini"
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	client := openaisdk.NewClient(opts...)
	return &Client{client: client, config: cfg}, nil
}

// Embed returns the embedding for a single text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := c.EmbedAll(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedAll returns embeddings for a batch of texts, in input order.
func (c *Client) EmbedAll(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, cairnerr.New(cairnerr.CodeProviderRequestInvalid, "openai: empty embedding batch")
	}

	resp, err := c.client.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Model: openaisdk.EmbeddingModel(c.config.EmbeddingModel),
		Input: openaisdk.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
	})
	if err != nil {
		return nil, cairnerr.Wrap(err, cairnerr.CodeProviderUpstreamFailure, "openai: embedding request failed")
	}
	if len(resp.Data) != len(texts) {
		return nil, cairnerr.Errorf(cairnerr.CodeProviderResponseInvalid,
			"openai: expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	// The API may return data out of order; place each by its index.
	embeddings := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(texts) {
			return nil, cairnerr.Errorf(cairnerr.CodeProviderResponseInvalid,
				"openai: embedding index %d out of range", d.Index)
		}
		vec := make([]float32, len(d.Embedding))
		for i, e := range d.Embedding {
			vec[i] = float32(e)
		}
		embeddings[d.Index] = vec
	}
	for i, e := range embeddings {
		if e == nil {
			return nil, cairnerr.Errorf(cairnerr.CodeProviderResponseInvalid,
				"openai: missing embedding for input %d", i)
		}
	}

	return embeddings, nil
}

// Dimensions reports the vector length of the configured embedding model,
// or 0 for models not in the known set.
func (c *Client) Dimensions() int {
	return embeddingDimensions[c.config.EmbeddingModel]
}

// Complete sends the prompt as a single user message and returns the
// first choice's content.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: shared.ChatModel(c.config.ChatModel),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", cairnerr.Wrap(err, cairnerr.CodeProviderUpstreamFailure, "openai: completion request failed")
	}
	if len(resp.Choices) == 0 {
		return "", cairnerr.New(cairnerr.CodeProviderResponseInvalid, "openai: completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
