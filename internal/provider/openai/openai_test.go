// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cairn Contributors

package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cairn-dev/cairn/internal/provider"
	"github.com/cairn-dev/cairn/internal/provider/openai"
	cairnerr "github.com/cairn-dev/cairn/pkg/errors"
)

var (
	_ provider.Embedder  = (*openai.Client)(nil)
	_ provider.Completer = (*openai.Client)(nil)
)

func TestNewMissingAPIKey(t *testing.T) {
	_, err := openai.New(openai.Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
	assert.True(t, cairnerr.HasCode(err, cairnerr.CodeProviderRequestInvalid))
}

func TestDimensionsKnownModels(t *testing.T) {
	c, err := openai.New(openai.Config{APIKey: "test-key", EmbeddingModel: "text-embedding-3-large"})
	require.NoError(t, err)
	assert.Equal(t, 3072, c.Dimensions())

	c, err = openai.New(openai.Config{APIKey: "test-key"})
	require.NoError(t, err)
	assert.Equal(t, 1536, c.Dimensions(), "default model is text-embedding-3-small")

	c, err = openai.New(openai.Config{APIKey: "test-key", EmbeddingModel: "custom-embedder"})
	require.NoError(t, err)
	assert.Equal(t, 0, c.Dimensions())
}

func TestEmbedAllEmptyBatch(t *testing.T) {
	c, err := openai.New(openai.Config{APIKey: "test-key"})
	require.NoError(t, err)

	_, err = c.EmbedAll(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, cairnerr.HasCode(err, cairnerr.CodeProviderRequestInvalid))
}

func TestEmbedAllAgainstMockServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embeddings", r.URL.Path)

		var body struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Input, 2)

		// Answer out of order to exercise index-based placement.
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"object": "list",
			"model": "text-embedding-3-small",
			"data": [
				{"object": "embedding", "index": 1, "embedding": [0.0, 1.0]},
				{"object": "embedding", "index": 0, "embedding": [1.0, 0.0]}
			],
			"usage": {"prompt_tokens": 4, "total_tokens": 4}
		}`))
	}))
	defer srv.Close()

	c, err := openai.New(openai.Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	embeddings, err := c.EmbedAll(context.Background(), []string{"alpha", "beta"})
	require.NoError(t, err)
	require.Len(t, embeddings, 2)
	assert.Equal(t, []float32{1, 0}, embeddings[0])
	assert.Equal(t, []float32{0, 1}, embeddings[1])
}

func TestEmbedSingle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"object": "list",
			"model": "text-embedding-3-small",
			"data": [{"object": "embedding", "index": 0, "embedding": [0.5, 0.5]}],
			"usage": {"prompt_tokens": 2, "total_tokens": 2}
		}`))
	}))
	defer srv.Close()

	c, err := openai.New(openai.Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	embedding, err := c.Embed(context.Background(), "alpha")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5}, embedding)
}

func TestEmbedAllCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"object": "list",
			"model": "text-embedding-3-small",
			"data": [{"object": "embedding", "index": 0, "embedding": [1.0]}],
			"usage": {"prompt_tokens": 4, "total_tokens": 4}
		}`))
	}))
	defer srv.Close()

	c, err := openai.New(openai.Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.EmbedAll(context.Background(), []string{"alpha", "beta"})
	require.Error(t, err)
	assert.True(t, cairnerr.HasCode(err, cairnerr.CodeProviderResponseInvalid))
}

func TestCompleteAgainstMockServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o-mini",
			"choices": [{
				"index": 0,
				"message": {"role": "assistant", "content": "Paris."},
				"finish_reason": "stop"
			}],
			"usage": {"prompt_tokens": 8, "completion_tokens": 2, "total_tokens": 10}
		}`))
	}))
	defer srv.Close()

	c, err := openai.New(openai.Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	answer, err := c.Complete(context.Background(), "What is the capital of France?")
	require.NoError(t, err)
	assert.Equal(t, "Paris.", answer)
}

func TestCompleteUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// 400 is not retried by the SDK, keeping the test fast.
		http.Error(w, `{"error": {"message": "bad request"}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c, err := openai.New(openai.Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "hello")
	require.Error(t, err)
	assert.True(t, cairnerr.IsUpstreamFailure(err))
}
