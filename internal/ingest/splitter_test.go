// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cairn Contributors

package ingest_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cairn-dev/cairn/internal/ingest"
)

func TestSplitShortTextSingleChunk(t *testing.T) {
	s := ingest.NewSplitter(100, 10)
	chunks := s.Split("a short document")
	assert.Equal(t, []string{"a short document"}, chunks)
}

func TestSplitEmptyText(t *testing.T) {
	s := ingest.NewSplitter(100, 10)
	assert.Nil(t, s.Split(""))
	assert.Nil(t, s.Split("   \n\t  "))
}

func TestSplitRespectsChunkSize(t *testing.T) {
	s := ingest.NewSplitter(50, 10)
	text := strings.Repeat("lorem ipsum dolor sit amet ", 40)

	chunks := s.Split(text)
	require.Greater(t, len(chunks), 1)
	for i, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), 50, "chunk %d exceeds size", i)
		assert.NotEmpty(t, chunk)
	}
}

func TestSplitPrefersParagraphBoundary(t *testing.T) {
	s := ingest.NewSplitter(20, 0)
	chunks := s.Split("first paragraph" + "\n\n" + "second paragraph")

	require.Len(t, chunks, 2)
	assert.Equal(t, "first paragraph", chunks[0])
	assert.Equal(t, "second paragraph", chunks[1])
}

func TestSplitHardCutWithoutSeparators(t *testing.T) {
	s := ingest.NewSplitter(20, 0)
	chunks := s.Split(strings.Repeat("a", 50))

	require.Len(t, chunks, 3)
	assert.Equal(t, strings.Repeat("a", 20), chunks[0])
	assert.Equal(t, strings.Repeat("a", 20), chunks[1])
	assert.Equal(t, strings.Repeat("a", 10), chunks[2])
}

func TestSplitCoversWholeText(t *testing.T) {
	s := ingest.NewSplitter(40, 10)
	words := []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel", "india", "juliet"}
	text := strings.Join(words, " ")

	chunks := s.Split(text)
	joined := strings.Join(chunks, " ")
	for _, w := range words {
		assert.Contains(t, joined, w)
	}
}

func TestNewSplitterClampsGeometry(t *testing.T) {
	// Zero size falls back to defaults; oversized overlap is capped so
	// splitting still makes forward progress.
	s := ingest.NewSplitter(0, -1)
	chunks := s.Split(strings.Repeat("word ", 500))
	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), ingest.DefaultChunkSize)
	}

	s = ingest.NewSplitter(10, 50)
	chunks = s.Split(strings.Repeat("x", 100))
	require.NotEmpty(t, chunks)
}
