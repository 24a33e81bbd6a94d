// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cairn Contributors

// Package ingest turns documents into embedded, searchable chunks.
package ingest

import (
	"strings"
)

// Default chunking geometry, in runes.
const (
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 100
)

// Splitter breaks text into chunks of bounded size, preferring to cut at
// paragraph, line, and word boundaries, with a fixed overlap carried
// between neighboring chunks.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
}

// NewSplitter returns a splitter with the given geometry. Non-positive
// size or negative overlap fall back to the defaults; overlap is capped
// below the chunk size.
func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = DefaultChunkOverlap
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 2
	}
	return &Splitter{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

// Split breaks text into chunks of at most the configured size. Leading
// and trailing whitespace is trimmed from every chunk; empty chunks are
// dropped.
func (s *Splitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	runes := []rune(text)
	if len(runes) <= s.chunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + s.chunkSize
		if end >= len(runes) {
			if chunk := strings.TrimSpace(string(runes[start:])); chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		cut := cutPoint(runes, start, end)
		if chunk := strings.TrimSpace(string(runes[start:cut])); chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := cut - s.chunkOverlap
		if next <= start {
			next = cut
		}
		start = next
	}

	return chunks
}

// separators in preference order; the empty string means a hard cut.
var separators = []string{"\n\n", "\n", " "}

// cutPoint finds the best break position in (start, end], scanning for
// the last occurrence of each separator before end and falling back to a
// hard cut at end.
func cutPoint(runes []rune, start, end int) int {
	for _, sep := range separators {
		sepRunes := []rune(sep)
		for i := end - len(sepRunes); i > start; i-- {
			if string(runes[i:i+len(sepRunes)]) == sep {
				return i
			}
		}
	}
	return end
}
