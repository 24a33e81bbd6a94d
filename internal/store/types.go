// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cairn Contributors

package store

// DistanceType selects the distance function used for similarity scoring.
type DistanceType string

const (
	DistanceCosine    DistanceType = "COSINE"
	DistanceDot       DistanceType = "DOT"
	DistanceEuclidean DistanceType = "EUCLIDEAN"
	DistanceManhattan DistanceType = "MANHATTAN"
)

// IndexType selects the engine-side approximate nearest-neighbor index
// built over the embedding column.
type IndexType string

const (
	IndexNone IndexType = "NONE"
	// IndexIVF is a clustering/partition-based approximate index. Queries
	// against it trade exact ranking for speed at a target accuracy.
	IndexIVF IndexType = "IVF"
)

// TextSegment is the source text an embedding was produced from, together
// with its metadata document.
type TextSegment struct {
	Text     string
	Metadata map[string]any
}

// NewTextSegment creates a segment with no metadata.
func NewTextSegment(text string) *TextSegment {
	return &TextSegment{Text: text}
}

// SearchRequest describes one similarity query.
type SearchRequest struct {
	// Query is the embedding to search for. It is normalized before the
	// query executes when the store is configured to normalize vectors.
	Query []float32
	// MaxResults caps the number of matches; 0 uses DefaultMaxResults.
	MaxResults int
	// MinScore excludes matches scoring below it, after ranking.
	MinScore float64
	// Filter restricts matches by metadata; nil matches every row.
	Filter Filter
}

// DefaultMaxResults is used when a search request leaves MaxResults unset.
const DefaultMaxResults = 3

// Match is a single search result. Score is in roughly [0, 1], higher is
// more similar. Segment is nil when the stored row had no content.
type Match struct {
	ID        string
	Score     float64
	Embedding []float32
	Segment   *TextSegment
}

// SearchResult holds matches in descending score order. Equal scores have
// no deterministic tie-break.
type SearchResult struct {
	Matches []Match
}
