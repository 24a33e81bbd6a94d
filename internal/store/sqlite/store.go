// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cairn Contributors

// Package sqlite implements the embedding store on SQLite with the
// sqlite-vec extension: a base table holding id/content/metadata/embedding
// rows plus an optional vec0 companion table serving as the approximate
// nearest-neighbor index.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/cairn-dev/cairn/internal/store"
	cairnerr "github.com/cairn-dev/cairn/pkg/errors"
)

func init() {
	sqlite_vec.Auto()
}

// Compile-time interface check.
var _ store.EmbeddingStore = (*EmbeddingStore)(nil)

// Options configures an embedding store instance. It is read once at
// construction and immutable for the life of the store.
type Options struct {
	// Path is the SQLite database file path.
	Path string
	// Table is the base table name.
	Table string
	// Dimension fixes the embedding length; 0 leaves it open. An open
	// dimension cannot carry a similarity index.
	Dimension int
	// Distance selects the scoring distance function.
	Distance store.DistanceType
	// Index selects the approximate index kind.
	Index store.IndexType
	// Partitions sizes the approximate index's clustering granularity.
	Partitions int
	// Accuracy is the approximate search target in percent; 0 keeps
	// every search on the exact top-k path.
	Accuracy int
	// NormalizeVectors applies L2 normalization before storage and query.
	// Similarity search requires it.
	NormalizeVectors bool
	// CreateTable provisions the table at construction if absent.
	CreateTable bool
	// DropTableFirst drops any existing table before provisioning.
	DropTableFirst bool
	// UseIndex builds the similarity index at construction if absent.
	UseIndex bool
}

// DefaultOptions returns the standard configuration for a store at the
// given path and table: cosine distance, normalized vectors, table
// provisioning on, no index.
func DefaultOptions(path, table string) Options {
	return Options{
		Path:             path,
		Table:            table,
		Distance:         store.DistanceCosine,
		Index:            store.IndexIVF,
		Partitions:       defaultPartitions,
		NormalizeVectors: true,
		CreateTable:      true,
	}
}

const (
	defaultPartitions = 10

	// nominalIndexRows sets the table size the partition count is scaled
	// against when deriving the vec0 chunk size.
	nominalIndexRows = 10000
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// EmbeddingStore implements store.EmbeddingStore backed by SQLite.
// It holds no state between calls beyond its immutable options; each
// operation borrows one pooled connection from database/sql.
type EmbeddingStore struct {
	db     *sql.DB
	opts   Options
	logger *slog.Logger
}

// New opens (or creates) the database at opts.Path and provisions the
// table and optional index according to opts: drop first when requested,
// then create-if-absent, then index-if-absent.
func New(opts Options) (*EmbeddingStore, error) {
	if err := validateOptions(&opts); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", opts.Path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, cairnerr.Wrap(err, cairnerr.CodeStoreDatabaseFailure, "opening sqlite db")
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, cairnerr.Wrap(err, cairnerr.CodeStoreDatabaseFailure, "pinging sqlite db")
	}

	s := &EmbeddingStore{db: db, opts: opts, logger: slog.Default()}
	if err := s.initTable(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// validateOptions normalizes defaults and rejects unusable configurations
// before any connection is opened.
func validateOptions(opts *Options) error {
	if strings.TrimSpace(opts.Path) == "" {
		return cairnerr.New(cairnerr.CodeStoreConfigInvalid, "database path must not be blank")
	}
	if strings.TrimSpace(opts.Table) == "" {
		return cairnerr.New(cairnerr.CodeStoreConfigInvalid, "table name must not be blank")
	}
	if !tableNamePattern.MatchString(opts.Table) {
		return cairnerr.New(cairnerr.CodeStoreConfigInvalid, "table name must be a plain identifier",
			cairnerr.FieldTable(opts.Table))
	}
	if opts.Dimension < 0 {
		return cairnerr.Errorf(cairnerr.CodeStoreConfigInvalid, "dimension must be non-negative, got %d", opts.Dimension)
	}

	if opts.Distance == "" {
		opts.Distance = store.DistanceCosine
	}
	switch opts.Distance {
	case store.DistanceCosine, store.DistanceDot, store.DistanceEuclidean, store.DistanceManhattan:
	default:
		return cairnerr.Errorf(cairnerr.CodeStoreConfigInvalid, "unknown distance type %q", opts.Distance)
	}

	if opts.Index == "" {
		opts.Index = store.IndexNone
	}
	switch opts.Index {
	case store.IndexNone, store.IndexIVF:
	default:
		return cairnerr.Errorf(cairnerr.CodeStoreConfigInvalid, "unknown index type %q", opts.Index)
	}

	if opts.Partitions <= 0 {
		opts.Partitions = defaultPartitions
	}
	if opts.Accuracy < 0 || opts.Accuracy > 100 {
		return cairnerr.Errorf(cairnerr.CodeStoreConfigInvalid, "target accuracy must be in [0, 100], got %d", opts.Accuracy)
	}

	if opts.UseIndex {
		if opts.Index == store.IndexNone {
			return cairnerr.New(cairnerr.CodeStoreConfigInvalid, "index requested but index type is NONE")
		}
		if opts.Dimension <= 0 {
			return cairnerr.New(cairnerr.CodeStoreConfigInvalid, "similarity index requires a fixed dimension")
		}
	}
	if opts.Accuracy > 0 && !opts.UseIndex {
		return cairnerr.New(cairnerr.CodeStoreConfigInvalid, "target accuracy requires the similarity index")
	}

	return nil
}

func (s *EmbeddingStore) indexTable() string {
	return s.opts.Table + "_idx"
}

// useIndex reports whether writes must keep the vec0 companion table in sync.
func (s *EmbeddingStore) useIndex() bool {
	return s.opts.UseIndex
}

func (s *EmbeddingStore) initTable() error {
	if s.opts.DropTableFirst {
		if _, err := s.db.Exec(`DROP TABLE IF EXISTS ` + s.opts.Table); err != nil {
			return cairnerr.Wrap(err, cairnerr.CodeStoreDatabaseFailure, "dropping table", cairnerr.FieldTable(s.opts.Table))
		}
		if _, err := s.db.Exec(`DROP TABLE IF EXISTS ` + s.indexTable()); err != nil {
			return cairnerr.Wrap(err, cairnerr.CodeStoreDatabaseFailure, "dropping index table", cairnerr.FieldTable(s.indexTable()))
		}
	}

	if s.opts.CreateTable {
		ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id        TEXT PRIMARY KEY,
	content   TEXT,
	metadata  TEXT,
	embedding BLOB NOT NULL
)`, s.opts.Table)
		if _, err := s.db.Exec(ddl); err != nil {
			return cairnerr.Wrap(err, cairnerr.CodeStoreDatabaseFailure, "creating table", cairnerr.FieldTable(s.opts.Table))
		}
	}

	if s.opts.UseIndex {
		ddl := fmt.Sprintf(
			`CREATE VIRTUAL TABLE IF NOT EXISTS %s USING vec0(id TEXT PRIMARY KEY, embedding float[%d] distance_metric=%s, chunk_size=%d)`,
			s.indexTable(), s.opts.Dimension, s.indexDistanceMetric(), chunkSize(s.opts.Partitions),
		)
		if _, err := s.db.Exec(ddl); err != nil {
			return cairnerr.Wrap(err, cairnerr.CodeStoreDatabaseFailure, "creating similarity index", cairnerr.FieldTable(s.indexTable()))
		}
	}

	return nil
}

// indexDistanceMetric maps the configured distance type onto a vec0
// distance_metric value. Dot product shares the cosine metric: on
// normalized vectors both produce the same ranking.
func (s *EmbeddingStore) indexDistanceMetric() string {
	switch s.opts.Distance {
	case store.DistanceCosine, store.DistanceDot:
		return "cosine"
	case store.DistanceManhattan:
		return "L1"
	default:
		return "L2"
	}
}

// chunkSize derives the vec0 chunk size from the partition count, scaling
// a nominal table so more partitions mean finer chunks. vec0 requires a
// multiple of 8.
func chunkSize(partitions int) int {
	size := nominalIndexRows / partitions
	if size < 8 {
		return 8
	}
	return (size / 8) * 8
}

// Close closes the underlying database connection.
func (s *EmbeddingStore) Close() error {
	return s.db.Close()
}

// Add stores a single embedding under a generated id and returns it.
func (s *EmbeddingStore) Add(ctx context.Context, embedding []float32) (string, error) {
	id := uuid.NewString()
	if err := s.addAllInternal(ctx, []string{id}, [][]float32{embedding}, nil); err != nil {
		return "", err
	}
	return id, nil
}

// AddWithID stores a single embedding under the given id.
func (s *EmbeddingStore) AddWithID(ctx context.Context, id string, embedding []float32) error {
	return s.addAllInternal(ctx, []string{id}, [][]float32{embedding}, nil)
}

// AddSegment stores an embedding with its source text under a generated id.
func (s *EmbeddingStore) AddSegment(ctx context.Context, embedding []float32, segment *store.TextSegment) (string, error) {
	id := uuid.NewString()
	if err := s.addAllInternal(ctx, []string{id}, [][]float32{embedding}, []*store.TextSegment{segment}); err != nil {
		return "", err
	}
	return id, nil
}

// AddAll upserts a batch of embeddings in one transaction and returns the
// generated ids in input order. segments may be nil, or must match
// embeddings in length; a nil entry stores the embedding without text.
func (s *EmbeddingStore) AddAll(ctx context.Context, embeddings [][]float32, segments []*store.TextSegment) ([]string, error) {
	ids := make([]string, len(embeddings))
	for i := range ids {
		ids[i] = uuid.NewString()
	}
	if err := s.addAllInternal(ctx, ids, embeddings, segments); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *EmbeddingStore) addAllInternal(ctx context.Context, ids []string, embeddings [][]float32, segments []*store.TextSegment) error {
	if len(embeddings) == 0 {
		s.logger.InfoContext(ctx, "empty embeddings batch, none added", "table", s.opts.Table)
		return nil
	}
	if len(ids) != len(embeddings) {
		return cairnerr.Errorf(cairnerr.CodeStoreInputInvalid, "ids and embeddings have different sizes: %d vs %d", len(ids), len(embeddings))
	}
	if segments != nil && len(segments) != len(embeddings) {
		return cairnerr.Errorf(cairnerr.CodeStoreInputInvalid, "segments and embeddings have different sizes: %d vs %d", len(segments), len(embeddings))
	}

	blobs := make([][]byte, len(embeddings))
	for i, embedding := range embeddings {
		if err := s.checkDimension(embedding); err != nil {
			return err
		}
		blob, err := encodeVector(embedding, s.opts.NormalizeVectors)
		if err != nil {
			return err
		}
		blobs[i] = blob
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return cairnerr.Wrap(err, cairnerr.CodeStoreDatabaseFailure, "beginning upsert transaction")
	}
	defer func() { _ = tx.Rollback() }()

	upsert := fmt.Sprintf(`INSERT INTO %s (id, content, metadata, embedding) VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	content = excluded.content,
	metadata = excluded.metadata,
	embedding = excluded.embedding`, s.opts.Table)

	for i, id := range ids {
		content := ""
		metadataDoc := "{}"
		if segments != nil && segments[i] != nil {
			content = segments[i].Text
			metadataDoc, err = toMetadataDocument(segments[i].Metadata)
			if err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, upsert, id, content, metadataDoc, blobs[i]); err != nil {
			return cairnerr.Wrapf(err, cairnerr.CodeStoreDatabaseFailure, "upserting embedding %s", id)
		}

		if s.useIndex() {
			// vec0 does not support ON CONFLICT; delete first for upsert.
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+s.indexTable()+` WHERE id = ?`, id); err != nil {
				return cairnerr.Wrapf(err, cairnerr.CodeStoreDatabaseFailure, "clearing index entry %s", id)
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO `+s.indexTable()+`(id, embedding) VALUES (?, ?)`, id, blobs[i]); err != nil {
				return cairnerr.Wrapf(err, cairnerr.CodeStoreDatabaseFailure, "indexing embedding %s", id)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return cairnerr.Wrap(err, cairnerr.CodeStoreDatabaseFailure, "committing upsert batch")
	}
	return nil
}

func (s *EmbeddingStore) checkDimension(embedding []float32) error {
	if len(embedding) == 0 {
		return cairnerr.New(cairnerr.CodeStoreVectorInvalid, "embedding must not be empty")
	}
	if s.opts.Dimension > 0 && len(embedding) != s.opts.Dimension {
		return cairnerr.Errorf(cairnerr.CodeStoreVectorInvalid, "embedding has %d dimensions, table declares %d", len(embedding), s.opts.Dimension)
	}
	return nil
}

// Remove deletes the row with the given id. No error when absent.
func (s *EmbeddingStore) Remove(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return cairnerr.Wrap(err, cairnerr.CodeStoreDatabaseFailure, "beginning delete transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if s.useIndex() {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+s.indexTable()+` WHERE id = ?`, id); err != nil {
			return cairnerr.Wrapf(err, cairnerr.CodeStoreDatabaseFailure, "deleting index entry %s", id)
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+s.opts.Table+` WHERE id = ?`, id); err != nil {
		return cairnerr.Wrapf(err, cairnerr.CodeStoreDatabaseFailure, "deleting embedding %s", id)
	}

	if err := tx.Commit(); err != nil {
		return cairnerr.Wrapf(err, cairnerr.CodeStoreDatabaseFailure, "committing delete of %s", id)
	}
	return nil
}

// RemoveAll deletes every row whose id is in ids. An empty set is a no-op.
func (s *EmbeddingStore) RemoveAll(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return cairnerr.Wrap(err, cairnerr.CodeStoreDatabaseFailure, "beginning delete transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if s.useIndex() {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+s.indexTable()+` WHERE id IN (`+placeholders+`)`, args...); err != nil {
			return cairnerr.Wrap(err, cairnerr.CodeStoreDatabaseFailure, "deleting index entries")
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+s.opts.Table+` WHERE id IN (`+placeholders+`)`, args...); err != nil {
		return cairnerr.Wrap(err, cairnerr.CodeStoreDatabaseFailure, "deleting embeddings")
	}

	if err := tx.Commit(); err != nil {
		return cairnerr.Wrap(err, cairnerr.CodeStoreDatabaseFailure, "committing batch delete")
	}
	return nil
}

// RemoveAllMatching deletes every row whose metadata satisfies filter.
// A nil filter deletes every row, expressed as a plain delete.
func (s *EmbeddingStore) RemoveAllMatching(ctx context.Context, filter store.Filter) error {
	clause := ""
	if filter != nil {
		var err error
		clause, err = whereClause(filter)
		if err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return cairnerr.Wrap(err, cairnerr.CodeStoreDatabaseFailure, "beginning delete transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if s.useIndex() {
		idxDelete := `DELETE FROM ` + s.indexTable()
		if clause != "" {
			idxDelete += ` WHERE id IN (SELECT id FROM ` + s.opts.Table + ` ` + clause + `)`
		}
		if _, err := tx.ExecContext(ctx, idxDelete); err != nil {
			return cairnerr.Wrap(err, cairnerr.CodeStoreDatabaseFailure, "deleting index entries by filter")
		}
	}

	baseDelete := `DELETE FROM ` + s.opts.Table
	if clause != "" {
		baseDelete += ` ` + clause
	}
	if _, err := tx.ExecContext(ctx, baseDelete); err != nil {
		return cairnerr.Wrap(err, cairnerr.CodeStoreDatabaseFailure, "deleting embeddings by filter")
	}

	if err := tx.Commit(); err != nil {
		return cairnerr.Wrap(err, cairnerr.CodeStoreDatabaseFailure, "committing filtered delete")
	}
	return nil
}

// RemoveEverything clears the table. SQLite has no TRUNCATE; an
// unqualified DELETE takes the engine's truncate optimization path.
func (s *EmbeddingStore) RemoveEverything(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return cairnerr.Wrap(err, cairnerr.CodeStoreDatabaseFailure, "beginning truncate transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if s.useIndex() {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+s.indexTable()); err != nil {
			return cairnerr.Wrap(err, cairnerr.CodeStoreDatabaseFailure, "clearing similarity index")
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+s.opts.Table); err != nil {
		return cairnerr.Wrap(err, cairnerr.CodeStoreDatabaseFailure, "clearing table", cairnerr.FieldTable(s.opts.Table))
	}

	if err := tx.Commit(); err != nil {
		return cairnerr.Wrap(err, cairnerr.CodeStoreDatabaseFailure, "committing truncate")
	}
	return nil
}

// Search runs one similarity query. Only cosine and dot-product scoring
// are supported, and both require the store to normalize vectors; any
// other configuration fails before a query is issued.
func (s *EmbeddingStore) Search(ctx context.Context, req store.SearchRequest) (*store.SearchResult, error) {
	if s.opts.Distance != store.DistanceCosine && s.opts.Distance != store.DistanceDot {
		return nil, cairnerr.Errorf(cairnerr.CodeStoreSearchUnsupported, "similarity search for distance type %s not supported", s.opts.Distance)
	}
	if !s.opts.NormalizeVectors {
		return nil, cairnerr.New(cairnerr.CodeStoreSearchUnsupported, "similarity search requires normalized vectors; set NormalizeVectors")
	}
	if err := s.checkDimension(req.Query); err != nil {
		return nil, err
	}

	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = store.DefaultMaxResults
	}

	filterClause := ""
	if req.Filter != nil {
		var err error
		filterClause, err = whereClause(req.Filter)
		if err != nil {
			return nil, err
		}
	}

	queryBlob, err := encodeVector(req.Query, true)
	if err != nil {
		return nil, err
	}

	var (
		query string
		args  []any
	)
	if s.opts.Accuracy > 0 {
		query, args = s.approximateSearchQuery(queryBlob, filterClause, maxResults, req.MinScore)
	} else {
		query, args = s.exactSearchQuery(queryBlob, filterClause, maxResults, req.MinScore)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, cairnerr.Wrap(err, cairnerr.CodeStoreDatabaseFailure, "searching embeddings", cairnerr.FieldTable(s.opts.Table))
	}
	defer func() { _ = rows.Close() }()

	result := &store.SearchResult{}
	for rows.Next() {
		var (
			id      string
			content sql.NullString
			meta    sql.NullString
			blob    []byte
			score   float64
		)
		if err := rows.Scan(&id, &content, &meta, &blob, &score); err != nil {
			return nil, cairnerr.Wrap(err, cairnerr.CodeStoreDatabaseFailure, "scanning search result")
		}

		embedding, err := decodeVector(blob)
		if err != nil {
			return nil, cairnerr.Wrapf(err, cairnerr.CodeStoreDatabaseFailure, "decoding embedding %s", id)
		}

		match := store.Match{ID: id, Score: score, Embedding: embedding}
		if content.Valid && strings.TrimSpace(content.String) != "" {
			metadata := map[string]any{}
			if meta.Valid {
				metadata, err = fromDocument(meta.String)
				if err != nil {
					return nil, err
				}
			}
			match.Segment = &store.TextSegment{Text: content.String, Metadata: metadata}
		}

		result.Matches = append(result.Matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, cairnerr.Wrap(err, cairnerr.CodeStoreDatabaseFailure, "iterating search results")
	}

	return result, nil
}

// scoreExpr maps the engine's cosine distance onto a [0, 1]-ish score
// where higher is more similar: cosine uses 1 - distance; dot-product
// uses (1 + dot)/2, and on normalized vectors dot = 1 - cosine distance.
func (s *EmbeddingStore) scoreExpr(distanceExpr string) string {
	if s.opts.Distance == store.DistanceDot {
		return "(2.0 - " + distanceExpr + ") / 2.0"
	}
	return "(1.0 - " + distanceExpr + ")"
}

// exactSearchQuery ranks every row by score and takes the top maxResults
// exactly, then re-filters by the minimum score outside the ranked
// subquery.
func (s *EmbeddingStore) exactSearchQuery(queryBlob []byte, filterClause string, maxResults int, minScore float64) (string, []any) {
	query := fmt.Sprintf(`SELECT id, content, metadata, embedding, score
FROM (
	SELECT id, content, metadata, embedding, %s AS score
	FROM %s
	%s
	ORDER BY score DESC
	LIMIT ?
)
WHERE score >= ?`,
		s.scoreExpr("vec_distance_cosine(embedding, ?)"), s.opts.Table, filterClause)

	return query, []any{queryBlob, maxResults, minScore}
}

// approximateSearchQuery asks the vec0 index for a candidate set sized by
// the accuracy target, joins candidates back to the base table, then
// ranks, caps, and re-filters like the exact path.
func (s *EmbeddingStore) approximateSearchQuery(queryBlob []byte, filterClause string, maxResults int, minScore float64) (string, []any) {
	candidates := (maxResults*100 + s.opts.Accuracy - 1) / s.opts.Accuracy
	if candidates < maxResults {
		candidates = maxResults
	}

	query := fmt.Sprintf(`SELECT id, content, metadata, embedding, score
FROM (
	SELECT b.id AS id, b.content AS content, b.metadata AS metadata, b.embedding AS embedding, %s AS score
	FROM (SELECT id, distance FROM %s WHERE embedding MATCH ? AND k = ?) AS i
	JOIN %s AS b ON b.id = i.id
	%s
	ORDER BY score DESC
	LIMIT ?
)
WHERE score >= ?`,
		s.scoreExpr("i.distance"), s.indexTable(), s.opts.Table, filterClause)

	return query, []any{queryBlob, candidates, maxResults, minScore}
}
