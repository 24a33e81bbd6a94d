// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cairn Contributors

// Package config loads and validates Cairn configuration from file and
// environment.
package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"

	"github.com/cairn-dev/cairn/internal/store"
	"github.com/cairn-dev/cairn/internal/store/sqlite"
	cairnerr "github.com/cairn-dev/cairn/pkg/errors"
)

// Config is the top-level Cairn configuration.
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	OpenAI  OpenAIConfig  `mapstructure:"openai"`
	Ingest  IngestConfig  `mapstructure:"ingest"`
}

// StorageConfig controls the embedding store backend.
type StorageConfig struct {
	Path             string `mapstructure:"path"`
	Table            string `mapstructure:"table"`
	Dimension        int    `mapstructure:"dimension"`
	Distance         string `mapstructure:"distance"`
	Index            string `mapstructure:"index"`
	Partitions       int    `mapstructure:"partitions"`
	Accuracy         int    `mapstructure:"accuracy"`
	NormalizeVectors bool   `mapstructure:"normalize_vectors"`
	CreateTable      bool   `mapstructure:"create_table"`
	UseIndex         bool   `mapstructure:"use_index"`
}

// OpenAIConfig holds credentials and model selection for the OpenAI API.
type OpenAIConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	EmbeddingModel string `mapstructure:"embedding_model"`
	ChatModel      string `mapstructure:"chat_model"`
}

// IngestConfig controls document chunking.
type IngestConfig struct {
	ChunkSize    int `mapstructure:"chunk_size"`
	ChunkOverlap int `mapstructure:"chunk_overlap"`
}

// Load reads configuration from the given path (or defaults) with
// environment variable overrides (prefix CAIRN_).
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("storage.path", "cairn.db")
	v.SetDefault("storage.table", "embeddings")
	v.SetDefault("storage.distance", string(store.DistanceCosine))
	v.SetDefault("storage.index", string(store.IndexIVF))
	v.SetDefault("storage.partitions", 10)
	v.SetDefault("storage.dimension", 0)
	v.SetDefault("storage.accuracy", 0)
	v.SetDefault("storage.normalize_vectors", true)
	v.SetDefault("storage.create_table", true)
	v.SetDefault("storage.use_index", false)
	// Registered so env-only overrides reach Unmarshal.
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.embedding_model", "text-embedding-3-small")
	v.SetDefault("openai.chat_model", "gpt-4o-mini")
	v.SetDefault("ingest.chunk_size", 800)
	v.SetDefault("ingest.chunk_overlap", 100)

	// Environment
	v.SetEnvPrefix("CAIRN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// File
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, cairnerr.Errorf(cairnerr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, cairnerr.Errorf(cairnerr.CodeConfigLoadReadFailure, "unmarshalling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, cairnerr.Errorf(cairnerr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// Validate checks the configuration for logical errors.
// It returns a slice of all validation errors found, collecting all issues
// rather than stopping at the first one.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateStorage()...)
	errs = append(errs, c.validateIngest()...)

	return errs
}

func (c *Config) validateStorage() []error {
	var errs []error

	if strings.TrimSpace(c.Storage.Path) == "" {
		errs = append(errs, cairnerr.New(cairnerr.CodeConfigValidateInvalidValue, "config: storage.path must not be empty"))
	}
	if strings.TrimSpace(c.Storage.Table) == "" {
		errs = append(errs, cairnerr.New(cairnerr.CodeConfigValidateInvalidValue, "config: storage.table must not be empty"))
	}

	validDistances := map[string]bool{
		string(store.DistanceCosine):    true,
		string(store.DistanceDot):       true,
		string(store.DistanceEuclidean): true,
		string(store.DistanceManhattan): true,
	}
	if !validDistances[c.Storage.Distance] {
		errs = append(errs, cairnerr.Errorf(cairnerr.CodeConfigValidateInvalidValue,
			"config: storage.distance must be one of [COSINE, DOT, EUCLIDEAN, MANHATTAN], got %q",
			c.Storage.Distance,
		))
	}

	validIndexes := map[string]bool{
		string(store.IndexNone): true,
		string(store.IndexIVF):  true,
	}
	if !validIndexes[c.Storage.Index] {
		errs = append(errs, cairnerr.Errorf(cairnerr.CodeConfigValidateInvalidValue,
			"config: storage.index must be one of [NONE, IVF], got %q",
			c.Storage.Index,
		))
	}

	if c.Storage.Dimension < 0 {
		errs = append(errs, cairnerr.Errorf(cairnerr.CodeConfigValidateInvalidValue,
			"config: storage.dimension must be non-negative, got %d",
			c.Storage.Dimension,
		))
	}
	if c.Storage.Partitions <= 0 {
		errs = append(errs, cairnerr.Errorf(cairnerr.CodeConfigValidateInvalidValue,
			"config: storage.partitions must be greater than 0, got %d",
			c.Storage.Partitions,
		))
	}
	if c.Storage.Accuracy < 0 || c.Storage.Accuracy > 100 {
		errs = append(errs, cairnerr.Errorf(cairnerr.CodeConfigValidateInvalidValue,
			"config: storage.accuracy must be between 0 and 100, got %d",
			c.Storage.Accuracy,
		))
	}
	if c.Storage.UseIndex && c.Storage.Dimension <= 0 {
		errs = append(errs, cairnerr.New(cairnerr.CodeConfigValidateInvalidValue,
			"config: storage.use_index requires storage.dimension to be set",
		))
	}

	return errs
}

func (c *Config) validateIngest() []error {
	var errs []error

	if c.Ingest.ChunkSize <= 0 {
		errs = append(errs, cairnerr.Errorf(cairnerr.CodeConfigValidateInvalidValue,
			"config: ingest.chunk_size must be greater than 0, got %d",
			c.Ingest.ChunkSize,
		))
	}
	if c.Ingest.ChunkOverlap < 0 {
		errs = append(errs, cairnerr.Errorf(cairnerr.CodeConfigValidateInvalidValue,
			"config: ingest.chunk_overlap must be non-negative, got %d",
			c.Ingest.ChunkOverlap,
		))
	}
	if c.Ingest.ChunkOverlap >= c.Ingest.ChunkSize && c.Ingest.ChunkSize > 0 {
		errs = append(errs, cairnerr.Errorf(cairnerr.CodeConfigValidateInvalidValue,
			"config: ingest.chunk_overlap must be smaller than ingest.chunk_size, got %d >= %d",
			c.Ingest.ChunkOverlap, c.Ingest.ChunkSize,
		))
	}

	return errs
}

// StoreOptions maps the storage section onto backend options.
func (c *Config) StoreOptions() sqlite.Options {
	return sqlite.Options{
		Path:             c.Storage.Path,
		Table:            c.Storage.Table,
		Dimension:        c.Storage.Dimension,
		Distance:         store.DistanceType(c.Storage.Distance),
		Index:            store.IndexType(c.Storage.Index),
		Partitions:       c.Storage.Partitions,
		Accuracy:         c.Storage.Accuracy,
		NormalizeVectors: c.Storage.NormalizeVectors,
		CreateTable:      c.Storage.CreateTable,
		UseIndex:         c.Storage.UseIndex,
	}
}
