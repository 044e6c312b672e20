// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package docgraph

import (
	"io"
	"log/slog"

	"github.com/poiesic/docgraph/ai"
	"github.com/poiesic/docgraph/ai/openai"
	"github.com/poiesic/docgraph/hooks"
	"github.com/poiesic/docgraph/ingestion"
	"github.com/poiesic/docgraph/reembed"
	"github.com/poiesic/docgraph/search"
	"github.com/poiesic/docgraph/storage"
	"github.com/poiesic/docgraph/storage/badger"
)

// Database bundles the storage backend, repositories, and AI provider for a
// document graph, and acts as the factory for pipelines, searchers, and
// reembedders over it.
type Database struct {
	backend    *badger.Backend
	docRepo    storage.DocumentRepository
	entityRepo storage.EntityRepository
	runRepo    storage.RunRepository
	provider   ai.AIProvider
	logger     *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
	inMemory bool
}

// WithAIConfig sets the AI service configuration used to build the default
// OpenAI-compatible provider.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

// WithProvider supplies a pre-built AI provider instead of the default
// OpenAI-compatible one. The database takes ownership and closes it.
func WithProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithInMemory opens the backing store in memory. Data does not survive Close.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	// Create document repository
	docRepo, err := badger.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create entity repository
	entityRepo, err := badger.NewEntityRepository(backend)
	if err != nil {
		docRepo.Close()
		backend.Close()
		return nil, err
	}

	// Create run repository
	runRepo := badger.NewRunRepository(backend)

	// Create AI provider with configured settings
	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			entityRepo.Close()
			docRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Database{
		backend:    backend,
		docRepo:    docRepo,
		entityRepo: entityRepo,
		runRepo:    runRepo,
		provider:   provider,
		logger:     slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	// Close AI provider first
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	// Close repositories
	if err := db.entityRepo.Close(); err != nil {
		db.logger.Error("error closing entity repository", "err", err)
		return err
	}
	if err := db.docRepo.Close(); err != nil {
		db.logger.Error("error closing document repository", "err", err)
		return err
	}

	// Close backend
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) DocumentRepository() storage.DocumentRepository {
	return db.docRepo
}

func (db *Database) EntityRepository() storage.EntityRepository {
	return db.entityRepo
}

func (db *Database) RunRepository() storage.RunRepository {
	return db.runRepo
}

// NewIngestionPipeline builds a pipeline with the standard hook chain for
// the config: normalization, then fuzzy dedup, then vector dedup.
func (db *Database) NewIngestionPipeline(config *ingestion.Config, opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	if config == nil {
		config = ingestion.DefaultConfig()
	}

	registry := hooks.NewRegistry()
	registry.RegisterBeforeStore(hooks.NewNormalizer())

	fuzzy, err := hooks.NewFuzzyDeduper(db.entityRepo, config.FuzzyThreshold)
	if err != nil {
		return nil, err
	}
	registry.RegisterBeforeStore(fuzzy)

	vector, err := hooks.NewVectorDeduper(db.entityRepo, db.provider.Embedder(), config.VectorThreshold)
	if err != nil {
		return nil, err
	}
	registry.RegisterBeforeStore(vector)

	opts = append([]ingestion.Option{ingestion.WithRunRepository(db.runRepo)}, opts...)
	return ingestion.NewPipeline(db.docRepo, db.entityRepo, db.provider.EntityExtractor(), registry, config, opts...)
}

func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(db.entityRepo, db.provider, opts...)
}

// NewReembedder builds a reembedder over the entity repository.
// progress: where to write progress output (typically os.Stderr)
func (db *Database) NewReembedder(config *reembed.Config, progress io.Writer) (*reembed.Reembedder, error) {
	return reembed.NewReembedder(db.entityRepo, db.provider.Embedder(), config, progress)
}
