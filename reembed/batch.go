package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/docgraph/ai"
	"github.com/poiesic/docgraph/core"
	"github.com/poiesic/docgraph/storage"
)

// BatchProcessor handles embedding generation for batches of entities.
type BatchProcessor struct {
	repo           storage.EntityRepository
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(repo storage.EntityRepository, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		repo:           repo,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process generates embeddings for a batch of entities and updates them in
// the database. Entities are embedded by their normalized name, the same
// text the dedup stage embeds, so search and dedup stay in one vector space.
// Vectors are normalized before storage.
func (bp *BatchProcessor) Process(ctx context.Context, entities []*core.Entity) error {
	if len(entities) == 0 {
		return nil
	}

	texts := make([]string, len(entities))
	for i, entity := range entities {
		texts[i] = entity.NormalizedName
	}

	var embeddings [][]float32
	err := retryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)

	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(entities) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(entities), len(embeddings))
	}

	for i := range entities {
		entities[i].Vector = core.NormalizeVector(embeddings[i])
		if err := bp.repo.UpdateEntity(ctx, entities[i]); err != nil {
			return fmt.Errorf("failed to update entity %s: %w", entities[i].NormalizedName, err)
		}
	}

	return nil
}
