package hooks

import (
	"context"
	"log/slog"

	"github.com/poiesic/docgraph/ai"
	"github.com/poiesic/docgraph/core"
	"github.com/poiesic/docgraph/storage"
)

// VectorDeduper marks extracted entities that are semantic duplicates of
// already stored entities, by embedding similarity over the normalized name.
//
// It only inspects entities the fuzzy stage left unmarked. Entities that
// stay unmarked keep their normalized embedding, so the pipeline stores
// them search-ready.
type VectorDeduper struct {
	entities  storage.EntityRepository
	embedder  ai.Embedder
	threshold float32
	logger    *slog.Logger
}

var _ BeforeStoreHook = (*VectorDeduper)(nil)

// NewVectorDeduper creates a VectorDeduper that matches against stored
// entity vectors with cosine similarity >= threshold.
func NewVectorDeduper(entities storage.EntityRepository, embedder ai.Embedder, threshold float32) (*VectorDeduper, error) {
	if entities == nil {
		return nil, ErrEntityRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	return &VectorDeduper{
		entities:  entities,
		embedder:  embedder,
		threshold: threshold,
		logger:    slog.Default().With("component", "vector-deduper"),
	}, nil
}

// Name identifies the hook in logs.
func (d *VectorDeduper) Name() string {
	return "vector-deduper"
}

// Transform embeds each unmarked entity's normalized name and searches the
// stored vectors scoped to (namespace, type). A match above the threshold
// sets DuplicateOf; otherwise the normalized embedding is attached to the
// entity for storage. An exact normalized-name match is not marked; it
// resolves to the stored entity through the create path.
func (d *VectorDeduper) Transform(ctx context.Context, doc *core.Document, entities []*core.Entity) ([]*core.Entity, error) {
	for _, entity := range entities {
		if entity.DuplicateOf != nil {
			continue
		}

		vector, err := d.embedder.EmbedText(ctx, entity.NormalizedName)
		if err != nil {
			return nil, err
		}
		normalized := core.NormalizeVector(vector)

		// Limit 2 so an exact stored twin doesn't shadow a near match
		matches, err := d.entities.FindSimilarEntities(ctx, entity.Namespace, entity.Type, normalized, d.threshold, 2)
		if err != nil {
			return nil, err
		}

		var best *core.Entity
		for _, match := range matches {
			if match.Entity.NormalizedName == entity.NormalizedName {
				continue
			}
			best = match.Entity
			break
		}

		if best != nil {
			entity.DuplicateOf = &core.DuplicateRef{
				Name: best.NormalizedName,
				Id:   best.Id,
			}
			d.logger.Debug("vector duplicate",
				"entity", entity.NormalizedName, "of", best.NormalizedName)
			continue
		}

		entity.Vector = normalized
	}
	return entities, nil
}
