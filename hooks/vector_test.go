package hooks

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/docgraph/ai/mock"
	"github.com/poiesic/docgraph/core"
	badgerstore "github.com/poiesic/docgraph/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorDeduper_MarksSemanticDuplicate(t *testing.T) {
	_, entityRepo, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	stored, _, err := entityRepo.CreateEntity(ctx, &core.Entity{
		Namespace: "docs", Type: "technology",
		Name: "PostgreSQL", NormalizedName: "postgresql", Confidence: 0.95,
		Vector: []float32{1, 0, 0},
	})
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		// Unnormalized on purpose; the deduper must normalize
		return []float32{2, 0.2, 0}, nil
	}

	deduper, err := NewVectorDeduper(entityRepo, embedder, 0.9)
	require.NoError(t, err)

	doc := &core.Document{Namespace: "docs", DocID: "d1"}
	batch := []*core.Entity{
		{Namespace: "docs", Type: "technology", Name: "Postgres DB", NormalizedName: "postgres db", Confidence: 0.9},
	}

	result, err := deduper.Transform(ctx, doc, batch)
	require.NoError(t, err)

	require.NotNil(t, result[0].DuplicateOf)
	assert.Equal(t, "postgresql", result[0].DuplicateOf.Name)
	assert.Equal(t, stored.Id, result[0].DuplicateOf.Id)
	assert.Nil(t, result[0].Vector)
}

func TestVectorDeduper_SkipsFuzzyMarkedEntities(t *testing.T) {
	_, entityRepo, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	embedder := mock.NewMockEmbedder()
	deduper, err := NewVectorDeduper(entityRepo, embedder, 0.9)
	require.NoError(t, err)

	doc := &core.Document{Namespace: "docs", DocID: "d1"}
	batch := []*core.Entity{
		{Namespace: "docs", Type: "technology", Name: "K8S", NormalizedName: "k8s",
			Confidence: 0.9, DuplicateOf: &core.DuplicateRef{Name: "kubernetes", Id: core.ID(7)}},
	}

	_, err = deduper.Transform(context.Background(), doc, batch)
	require.NoError(t, err)

	// Marked entities never reach the embedding service
	assert.Equal(t, 0, embedder.CallCount())
}

func TestVectorDeduper_AttachesNormalizedVectorToResidual(t *testing.T) {
	_, entityRepo, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{3, 4, 0}, nil
	}

	deduper, err := NewVectorDeduper(entityRepo, embedder, 0.9)
	require.NoError(t, err)

	doc := &core.Document{Namespace: "docs", DocID: "d1"}
	batch := []*core.Entity{
		{Namespace: "docs", Type: "technology", Name: "Grafana", NormalizedName: "grafana", Confidence: 0.9},
	}

	result, err := deduper.Transform(context.Background(), doc, batch)
	require.NoError(t, err)

	require.Nil(t, result[0].DuplicateOf)
	require.Len(t, result[0].Vector, 3)
	assert.InDelta(t, 0.6, result[0].Vector[0], 1e-6)
	assert.InDelta(t, 0.8, result[0].Vector[1], 1e-6)
}

func TestVectorDeduper_EmbedderErrorPropagates(t *testing.T) {
	_, entityRepo, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedding service down")
	}

	deduper, err := NewVectorDeduper(entityRepo, embedder, 0.9)
	require.NoError(t, err)

	doc := &core.Document{Namespace: "docs", DocID: "d1"}
	batch := []*core.Entity{
		{Namespace: "docs", Type: "technology", Name: "Grafana", NormalizedName: "grafana", Confidence: 0.9},
	}

	_, err = deduper.Transform(context.Background(), doc, batch)
	assert.Error(t, err)
}

func TestVectorDeduper_ExactTwinDoesNotShadowNearMatch(t *testing.T) {
	_, entityRepo, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	// Exact stored twin with identical vector and a close neighbor
	_, _, err = entityRepo.CreateEntity(ctx, &core.Entity{
		Namespace: "docs", Type: "technology",
		Name: "Grafana", NormalizedName: "grafana", Confidence: 0.95,
		Vector: []float32{1, 0, 0},
	})
	require.NoError(t, err)
	neighbor, _, err := entityRepo.CreateEntity(ctx, &core.Entity{
		Namespace: "docs", Type: "technology",
		Name: "Grafana OSS", NormalizedName: "grafana oss", Confidence: 0.95,
		Vector: []float32{0.999, 0.0447, 0},
	})
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}

	deduper, err := NewVectorDeduper(entityRepo, embedder, 0.9)
	require.NoError(t, err)

	doc := &core.Document{Namespace: "docs", DocID: "d1"}
	batch := []*core.Entity{
		{Namespace: "docs", Type: "technology", Name: "grafana", NormalizedName: "grafana", Confidence: 0.9},
	}

	result, err := deduper.Transform(ctx, doc, batch)
	require.NoError(t, err)

	require.NotNil(t, result[0].DuplicateOf)
	assert.Equal(t, neighbor.Id, result[0].DuplicateOf.Id)
}
