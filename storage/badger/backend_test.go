package badger

import (
	"context"
	"testing"

	"github.com/poiesic/docgraph/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := t.TempDir()
	backend, err := OpenBackend(tmpDir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)

	assert.False(t, backend.IsClosed())

	err = backend.Close()
	require.NoError(t, err)

	assert.True(t, backend.IsClosed())
}

func TestFindSimilarEntities_NoEntities(t *testing.T) {
	_, entityRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	matches, err := entityRepo.FindSimilarEntities(context.Background(), "docs", "", []float32{1, 0, 0}, 0.5, 10)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFindSimilarEntities_OrderedAndFiltered(t *testing.T) {
	_, entityRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	entities := []*core.Entity{
		{Namespace: "docs", Type: "technology", Name: "A", NormalizedName: "a", Confidence: 1, Vector: []float32{1, 0, 0}},
		{Namespace: "docs", Type: "technology", Name: "B", NormalizedName: "b", Confidence: 1, Vector: []float32{0.8, 0.6, 0}},
		{Namespace: "docs", Type: "technology", Name: "C", NormalizedName: "c", Confidence: 1, Vector: []float32{0, 1, 0}},
		// No vector, must be skipped
		{Namespace: "docs", Type: "technology", Name: "D", NormalizedName: "d", Confidence: 1},
		// Other namespace, must not match
		{Namespace: "other", Type: "technology", Name: "E", NormalizedName: "a", Confidence: 1, Vector: []float32{1, 0, 0}},
	}
	for _, e := range entities {
		_, _, err := entityRepo.CreateEntity(ctx, e)
		require.NoError(t, err)
	}

	matches, err := entityRepo.FindSimilarEntities(ctx, "docs", "technology", []float32{1, 0, 0}, 0.5, 10)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, "a", matches[0].Entity.NormalizedName)
	assert.Equal(t, "b", matches[1].Entity.NormalizedName)
	assert.Greater(t, matches[0].Score, matches[1].Score)
}

func TestFindSimilarEntities_TypeScoped(t *testing.T) {
	_, entityRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	_, _, err = entityRepo.CreateEntity(ctx, &core.Entity{
		Namespace: "docs", Type: "technology", Name: "A", NormalizedName: "a",
		Confidence: 1, Vector: []float32{1, 0},
	})
	require.NoError(t, err)
	_, _, err = entityRepo.CreateEntity(ctx, &core.Entity{
		Namespace: "docs", Type: "tool", Name: "B", NormalizedName: "b",
		Confidence: 1, Vector: []float32{1, 0},
	})
	require.NoError(t, err)

	matches, err := entityRepo.FindSimilarEntities(ctx, "docs", "tool", []float32{1, 0}, 0.9, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "b", matches[0].Entity.NormalizedName)

	matches, err = entityRepo.FindSimilarEntities(ctx, "docs", "", []float32{1, 0}, 0.9, 10)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestFindSimilarEntities_Limit(t *testing.T) {
	_, entityRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		_, _, err := entityRepo.CreateEntity(ctx, &core.Entity{
			Namespace: "docs", Type: "technology", Name: name, NormalizedName: name,
			Confidence: 1, Vector: []float32{1, 0},
		})
		require.NoError(t, err)
	}

	matches, err := entityRepo.FindSimilarEntities(ctx, "docs", "technology", []float32{1, 0}, 0.9, 2)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}
