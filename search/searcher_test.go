package search

import (
	"context"
	"iter"
	"testing"

	"github.com/poiesic/docgraph/ai/mock"
	"github.com/poiesic/docgraph/core"
	"github.com/poiesic/docgraph/storage"
	badgerstore "github.com/poiesic/docgraph/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSearchRepo(t *testing.T) storage.EntityRepository {
	t.Helper()
	_, repo, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return repo
}

func storeEntity(t *testing.T, repo storage.EntityRepository, name string, vector []float32) *core.Entity {
	t.Helper()
	stored, _, err := repo.CreateEntity(context.Background(), &core.Entity{
		Namespace:      "docs",
		Type:           "technology",
		Name:           name,
		NormalizedName: name,
		Confidence:     0.9,
		Vector:         vector,
	})
	require.NoError(t, err)
	return stored
}

func TestSearcher_NameMatch(t *testing.T) {
	repo := newSearchRepo(t)
	storeEntity(t, repo, "postgresql", nil)
	storeEntity(t, repo, "kafka", nil)

	searcher, err := NewSearcher(repo, mock.NewMockProvider())
	require.NoError(t, err)

	// "postgres" is a close prefix variant of "postgresql"
	results, err := searcher.FindEntities(context.Background(), "docs", "postgres", 10)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "postgresql", results[0].Entity.NormalizedName)
}

func TestSearcher_NumeronymMatch(t *testing.T) {
	repo := newSearchRepo(t)
	storeEntity(t, repo, "kubernetes", nil)

	searcher, err := NewSearcher(repo, mock.NewMockProvider())
	require.NoError(t, err)

	results, err := searcher.FindEntities(context.Background(), "docs", "k8s", 10)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "kubernetes", results[0].Entity.NormalizedName)
}

func TestSearcher_SemanticMatch(t *testing.T) {
	repo := newSearchRepo(t)
	// Name is nothing like the query, but the stored vector is
	stored := storeEntity(t, repo, "etcd", []float32{1, 0, 0})
	storeEntity(t, repo, "grafana", []float32{0, 1, 0})

	provider := mock.NewMockProvider().(*mock.MockProvider)
	provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{0.9, 0.1, 0}, nil
	}

	searcher, err := NewSearcher(repo, provider)
	require.NoError(t, err)

	results, err := searcher.FindEntities(context.Background(), "docs", "distributed key-value store", 10)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, stored.Id, results[0].Entity.Id)
}

func TestSearcher_CombinedHitRanksFirst(t *testing.T) {
	repo := newSearchRepo(t)
	// "redis" matches the query by name and by vector; "redix" by name only
	both := storeEntity(t, repo, "redis", []float32{1, 0, 0})
	storeEntity(t, repo, "redix", []float32{0, 1, 0})

	provider := mock.NewMockProvider().(*mock.MockProvider)
	provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}

	searcher, err := NewSearcher(repo, provider)
	require.NoError(t, err)

	results, err := searcher.FindEntities(context.Background(), "docs", "redis", 10)
	require.NoError(t, err)

	require.NotEmpty(t, results)
	assert.Equal(t, both.Id, results[0].Entity.Id)
	assert.Greater(t, results[0].Score, float32(1.0))
}

func TestSearcher_MaxHits(t *testing.T) {
	repo := newSearchRepo(t)
	storeEntity(t, repo, "postgres", nil)
	storeEntity(t, repo, "postgresql", nil)

	searcher, err := NewSearcher(repo, mock.NewMockProvider())
	require.NoError(t, err)

	results, err := searcher.FindEntities(context.Background(), "docs", "postgres", 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearcher_NoMatches(t *testing.T) {
	repo := newSearchRepo(t)
	storeEntity(t, repo, "kafka", nil)

	searcher, err := NewSearcher(repo, mock.NewMockProvider())
	require.NoError(t, err)

	results, err := searcher.FindEntities(context.Background(), "docs", "zzzzzzz", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

type recordingMonitor struct {
	started      string
	nameIds      []uint64
	semanticIds  []uint64
	nameHits     int
	semanticHits int
	bothHits     int
	finished     int
}

func (m *recordingMonitor) Start(query string) { m.started = query }

func (m *recordingMonitor) AfterNameSearch(ids iter.Seq[uint64]) {
	for id := range ids {
		m.nameIds = append(m.nameIds, id)
	}
}

func (m *recordingMonitor) AfterSemanticSearch(ids []uint64)  { m.semanticIds = ids }
func (m *recordingMonitor) NameAndSemanticHit(_ *core.Entity) { m.bothHits++ }
func (m *recordingMonitor) NameHit(_ *core.Entity)            { m.nameHits++ }
func (m *recordingMonitor) SemanticHit(_ *core.Entity)        { m.semanticHits++ }
func (m *recordingMonitor) Finish(results []*Result)          { m.finished = len(results) }

func TestSearcher_MonitorCallbacks(t *testing.T) {
	repo := newSearchRepo(t)
	storeEntity(t, repo, "redis", []float32{1, 0, 0})

	provider := mock.NewMockProvider().(*mock.MockProvider)
	provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}

	searcher, err := NewSearcher(repo, provider)
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	results, err := searcher.FindEntitiesWithMonitor(context.Background(), "docs", "redis", 10, monitor)
	require.NoError(t, err)

	assert.Equal(t, "redis", monitor.started)
	assert.Len(t, monitor.nameIds, 1)
	assert.Len(t, monitor.semanticIds, 1)
	assert.Equal(t, 1, monitor.bothHits)
	assert.Equal(t, len(results), monitor.finished)
}

func TestNewSearcher_Validation(t *testing.T) {
	repo := newSearchRepo(t)

	_, err := NewSearcher(nil, mock.NewMockProvider())
	assert.ErrorIs(t, err, ErrEntityRepositoryRequired)

	_, err = NewSearcher(repo, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)
}

func TestContainsAllQueryWords(t *testing.T) {
	assert.True(t, containsAllQueryWords("Apache Kafka", "kafka"))
	assert.True(t, containsAllQueryWords("Apache Kafka", "the kafka"))
	assert.False(t, containsAllQueryWords("Apache Kafka", "redis"))
	assert.False(t, containsAllQueryWords("Apache Kafka", "the a an"))
}
