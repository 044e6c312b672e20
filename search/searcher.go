package search

import (
	"context"
	"log/slog"
	"maps"
	"sort"

	"github.com/poiesic/docgraph/ai"
	"github.com/poiesic/docgraph/core"
	"github.com/poiesic/docgraph/hooks"
	"github.com/poiesic/docgraph/storage"
)

const (
	// defaultNameThreshold is the minimum Jaro-Winkler similarity for a name hit.
	defaultNameThreshold = 0.85

	// defaultSemanticThreshold is the minimum cosine similarity for a semantic hit.
	defaultSemanticThreshold = 0.60
)

// Result is one scored entity returned by a search.
type Result struct {
	Entity *core.Entity
	Score  float32
}

// Searcher provides hybrid name and semantic search over stored entities.
type Searcher struct {
	entities          storage.EntityRepository
	embedder          ai.Embedder
	nameThreshold     float64
	semanticThreshold float32
	logger            *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithNameThreshold overrides the minimum name similarity for a name hit.
func WithNameThreshold(threshold float64) Option {
	return func(s *Searcher) error {
		s.nameThreshold = threshold
		return nil
	}
}

// WithSemanticThreshold overrides the minimum cosine similarity for a
// semantic hit.
func WithSemanticThreshold(threshold float32) Option {
	return func(s *Searcher) error {
		s.semanticThreshold = threshold
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	entities storage.EntityRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Searcher, error) {
	if entities == nil {
		return nil, ErrEntityRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		entities:          entities,
		embedder:          provider.Embedder(),
		nameThreshold:     defaultNameThreshold,
		semanticThreshold: defaultSemanticThreshold,
		logger:            slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// FindEntities searches a namespace for entities matching the query.
// Returns up to maxHits results, ranked by relevance score.
func (s *Searcher) FindEntities(ctx context.Context, namespace, query string, maxHits int) ([]*Result, error) {
	return s.FindEntitiesWithMonitor(ctx, namespace, query, maxHits, nil)
}

// FindEntitiesWithMonitor searches with monitoring. The monitor receives
// callbacks at each stage of the search process.
// Returns up to maxHits results, ranked by relevance score.
func (s *Searcher) FindEntitiesWithMonitor(ctx context.Context, namespace, query string, maxHits int, monitor SearchMonitor) ([]*Result, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query)

	normalizedQuery := hooks.NormalizeName(query)

	// 1. Name search over all stored entities in the namespace
	all, err := s.entities.AllEntities(ctx, namespace)
	if err != nil {
		s.logger.Error("error listing entities for name search", "err", err)
		return nil, err
	}

	byID := make(map[uint64]*core.Entity, len(all))
	nameScores := make(map[uint64]float64)
	for _, entity := range all {
		byID[uint64(entity.Id)] = entity
		score := hooks.NameSimilarity(normalizedQuery, entity.NormalizedName)
		if score >= s.nameThreshold {
			nameScores[uint64(entity.Id)] = score
		}
	}
	monitor.AfterNameSearch(maps.Keys(nameScores))

	// 2. Semantic search over stored vectors
	embedding, err := s.embedder.EmbedText(ctx, normalizedQuery)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}

	matches, err := s.entities.FindSimilarEntities(ctx, namespace, "",
		core.NormalizeVector(embedding), s.semanticThreshold, maxHits)
	if err != nil {
		s.logger.Error("error querying for similar entities", "err", err)
		return nil, err
	}

	semanticScores := make(map[uint64]float32, len(matches))
	semanticIds := make([]uint64, 0, len(matches))
	for _, match := range matches {
		byID[uint64(match.Entity.Id)] = match.Entity
		semanticScores[uint64(match.Entity.Id)] = match.Score
		semanticIds = append(semanticIds, uint64(match.Entity.Id))
	}
	monitor.AfterSemanticSearch(semanticIds)

	// 3. Combine and score results
	allIds := make(map[uint64]bool, len(nameScores)+len(semanticScores))
	for id := range nameScores {
		allIds[id] = true
	}
	for id := range semanticScores {
		allIds[id] = true
	}

	if len(allIds) == 0 {
		return []*Result{}, nil
	}

	results := make([]*Result, 0, len(allIds))
	for id := range allIds {
		entity := byID[id]

		nameScore, inName := nameScores[id]
		semanticScore, inSemantic := semanticScores[id]

		var score float32
		if inName && inSemantic {
			// In both: boost by 1.5x, weighted by the stronger signal
			score = 1.5 * max(float32(nameScore), semanticScore)
			monitor.NameAndSemanticHit(entity)
		} else if inName {
			score = float32(nameScore)
			monitor.NameHit(entity)
		} else {
			score = semanticScore
			monitor.SemanticHit(entity)
		}

		// Apply verbatim match boost
		if containsAllQueryWords(entity.Name, query) {
			score += 0.3
		}

		results = append(results, &Result{
			Entity: entity,
			Score:  score,
		})
	}

	// Sort by score descending
	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > maxHits {
		results = results[:maxHits]
	}
	monitor.Finish(results)

	return results, nil
}
