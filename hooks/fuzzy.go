package hooks

import (
	"context"
	"log/slog"
	"unicode"

	"github.com/poiesic/docgraph/core"
	"github.com/poiesic/docgraph/storage"
	"github.com/xrash/smetrics"
)

// Jaro-Winkler parameters: standard boost threshold and prefix scale.
const (
	jaroWinklerBoostThreshold = 0.7
	jaroWinklerPrefixSize     = 4
)

// FuzzyDeduper marks extracted entities that are near-duplicates of already
// stored entities of the same type, by normalized-name similarity.
//
// Only persisted entities are candidates; two unpersisted entities in the
// same batch are never compared to each other. An entity already marked by
// an earlier stage is skipped.
type FuzzyDeduper struct {
	entities  storage.EntityRepository
	threshold float64
	logger    *slog.Logger
}

var _ BeforeStoreHook = (*FuzzyDeduper)(nil)

// NewFuzzyDeduper creates a FuzzyDeduper that matches against stored
// entities with similarity >= threshold.
func NewFuzzyDeduper(entities storage.EntityRepository, threshold float64) (*FuzzyDeduper, error) {
	if entities == nil {
		return nil, ErrEntityRepositoryRequired
	}
	return &FuzzyDeduper{
		entities:  entities,
		threshold: threshold,
		logger:    slog.Default().With("component", "fuzzy-deduper"),
	}, nil
}

// Name identifies the hook in logs.
func (d *FuzzyDeduper) Name() string {
	return "fuzzy-deduper"
}

// Transform annotates near-duplicate entities with a DuplicateOf reference.
// Exact normalized-name matches are left alone; they resolve to the stored
// entity through the create path.
func (d *FuzzyDeduper) Transform(ctx context.Context, doc *core.Document, entities []*core.Entity) ([]*core.Entity, error) {
	for _, entity := range entities {
		if entity.DuplicateOf != nil {
			continue
		}

		stored, err := d.entities.EntitiesByType(ctx, entity.Namespace, entity.Type)
		if err != nil {
			return nil, err
		}

		var (
			best      *core.Entity
			bestScore float64
		)
		for _, candidate := range stored {
			if candidate.NormalizedName == entity.NormalizedName {
				continue
			}
			score := NameSimilarity(entity.NormalizedName, candidate.NormalizedName)
			// Strict comparison keeps the first stored entity on ties
			if score > bestScore {
				best = candidate
				bestScore = score
			}
		}

		if best != nil && bestScore >= d.threshold {
			entity.DuplicateOf = &core.DuplicateRef{
				Name: best.NormalizedName,
				Id:   best.Id,
			}
			d.logger.Debug("fuzzy duplicate",
				"entity", entity.NormalizedName, "of", best.NormalizedName, "score", bestScore)
		}
	}
	return entities, nil
}

// NameSimilarity scores two normalized names in [0, 1]. It combines
// Jaro-Winkler (prefix-weighted) with a numeronym expansion so
// abbreviations like "k8s" match "kubernetes".
func NameSimilarity(a, b string) float64 {
	score := smetrics.JaroWinkler(a, b, jaroWinklerBoostThreshold, jaroWinklerPrefixSize)
	if matchesNumeronym(a, b) || matchesNumeronym(b, a) {
		return 1.0
	}
	return score
}

// matchesNumeronym reports whether short is a numeronym of long: first
// letter, count of elided interior letters, last letter ("k8s" for
// "kubernetes", "i18n" for "internationalization").
func matchesNumeronym(short, long string) bool {
	s := []rune(short)
	l := []rune(long)
	if len(s) < 3 || len(l) < len(s) {
		return false
	}
	if s[0] != l[0] || s[len(s)-1] != l[len(l)-1] {
		return false
	}

	count := 0
	for _, r := range s[1 : len(s)-1] {
		if !unicode.IsDigit(r) {
			return false
		}
		count = count*10 + int(r-'0')
	}
	return count == len(l)-2
}
