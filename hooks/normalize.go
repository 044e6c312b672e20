package hooks

import (
	"context"
	"strings"

	"github.com/poiesic/docgraph/core"
)

// Normalizer is the first before-store hook in the standard chain. It trims
// extracted names and derives the canonical NormalizedName that entity
// identity and both dedup stages key on.
type Normalizer struct{}

var _ BeforeStoreHook = (*Normalizer)(nil)

// NewNormalizer creates a Normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Name identifies the hook in logs.
func (n *Normalizer) Name() string {
	return "normalizer"
}

// Transform canonicalizes every entity's name in place.
func (n *Normalizer) Transform(ctx context.Context, doc *core.Document, entities []*core.Entity) ([]*core.Entity, error) {
	for _, entity := range entities {
		entity.Name = strings.Join(strings.Fields(entity.Name), " ")
		entity.NormalizedName = NormalizeName(entity.Name)
		entity.Type = strings.ToLower(strings.TrimSpace(entity.Type))
	}
	return entities, nil
}

// NormalizeName returns the canonical form of an entity name: lowercased,
// trimmed, with runs of whitespace collapsed to single spaces.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
