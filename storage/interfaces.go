package storage

import (
	"context"

	"github.com/poiesic/docgraph/core"
)

// DocumentRepository provides operations for managing document nodes.
// Implementations must be thread-safe and support concurrent access.
type DocumentRepository interface {
	// UpsertDocument stores a document, overwriting any existing record for
	// the same (Namespace, DocID). Sets InsertedAt on first write and
	// UpdatedAt on every write.
	UpsertDocument(ctx context.Context, doc *core.Document) error

	// GetDocument retrieves a document by its (Namespace, DocID) key.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, namespace, docID string) (*core.Document, error)

	// GetDocumentFingerprint retrieves only the stored fingerprint for a
	// document. Returns ErrNotFound if the document doesn't exist.
	GetDocumentFingerprint(ctx context.Context, namespace, docID string) (string, error)

	// ListDocuments retrieves all documents in a namespace, ordered by DocID.
	ListDocuments(ctx context.Context, namespace string) ([]*core.Document, error)

	// Close closes the repository and releases resources.
	Close() error
}

// EntityRepository provides operations for managing entities and the edges
// that reference them (mentions and relations).
type EntityRepository interface {
	// CreateEntity stores an entity keyed by (Namespace, Type, NormalizedName).
	// If an entity with the same key already exists, the stored entity is
	// returned with created=false and nothing is written. Landing on an
	// existing key is the expected steady state for a corpus that mentions
	// the same entities repeatedly; it is not an error.
	CreateEntity(ctx context.Context, entity *core.Entity) (*core.Entity, bool, error)

	// GetEntity retrieves a single entity by ID within a namespace.
	// Returns ErrNotFound if the entity doesn't exist.
	GetEntity(ctx context.Context, namespace string, id core.ID) (*core.Entity, error)

	// UpdateEntity updates an existing entity in place.
	// Returns ErrNotFound if the entity doesn't exist.
	UpdateEntity(ctx context.Context, entity *core.Entity) error

	// FindEntityByTypeAndName finds an entity by its identity tuple.
	// Returns ErrNotFound if no matching entity exists.
	FindEntityByTypeAndName(ctx context.Context, namespace, entityType, normalizedName string) (*core.Entity, error)

	// EntitiesByType retrieves all stored entities of a given type in a
	// namespace, in stable key order.
	EntitiesByType(ctx context.Context, namespace, entityType string) ([]*core.Entity, error)

	// AllEntities retrieves all entities in a namespace.
	AllEntities(ctx context.Context, namespace string) ([]*core.Entity, error)

	// FindSimilarEntities finds entities whose vectors are similar to the
	// given vector. An empty entityType searches across all types.
	// Returns matches with similarity >= minSimilarity, up to limit results,
	// ordered by similarity score (highest first). Entities without vectors
	// are skipped.
	FindSimilarEntities(ctx context.Context, namespace, entityType string, vector []float32, minSimilarity float32, limit int) ([]*core.EntityMatch, error)

	// UpsertMention stores a document-to-entity mention edge. A repeated
	// upsert for the same (Namespace, DocID, EntityId) increments the stored
	// occurrence count and keeps the highest confidence.
	UpsertMention(ctx context.Context, mention *core.Mention) error

	// UpsertRelation stores an entity-to-entity relation edge. A repeated
	// upsert for the same (Namespace, FromId, Type, ToId) increments the
	// stored occurrence count and keeps the highest confidence.
	UpsertRelation(ctx context.Context, relation *core.Relation) error

	// Close closes the repository and releases resources.
	Close() error
}

// RunRepository persists the most recent ingest run report per namespace.
type RunRepository interface {
	// SaveRunReport persists a run report, replacing the previous one for
	// the same namespace.
	SaveRunReport(ctx context.Context, report *core.RunReport) error

	// LoadLastRun retrieves the last saved run report for a namespace.
	// Returns nil, nil if no report exists.
	LoadLastRun(ctx context.Context, namespace string) (*core.RunReport, error)
}
