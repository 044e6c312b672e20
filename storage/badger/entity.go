package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docgraph/core"
	"github.com/poiesic/docgraph/storage"
)

// EntityRepository implements storage.EntityRepository for BadgerDB.
type EntityRepository struct {
	backend *Backend
}

var _ storage.EntityRepository = (*EntityRepository)(nil)

// NewEntityRepository creates a new EntityRepository.
func NewEntityRepository(backend *Backend) (*EntityRepository, error) {
	return &EntityRepository{
		backend: backend,
	}, nil
}

// Close releases resources. EntityRepository has no resources to release.
func (r *EntityRepository) Close() error {
	return nil
}

// CreateEntity stores an entity keyed by (Namespace, Type, NormalizedName).
// If an entity with the same identity tuple already exists, returns the
// stored entity with created=false and writes nothing.
func (r *EntityRepository) CreateEntity(ctx context.Context, entity *core.Entity) (*core.Entity, bool, error) {
	if err := core.ValidateEntity(entity); err != nil {
		return nil, false, err
	}

	var (
		result  *core.Entity
		created bool
	)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		tupleKey := makeEntityTupleKey(entity.Namespace, entity.Type, entity.NormalizedName)

		existing, err := readEntityByTupleKey(tx, entity.Namespace, tupleKey)
		if err != nil {
			return err
		}
		if existing != nil {
			result = existing
			created = false
			return nil
		}

		if entity.Id == 0 {
			entity.Id = core.IDFromContent(entity.Tuple())
		}
		entity.InsertedAt = time.Now().UTC()
		entity.UpdatedAt = entity.InsertedAt

		key := makeEntityKey(entity.Namespace, entity.Id)
		if err := tx.Set(key, storage.MarshalEntity(entity)); err != nil {
			return err
		}
		if err := tx.Set(tupleKey, storage.MarshalID(entity.Id)); err != nil {
			return err
		}

		result = entity
		created = true
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, false, err
	}
	return result, created, nil
}

// GetEntity retrieves a single entity by ID within a namespace.
func (r *EntityRepository) GetEntity(ctx context.Context, namespace string, id core.ID) (*core.Entity, error) {
	var result *core.Entity
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readEntity(tx, makeEntityKey(namespace, id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// UpdateEntity updates an existing entity in place.
// The identity tuple is immutable; only payload fields change.
func (r *EntityRepository) UpdateEntity(ctx context.Context, entity *core.Entity) error {
	if err := core.ValidateEntity(entity); err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeEntityKey(entity.Namespace, entity.Id)

		old, err := readEntity(tx, key)
		if err != nil {
			return err
		}
		if old == nil {
			return storage.ErrNotFound
		}

		entity.InsertedAt = old.InsertedAt
		entity.UpdatedAt = time.Now().UTC()

		if err := tx.Set(key, storage.MarshalEntity(entity)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// FindEntityByTypeAndName finds an entity by its identity tuple.
func (r *EntityRepository) FindEntityByTypeAndName(ctx context.Context, namespace, entityType, normalizedName string) (*core.Entity, error) {
	var result *core.Entity
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		tupleKey := makeEntityTupleKey(namespace, entityType, normalizedName)
		var err error
		result, err = readEntityByTupleKey(tx, namespace, tupleKey)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// EntitiesByType retrieves all stored entities of a given type in a
// namespace, in stable key order (sorted by normalized name).
func (r *EntityRepository) EntitiesByType(ctx context.Context, namespace, entityType string) ([]*core.Entity, error) {
	var results []*core.Entity
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeEntityTupleScanPrefix(namespace, entityType)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()

			var id core.ID
			err := item.Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			})
			if err != nil {
				return err
			}

			entity, err := readEntity(tx, makeEntityKey(namespace, id))
			if err != nil {
				return err
			}
			if entity != nil {
				results = append(results, entity)
			}
		}
		return nil
	}, false)
	return results, err
}

// AllEntities retrieves all entities in a namespace.
func (r *EntityRepository) AllEntities(ctx context.Context, namespace string) ([]*core.Entity, error) {
	var results []*core.Entity
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeEntityScanPrefix(namespace)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()

			var entity *core.Entity
			err := item.Value(func(val []byte) error {
				var err error
				entity, err = storage.UnmarshalEntity(val)
				return err
			})
			if err != nil {
				return err
			}
			if entity != nil {
				results = append(results, entity)
			}
		}
		return nil
	}, false)
	return results, err
}

// FindSimilarEntities finds entities whose vectors are similar to the given
// vector, using a brute-force scan. An empty entityType searches all types.
// Entities without vectors are skipped.
func (r *EntityRepository) FindSimilarEntities(ctx context.Context, namespace, entityType string, vector []float32, minSimilarity float32, limit int) ([]*core.EntityMatch, error) {
	var results []*core.EntityMatch

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeEntityScanPrefix(namespace)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()

			var entity *core.Entity
			err := item.Value(func(val []byte) error {
				var err error
				entity, err = storage.UnmarshalEntity(val)
				return err
			})
			if err != nil {
				return err
			}
			if entity == nil {
				continue
			}

			if entityType != "" && entity.Type != entityType {
				continue
			}
			if len(entity.Vector) == 0 {
				continue
			}

			// Cosine similarity (dot product for normalized vectors)
			similarity := core.DotProduct(vector, entity.Vector)
			if similarity >= minSimilarity {
				results = append(results, &core.EntityMatch{
					Entity: entity,
					Score:  similarity,
				})
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(results, func(a, b *core.EntityMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// UpsertMention stores a doc-to-entity mention edge. Repeated upserts for
// the same key increment the occurrence count and keep the highest
// confidence.
func (r *EntityRepository) UpsertMention(ctx context.Context, mention *core.Mention) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeMentionKey(mention.Namespace, mention.DocID, mention.EntityId)

		old, err := readMention(tx, key)
		if err != nil {
			return err
		}

		stored := *mention
		if stored.Occurrences <= 0 {
			stored.Occurrences = 1
		}
		if old != nil {
			stored.Occurrences = old.Occurrences + 1
			if old.Confidence > stored.Confidence {
				stored.Confidence = old.Confidence
			}
		}
		stored.UpdatedAt = time.Now().UTC()

		if err := tx.Set(key, storage.MarshalMention(&stored)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// UpsertRelation stores an entity-to-entity relation edge. Repeated upserts
// for the same key increment the occurrence count and keep the highest
// confidence.
func (r *EntityRepository) UpsertRelation(ctx context.Context, relation *core.Relation) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeRelationKey(relation.Namespace, relation.FromId, relation.Type, relation.ToId)

		old, err := readRelation(tx, key)
		if err != nil {
			return err
		}

		stored := *relation
		if stored.Occurrences <= 0 {
			stored.Occurrences = 1
		}
		if old != nil {
			stored.Occurrences = old.Occurrences + 1
			if old.Confidence > stored.Confidence {
				stored.Confidence = old.Confidence
			}
		}
		stored.UpdatedAt = time.Now().UTC()

		if err := tx.Set(key, storage.MarshalRelation(&stored)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Helper methods

// readEntity reads an entity from the transaction.
// Returns nil, nil if the key doesn't exist.
func readEntity(tx *badger.Txn, key []byte) (*core.Entity, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var entity *core.Entity
	err = item.Value(func(val []byte) error {
		var err error
		entity, err = storage.UnmarshalEntity(val)
		return err
	})
	return entity, err
}

// readEntityByTupleKey resolves a tuple index key to the full entity.
// Returns nil, nil if the tuple key doesn't exist.
func readEntityByTupleKey(tx *badger.Txn, namespace string, tupleKey []byte) (*core.Entity, error) {
	item, err := tx.Get(tupleKey)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var id core.ID
	err = item.Value(func(val []byte) error {
		var err error
		id, err = storage.UnmarshalID(val)
		return err
	})
	if err != nil {
		return nil, err
	}

	return readEntity(tx, makeEntityKey(namespace, id))
}

// readMention reads a mention from the transaction.
// Returns nil, nil if the key doesn't exist.
func readMention(tx *badger.Txn, key []byte) (*core.Mention, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var mention *core.Mention
	err = item.Value(func(val []byte) error {
		var err error
		mention, err = storage.UnmarshalMention(val)
		return err
	})
	return mention, err
}

// readRelation reads a relation from the transaction.
// Returns nil, nil if the key doesn't exist.
func readRelation(tx *badger.Txn, key []byte) (*core.Relation, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var relation *core.Relation
	err = item.Value(func(val []byte) error {
		var err error
		relation, err = storage.UnmarshalRelation(val)
		return err
	})
	return relation, err
}
