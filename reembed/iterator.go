// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package reembed

import (
	"context"

	"github.com/poiesic/docgraph/core"
	"github.com/poiesic/docgraph/storage"
)

const (
	// DefaultBatchSize is the default number of entities to fetch in each batch
	DefaultBatchSize = 100
)

// EntityIterator iterates over all entities in a namespace in batches.
type EntityIterator struct {
	repo      storage.EntityRepository
	batchSize int
}

// NewEntityIterator creates a new entity iterator.
// batchSize: number of entities in each batch (must be > 0)
func NewEntityIterator(repo storage.EntityRepository, batchSize int) *EntityIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &EntityIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// ForEach iterates over all entities in the namespace, calling fn for each
// batch. Iteration stops on first error from fn or when all entities are
// processed. Context cancellation is checked between batches.
func (it *EntityIterator) ForEach(ctx context.Context, namespace string, fn func([]*core.Entity) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	entities, err := it.repo.AllEntities(ctx, namespace)
	if err != nil {
		return err
	}

	if len(entities) == 0 {
		return nil
	}

	for i := 0; i < len(entities); i += it.batchSize {
		end := i + it.batchSize
		if end > len(entities) {
			end = len(entities)
		}

		if err := fn(entities[i:end]); err != nil {
			return err
		}

		// Check context after each batch
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	return nil
}
