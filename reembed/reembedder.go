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
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/docgraph/ai"
	"github.com/poiesic/docgraph/core"
	"github.com/poiesic/docgraph/storage"
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of entities to embed in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of entities)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// Concurrency is the number of batches embedded in parallel.
	// Zero means half the CPU count, minimum 1.
	Concurrency int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder orchestrates the reembedding of all entities in a namespace.
type Reembedder struct {
	repo      storage.EntityRepository
	embedder  ai.Embedder
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *EntityIterator
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(repo storage.EntityRepository, embedder ai.Embedder, config *Config, progress io.Writer) (*Reembedder, error) {
	if repo == nil {
		return nil, ErrEntityRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}

	return &Reembedder{
		repo:      repo,
		embedder:  embedder,
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(repo, embedder, config.MaxRetries, config.RetryDelay),
		iterator:  NewEntityIterator(repo, config.BatchSize),
	}, nil
}

// Run executes the reembedding operation over one namespace.
// All entities in the namespace are reembedded with the configured embedder.
// Batches are processed concurrently on a worker pool; progress is reported
// to the configured writer.
func (r *Reembedder) Run(ctx context.Context, namespace string) error {
	allEntities, err := r.repo.AllEntities(ctx, namespace)
	if err != nil {
		return fmt.Errorf("failed to query entities: %w", err)
	}

	total := len(allEntities)
	if total == 0 {
		fmt.Fprintf(r.progress, "No entities found in namespace %q (0 entities)\n", namespace)
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d entities (batch size: %d)\n",
		total, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	pool, err := ants.NewPool(r.poolSize())
	if err != nil {
		return err
	}
	defer pool.Release()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		batchErrs []error
	)

	err = r.iterator.ForEach(ctx, namespace, func(entities []*core.Entity) error {
		batch := entities
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if err := r.processor.Process(ctx, batch); err != nil {
				mu.Lock()
				batchErrs = append(batchErrs, fmt.Errorf("failed to process batch: %w", err))
				mu.Unlock()
				return
			}
			tracker.Increment(len(batch))
		})
		if submitErr != nil {
			wg.Done()
			return submitErr
		}
		return nil
	})

	wg.Wait()

	if err != nil {
		return err
	}
	if len(batchErrs) > 0 {
		return errors.Join(batchErrs...)
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d entities in %v (%.1f entities/sec)\n",
		total, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())

	return nil
}

func (r *Reembedder) poolSize() int {
	if r.config.Concurrency > 0 {
		return r.config.Concurrency
	}
	size := runtime.NumCPU() / 2
	if size < 1 {
		size = 1
	}
	return size
}
