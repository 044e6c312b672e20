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


package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docgraph/core"
	"github.com/poiesic/docgraph/storage"
)

// RunRepository implements storage.RunRepository for BadgerDB.
type RunRepository struct {
	backend *Backend
}

var _ storage.RunRepository = (*RunRepository)(nil)

// NewRunRepository creates a new RunRepository.
func NewRunRepository(backend *Backend) *RunRepository {
	return &RunRepository{
		backend: backend,
	}
}

// SaveRunReport persists a run report, replacing the previous one for the
// same namespace.
func (r *RunRepository) SaveRunReport(ctx context.Context, report *core.RunReport) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeRunReportKey(report.Namespace)
		if err := tx.Set(key, storage.MarshalRunReport(report)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// LoadLastRun retrieves the last saved run report for a namespace.
// Returns nil, nil if no report exists.
func (r *RunRepository) LoadLastRun(ctx context.Context, namespace string) (*core.RunReport, error) {
	var report *core.RunReport
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeRunReportKey(namespace))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			report, unmarshalErr = storage.UnmarshalRunReport(val)
			return unmarshalErr
		})
	}, false)

	return report, err
}
