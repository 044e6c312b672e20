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


// Package hooks provides the ordered hook chain the ingest pipeline runs
// around entity storage.
//
// Two hook points exist:
//
//   - Before-store hooks transform the entity list extracted from one
//     document, each hook consuming the previous hook's output. A failing
//     hook is logged and skipped; the chain continues with the last good
//     entity list, so a broken enrichment stage degrades the batch instead
//     of failing it.
//   - After-batch hooks observe the entities accumulated from all
//     successfully processed documents, exactly once per run. Their errors
//     are logged and never propagated.
//
// Hooks run in registration order. The Registry is populated before a run
// starts and is not mutated during one.
//
// The package ships the standard chain: Normalizer (canonical entity names),
// FuzzyDeduper (string-similarity match against stored entities), and
// VectorDeduper (embedding-similarity match for the fuzzy residual). Both
// dedupers annotate duplicates via Entity.DuplicateOf; nothing is merged.
package hooks
