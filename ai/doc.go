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


// Package ai provides abstractions for the AI services used by docgraph.
//
// This package defines interfaces for AI operations including text embeddings
// and entity extraction. It follows the dependency inversion principle,
// allowing the pipeline and business logic to depend on abstractions rather
// than concrete implementations.
//
// # Design Principles
//
// The package is designed around three key interfaces:
//
//   - Embedder: Generates vector embeddings from text
//   - EntityExtractor: Extracts typed entities from document text
//   - AIProvider: Aggregates AI services for convenient initialization
//
// # Error Classification
//
// Extraction failures fall into three classes, and the retry wrapper in the
// ingestion pipeline branches on them:
//
//   - ErrMalformedResponse: the response could not be interpreted; retryable
//   - ErrTransient: timeout, rate limit, or connectivity failure; retryable
//     with backoff
//   - anything else: fatal for the document being processed
//
// Implementations must wrap their errors with the matching sentinel so that
// ai.IsRetryable can classify them.
//
// # Implementation Packages
//
// The ai package includes two implementation sub-packages:
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, openai.NewEmbedder, etc.) return
// INTERFACE types to enforce abstraction and prevent accidental coupling to
// concrete implementations. Test utility constructors (mock.NewMockEmbedder,
// mock.NewMockEntityExtractor) return CONCRETE types to enable test
// assertions and behavior injection.
package ai
