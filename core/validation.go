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


package core

import "fmt"

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Namespace must not be empty
//   - DocID must not be empty
//
// NOT validated (populated by the pipeline):
//   - Fingerprint (computed from content before storage)
//   - Title, Text, Links (may legitimately be empty)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.Namespace == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyNamespace)
	}

	if doc.DocID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyDocID)
	}

	return nil
}

// ValidateEntity validates an Entity according to domain rules.
//
// Validation rules:
//   - Namespace must not be empty
//   - Name must not be empty
//   - Type must not be empty
//   - Confidence must lie in [0,1]
//
// NOT validated (populated by processors):
//   - Vector (can be empty until embedded)
//   - NormalizedName (populated by the normalizer hook)
//   - ID (0 is valid until derived from the identity tuple)
func ValidateEntity(entity *Entity) error {
	if entity == nil {
		return fmt.Errorf("%w: entity is nil", ErrInvalidEntity)
	}

	if entity.Namespace == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntity, ErrEmptyNamespace)
	}

	if entity.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntity, ErrEmptyEntityName)
	}

	if entity.Type == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntity, ErrEmptyEntityType)
	}

	if entity.Confidence < 0 || entity.Confidence > 1 {
		return fmt.Errorf("%w: %w: %f", ErrInvalidEntity, ErrConfidenceOutOfRange, entity.Confidence)
	}

	return nil
}
