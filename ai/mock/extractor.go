package mock

import (
	"context"
	"strings"

	"github.com/poiesic/docgraph/ai"
)

// MockEntityExtractor is a test double for ai.EntityExtractor.
// It allows custom behavior injection via function fields.
type MockEntityExtractor struct {
	// ExtractEntitiesFunc is called by ExtractEntities if set.
	// If nil, uses default simple word extraction.
	ExtractEntitiesFunc func(ctx context.Context, text string) (*ai.Extraction, error)

	callCount int
}

// NewMockEntityExtractor creates a mock entity extractor with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockExtractor().
func NewMockEntityExtractor() *MockEntityExtractor {
	return &MockEntityExtractor{}
}

// ExtractEntities extracts simple mock entities from text.
// Default behavior: capitalized words become entities with descending confidence.
func (m *MockEntityExtractor) ExtractEntities(ctx context.Context, text string) (*ai.Extraction, error) {
	m.callCount++

	if m.ExtractEntitiesFunc != nil {
		return m.ExtractEntitiesFunc(ctx, text)
	}

	// Default: capitalized words become technology entities
	words := strings.Fields(text)
	seen := make(map[string]bool)
	entities := make([]ai.ExtractedEntity, 0, len(words))
	confidence := 0.95
	for _, word := range words {
		if len(entities) >= 5 {
			break
		}

		word = strings.Trim(word, ".,!?;:\"'()[]{}")
		if word == "" || word[0] < 'A' || word[0] > 'Z' {
			continue
		}
		if seen[strings.ToLower(word)] {
			continue
		}
		seen[strings.ToLower(word)] = true

		entityType := "technology"
		if len(word) <= 4 {
			entityType = "tool"
		}

		entities = append(entities, ai.ExtractedEntity{
			Name:       word,
			Type:       entityType,
			Confidence: confidence,
		})

		if confidence > 0.5 {
			confidence -= 0.1
		}
	}

	return &ai.Extraction{
		Entities:  entities,
		Relations: []ai.ExtractedRelation{},
	}, nil
}

// CallCount returns the number of times ExtractEntities was called.
func (m *MockEntityExtractor) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockEntityExtractor) Reset() {
	m.callCount = 0
	m.ExtractEntitiesFunc = nil
}
