package ai

// EntityTypes defines the valid categories for extracted entities.
// These types are used by entity extractors to classify what a name refers
// to in technical documentation.
var EntityTypes = []string{
	"api",
	"cloud_provider",
	"command",
	"concept",
	"configuration",
	"database",
	"file_format",
	"framework",
	"hardware",
	"library",
	"organization",
	"person",
	"platform",
	"product",
	"programming_language",
	"protocol",
	"service",
	"standard",
	"technology",
	"tool",
}

// ExtractedEntity represents a typed entity identified in document text.
type ExtractedEntity struct {
	// Type categorizes the entity. Must match one of the predefined entity types.
	Type string

	// Name is the entity's display name as it appears in the text.
	// Example: "Kubernetes", "PostgreSQL", "gRPC"
	Name string

	// Confidence is the extractor's confidence in [0,1] that the entity
	// was correctly identified and typed.
	Confidence float64

	// Properties holds free-form attributes reported by the extractor,
	// such as "version" or "role".
	Properties map[string]string
}

// ExtractedRelation represents a relation between two extracted entities,
// referenced by their names within the same extraction.
type ExtractedRelation struct {
	From       string
	To         string
	Type       string
	Confidence float64
}

// Extraction is the result of a single entity-extraction call.
type Extraction struct {
	Entities   []ExtractedEntity
	Relations  []ExtractedRelation
	TokensUsed int
	Raw        string // raw model response, kept for diagnostics
}
