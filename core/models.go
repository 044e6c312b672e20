package core

import (
	"encoding/binary"
	"encoding/hex"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing so that identical content
// always maps to the same identifier.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Fingerprint computes a content fingerprint over a document's normalized
// title, text, and links. Unchanged documents produce identical fingerprints,
// which is what the ingest pipeline's idempotency gate compares.
func Fingerprint(title, text string, links []string) string {
	h, _ := blake2b.New(16, nil)
	h.Write([]byte(strings.TrimSpace(title)))
	h.Write([]byte{0})
	h.Write([]byte(strings.TrimSpace(text)))
	for _, link := range links {
		h.Write([]byte{0})
		h.Write([]byte(strings.TrimSpace(link)))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Document represents an ingested source document.
// A document is unique per (Namespace, DocID).
type Document struct {
	Namespace   string
	DocID       string
	SourcePath  string
	Fingerprint string // content hash over title, text, and links
	Title       string
	Text        string
	Links       []string
	InsertedAt  time.Time
	UpdatedAt   time.Time
}

// DuplicateRef points an extracted entity at a previously stored equivalent.
// It is a non-destructive annotation: the referenced entity is resolved at
// storage time, never merged eagerly.
type DuplicateRef struct {
	Name string
	Id   ID
}

// Entity represents a typed node in the knowledge graph.
// Its identity is derived from (Namespace, Type, NormalizedName), so
// re-creating the same entity is an idempotent no-op.
type Entity struct {
	Id             ID
	Namespace      string
	Type           string
	Name           string // display name as extracted
	NormalizedName string // canonical form used for identity and matching
	Confidence     float64
	Properties     map[string]string
	DuplicateOf    *DuplicateRef // set by dedup stages, nil otherwise
	Vector         []float32     // embedding of the normalized name (populated by dedup or reembed)
	InsertedAt     time.Time
	UpdatedAt      time.Time
}

// Tuple returns the identity tuple of the entity as "(Namespace,Type,NormalizedName)".
// This is used for generating deterministic IDs.
func (e *Entity) Tuple() string {
	return "(" + e.Namespace + "," + e.Type + "," + e.NormalizedName + ")"
}

// Mention is a directed edge from a document to an entity, recording
// extraction provenance. One mention exists per (doc, entity) pair.
type Mention struct {
	Namespace   string
	DocID       string
	EntityId    ID
	Confidence  float64
	Occurrences int
	UpdatedAt   time.Time
}

// Relation is an entity-to-entity edge with a type label.
// Repeated upserts of the same relation increment Occurrences.
type Relation struct {
	Namespace   string
	FromId      ID
	ToId        ID
	Type        string
	Confidence  float64
	Occurrences int
	UpdatedAt   time.Time
}

// EntityMatch represents an entity match from vector similarity search.
type EntityMatch struct {
	Entity *Entity
	Score  float32
}
