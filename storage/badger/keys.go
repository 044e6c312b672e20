package badger

import (
	"fmt"

	"github.com/poiesic/docgraph/core"
)

// Key prefixes for different data types. Every key embeds the namespace so
// each namespace is an isolated graph within one database.
const (
	documentPrefix    = "docrec"
	entityPrefix      = "entrec"
	entityTuplePrefix = "enttyna"
	mentionPrefix     = "menrec"
	relationPrefix    = "relrec"
	runReportPrefix   = "runrec"
)

// makeDocumentKey generates a key for a document by its (namespace, docID) pair.
func makeDocumentKey(namespace, docID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", documentPrefix, namespace, docID))
}

// makeDocumentScanPrefix generates the iteration prefix for all documents in
// a namespace. Iterating in key order yields documents sorted by docID.
func makeDocumentScanPrefix(namespace string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", documentPrefix, namespace))
}

// makeEntityKey generates a key for an entity by ID.
func makeEntityKey(namespace string, id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%s:%d", entityPrefix, namespace, id))
}

// makeEntityScanPrefix generates the iteration prefix for all entities in a
// namespace.
func makeEntityScanPrefix(namespace string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", entityPrefix, namespace))
}

// makeEntityTupleKey generates a composite key for entity lookup by identity
// tuple. Format: prefix:namespace:type:normalizedName
func makeEntityTupleKey(namespace, entityType, normalizedName string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s:%s", entityTuplePrefix, namespace, entityType, normalizedName))
}

// makeEntityTupleScanPrefix generates the iteration prefix for all entities
// of one type in a namespace. The trailing separator keeps "api" from
// matching "api_gateway".
func makeEntityTupleScanPrefix(namespace, entityType string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s:", entityTuplePrefix, namespace, entityType))
}

// makeMentionKey generates a key for a doc-to-entity mention edge.
func makeMentionKey(namespace, docID string, entityID core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s:%d", mentionPrefix, namespace, docID, entityID))
}

// makeRelationKey generates a key for an entity-to-entity relation edge.
// The relation type is part of the key, so two entities can be connected by
// multiple differently-typed edges.
func makeRelationKey(namespace string, fromID core.ID, relationType string, toID core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%s:%d:%s:%d", relationPrefix, namespace, fromID, relationType, toID))
}

// makeRunReportKey generates the key for the last run report of a namespace.
func makeRunReportKey(namespace string) []byte {
	return []byte(fmt.Sprintf("%s:%s", runReportPrefix, namespace))
}
