package ingestion

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/docgraph/storage"
)

// gate implements the idempotency check in front of extraction.
// A document is skipped iff a stored fingerprint exists, equals the new
// one, and refresh is not set.
type gate struct {
	docs    storage.DocumentRepository
	refresh bool
	logger  *slog.Logger
}

func newGate(docs storage.DocumentRepository, refresh bool, logger *slog.Logger) *gate {
	return &gate{
		docs:    docs,
		refresh: refresh,
		logger:  logger.With("component", "gate"),
	}
}

// shouldSkip reports whether the document is unchanged since the last run.
// A lookup failure fails open: the document is processed and the error is
// logged, since re-processing is idempotent and cheaper than silently
// dropping a document.
func (g *gate) shouldSkip(ctx context.Context, namespace, docID, fingerprint string) bool {
	if g.refresh {
		return false
	}

	stored, err := g.docs.GetDocumentFingerprint(ctx, namespace, docID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			g.logger.Warn("fingerprint lookup failed, processing document",
				"doc_id", docID, "err", err)
		}
		return false
	}

	return stored == fingerprint
}
