package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/poiesic/docgraph/core"
	"github.com/poiesic/docgraph/storage"
	badgerstore "github.com/poiesic/docgraph/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate_SkipsUnchangedDocument(t *testing.T) {
	docRepo, _, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	fp := core.Fingerprint("Title", "Body", nil)
	require.NoError(t, docRepo.UpsertDocument(ctx, &core.Document{
		Namespace: "docs", DocID: "d1", Fingerprint: fp, Title: "Title", Text: "Body",
	}))

	g := newGate(docRepo, false, slog.Default())

	assert.True(t, g.shouldSkip(ctx, "docs", "d1", fp))
	assert.False(t, g.shouldSkip(ctx, "docs", "d1", core.Fingerprint("Title", "Changed", nil)))
	assert.False(t, g.shouldSkip(ctx, "docs", "unknown", fp))
}

func TestGate_RefreshDisablesSkip(t *testing.T) {
	docRepo, _, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	fp := core.Fingerprint("Title", "Body", nil)
	require.NoError(t, docRepo.UpsertDocument(ctx, &core.Document{
		Namespace: "docs", DocID: "d1", Fingerprint: fp, Title: "Title", Text: "Body",
	}))

	g := newGate(docRepo, true, slog.Default())
	assert.False(t, g.shouldSkip(ctx, "docs", "d1", fp))
}

// failingDocRepo returns an error from every fingerprint lookup.
type failingDocRepo struct {
	storage.DocumentRepository
}

func (f *failingDocRepo) GetDocumentFingerprint(ctx context.Context, namespace, docID string) (string, error) {
	return "", errors.New("disk on fire")
}

func TestGate_FailsOpenOnLookupError(t *testing.T) {
	g := newGate(&failingDocRepo{}, false, slog.Default())
	assert.False(t, g.shouldSkip(context.Background(), "docs", "d1", "fp"))
}
