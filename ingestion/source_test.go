package ingestion

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCorpusFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestFileSource_Documents(t *testing.T) {
	root := t.TempDir()
	writeCorpusFile(t, root, "guides/install.md", "# Installing\n\nSee [setup](guides/setup.md) and [setup](guides/setup.md).\n")
	writeCorpusFile(t, root, "guides/setup.md", "Plain intro without heading.\n")
	writeCorpusFile(t, root, "notes.txt", "Some plain text notes.\n")
	writeCorpusFile(t, root, "image.png", "not a document")

	source, err := NewFileSource(root)
	require.NoError(t, err)

	docs, err := source.Documents(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 3)

	// Sorted by DocID
	assert.Equal(t, "guides/install", docs[0].DocID)
	assert.Equal(t, "guides/setup", docs[1].DocID)
	assert.Equal(t, "notes", docs[2].DocID)

	// Title from first markdown heading
	assert.Equal(t, "Installing", docs[0].Title)
	// Fallback title from file name
	assert.Equal(t, "setup", docs[1].Title)

	// Links deduplicated, order preserved
	assert.Equal(t, []string{"guides/setup.md"}, docs[0].Links)
	assert.Empty(t, docs[1].Links)
}

func TestNewFileSource_NotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.md")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	_, err := NewFileSource(path)
	assert.Error(t, err)
}

func TestNewFileSource_Missing(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestDocIDFromPath(t *testing.T) {
	assert.Equal(t, "guides/install", docIDFromPath(filepath.FromSlash("guides/install.md")))
	assert.Equal(t, "notes", docIDFromPath("notes.txt"))
}
