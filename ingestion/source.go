package ingestion

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// SourceDocument is one parsed document produced by a DocumentSource.
type SourceDocument struct {
	DocID      string
	SourcePath string
	Title      string
	Text       string
	Links      []string
}

// DocumentSource enumerates the documents of a corpus in a stable order.
type DocumentSource interface {
	Documents(ctx context.Context) ([]*SourceDocument, error)
}

// FileSource reads a directory tree of markdown and plain-text files.
// Documents are returned sorted by DocID, so runs over the same corpus are
// deterministic.
type FileSource struct {
	root   string
	logger *slog.Logger
}

var _ DocumentSource = (*FileSource)(nil)

var (
	markdownLinkPattern = regexp.MustCompile(`\[[^\]]*\]\(([^)\s]+)\)`)
	headingPattern      = regexp.MustCompile(`(?m)^#\s+(.+)$`)
)

// NewFileSource creates a FileSource rooted at the given directory.
func NewFileSource(root string) (*FileSource, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}
	return &FileSource{
		root:   root,
		logger: slog.Default().With("component", "file-source"),
	}, nil
}

// Documents walks the tree and parses every .md and .txt file.
// A file that cannot be read is logged and skipped; it does not fail the
// enumeration.
func (s *FileSource) Documents(ctx context.Context) ([]*SourceDocument, error) {
	var paths []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".md", ".txt":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	docs := make([]*SourceDocument, 0, len(paths))
	for _, path := range paths {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("skipping unreadable file", "path", path, "err", err)
			continue
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return nil, err
		}

		text := string(data)
		docs = append(docs, &SourceDocument{
			DocID:      docIDFromPath(rel),
			SourcePath: path,
			Title:      titleOf(text, rel),
			Text:       text,
			Links:      extractLinks(text),
		})
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].DocID < docs[j].DocID })
	return docs, nil
}

// docIDFromPath derives a stable document ID from a relative file path:
// forward slashes, no extension.
func docIDFromPath(rel string) string {
	id := filepath.ToSlash(rel)
	return strings.TrimSuffix(id, filepath.Ext(id))
}

// titleOf returns the first markdown heading, or the file name without
// extension when there is none.
func titleOf(text, rel string) string {
	if m := headingPattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	base := filepath.Base(rel)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// extractLinks collects markdown link targets, dropping duplicates while
// keeping first-seen order.
func extractLinks(text string) []string {
	var links []string
	seen := make(map[string]bool)
	for _, m := range markdownLinkPattern.FindAllStringSubmatch(text, -1) {
		target := m[1]
		if seen[target] {
			continue
		}
		seen[target] = true
		links = append(links, target)
	}
	return links
}
