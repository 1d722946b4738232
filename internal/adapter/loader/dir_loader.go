package loader

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"askdocs/internal/domain"
)

// DirLoader reads a corpus from a directory tree of plain-text files.
// Files are loaded in sorted path order so repeated runs see documents in
// the same sequence. Form feeds split a file into pages; files without
// one load as a single page.
type DirLoader struct {
	extensions map[string]struct{}
}

// NewDirLoader returns a loader accepting .txt and .md files.
func NewDirLoader() *DirLoader {
	return &DirLoader{
		extensions: map[string]struct{}{
			".txt": {},
			".md":  {},
		},
	}
}

// Load walks root and returns one document per accepted file. The document
// source is the path relative to root, with forward slashes, so segment
// ids stay stable across machines.
func (l *DirLoader) Load(root string) ([]domain.Document, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if _, ok := l.extensions[ext]; ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk corpus directory %s: %w", root, err)
	}
	sort.Strings(paths)

	docs := make([]domain.Document, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil, fmt.Errorf("failed to relativize %s: %w", path, err)
		}

		docs = append(docs, domain.Document{
			Source: filepath.ToSlash(rel),
			Pages:  splitPages(string(data)),
		})
	}
	return docs, nil
}

// splitPages splits on form feed. Page positions are preserved even when a
// page is blank, so segment ids keep pointing at the same physical page.
func splitPages(text string) []string {
	return strings.Split(text, "\f")
}
