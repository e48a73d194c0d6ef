package ingest

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/compozy/hybridqa/engine/core"
	"github.com/compozy/hybridqa/engine/knowledge/chunk"
	"github.com/compozy/hybridqa/pkg/logger"
	"github.com/spf13/afero"
)

const MaxMarkdownFileSizeBytes = 4 * 1024 * 1024

// LoadDocuments reads every file under dir matching pattern, sorted by path.
// A missing directory yields no documents.
func LoadDocuments(ctx context.Context, fs afero.Fs, dir, pattern string) ([]chunk.Document, error) {
	log := logger.FromContext(ctx)
	exists, err := afero.DirExists(fs, dir)
	if err != nil {
		return nil, core.NewError(err, core.ErrCodeCorpusLoad, map[string]any{"dir": dir})
	}
	if !exists {
		log.Warn("Corpus directory not found", "dir", dir)
		return nil, nil
	}
	matches, err := doublestar.Glob(afero.NewIOFS(afero.NewBasePathFs(fs, dir)), pattern)
	if err != nil {
		return nil, core.NewError(
			fmt.Errorf("glob %q failed: %w", pattern, err),
			core.ErrCodeCorpusLoad,
			map[string]any{"dir": dir},
		)
	}
	if len(matches) == 0 {
		log.Warn("Corpus glob returned no files", "dir", dir, "pattern", pattern)
		return nil, nil
	}
	sort.Strings(matches)
	docs := make([]chunk.Document, 0, len(matches))
	for _, rel := range matches {
		doc, err := readMarkdownFile(fs, dir, rel)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func readMarkdownFile(fs afero.Fs, dir, rel string) (chunk.Document, error) {
	full := filepath.Join(dir, filepath.FromSlash(rel))
	info, err := fs.Stat(full)
	if err != nil {
		return chunk.Document{}, core.NewError(err, core.ErrCodeCorpusLoad, map[string]any{"file": rel})
	}
	if info.Size() > MaxMarkdownFileSizeBytes {
		return chunk.Document{}, core.NewError(
			fmt.Errorf("file %s exceeds %d bytes", rel, MaxMarkdownFileSizeBytes),
			core.ErrCodeCorpusLoad,
			map[string]any{"file": rel},
		)
	}
	data, err := afero.ReadFile(fs, full)
	if err != nil {
		return chunk.Document{}, core.NewError(err, core.ErrCodeCorpusLoad, map[string]any{"file": rel})
	}
	if !utf8.Valid(data) {
		return chunk.Document{}, core.NewError(
			fmt.Errorf("file %s is not valid UTF-8", rel),
			core.ErrCodeCorpusLoad,
			map[string]any{"file": rel},
		)
	}
	return chunk.Document{Name: path.Clean(rel), Text: string(data)}, nil
}
