package ingest

import (
	"testing"

	"github.com/compozy/hybridqa/engine/core"
	"github.com/compozy/hybridqa/engine/knowledge/chunk"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func corpusFS(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	files := map[string]string{
		"docs/product_policy.md":     "# Returns\n\nUnopened Beverages may be returned within 14 days.",
		"docs/marketing_calendar.md": "# Calendar\n\nSummer Beverages 2017: June to August 2017.",
		"docs/notes.txt":             "ignored",
		"docs/archive/kpi_defs.md":   "AOV = revenue / distinct orders.",
	}
	for name, body := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(body), 0o644))
	}
	return fs
}

func TestLoadDocuments(t *testing.T) {
	t.Run("Should load matching files sorted by name", func(t *testing.T) {
		docs, err := LoadDocuments(t.Context(), corpusFS(t), "docs", "*.md")

		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "marketing_calendar.md", docs[0].Name)
		assert.Equal(t, "product_policy.md", docs[1].Name)
	})

	t.Run("Should support recursive patterns", func(t *testing.T) {
		docs, err := LoadDocuments(t.Context(), corpusFS(t), "docs", "**/*.md")

		require.NoError(t, err)
		names := make([]string, len(docs))
		for i, d := range docs {
			names[i] = d.Name
		}
		assert.Contains(t, names, "archive/kpi_defs.md")
		assert.Len(t, names, 3)
	})

	t.Run("Should return nothing for a missing directory", func(t *testing.T) {
		docs, err := LoadDocuments(t.Context(), afero.NewMemMapFs(), "nowhere", "*.md")

		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("Should reject invalid UTF-8", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "docs/bad.md", []byte{0xff, 0xfe}, 0o644))

		_, err := LoadDocuments(t.Context(), fs, "docs", "*.md")

		assert.Equal(t, core.ErrCodeCorpusLoad, core.ErrorCode(err))
	})
}

func TestBuild(t *testing.T) {
	t.Run("Should index the corpus for retrieval", func(t *testing.T) {
		svc, err := Build(t.Context(), corpusFS(t), Options{
			Dir:       "docs",
			Pattern:   "*.md",
			Chunking:  chunk.Settings{Strategy: chunk.StrategyParagraph},
			CacheSize: 8,
		})
		require.NoError(t, err)

		results := svc.Retrieve(t.Context(), "return window beverages unopened", 1)

		assert.Equal(t, 4, svc.Len())
		require.Len(t, results, 1)
		assert.Equal(t, "product_policy.md::chunk1", results[0].Chunk.ID)
	})

	t.Run("Should build an empty retriever without documents", func(t *testing.T) {
		svc, err := Build(t.Context(), afero.NewMemMapFs(), Options{Dir: "docs", Pattern: "*.md"})

		require.NoError(t, err)
		assert.Empty(t, svc.Retrieve(t.Context(), "anything", 3))
	})
}
