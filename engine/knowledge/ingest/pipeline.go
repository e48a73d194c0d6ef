package ingest

import (
	"context"
	"time"

	"github.com/compozy/hybridqa/engine/knowledge"
	"github.com/compozy/hybridqa/engine/knowledge/chunk"
	"github.com/compozy/hybridqa/engine/knowledge/retriever"
	"github.com/compozy/hybridqa/pkg/logger"
	"github.com/spf13/afero"
)

// Options selects the corpus files and how they are chunked.
type Options struct {
	Dir       string
	Pattern   string
	Chunking  chunk.Settings
	CacheSize int
}

// Build loads the corpus, chunks it and returns a ready retriever. The
// resulting index is never mutated afterwards.
func Build(ctx context.Context, fs afero.Fs, opts Options) (*retriever.Service, error) {
	log := logger.FromContext(ctx)
	start := time.Now()
	processor, err := chunk.NewProcessor(opts.Chunking)
	if err != nil {
		return nil, err
	}
	docs, err := LoadDocuments(ctx, fs, opts.Dir, opts.Pattern)
	if err != nil {
		return nil, err
	}
	chunks, err := processor.Process(docs)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		log.Warn("No documents found to index", "dir", opts.Dir)
	}
	index := retriever.NewIndex(chunks)
	knowledge.RecordIndexedChunks(ctx, len(chunks))
	log.Info("Corpus indexed",
		"files", len(docs),
		"chunks", len(chunks),
		"duration", time.Since(start),
	)
	return retriever.NewService(index, opts.CacheSize)
}
