package retriever

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/compozy/hybridqa/engine/knowledge"
	"github.com/compozy/hybridqa/pkg/logger"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type cacheKey struct {
	query string
	topK  int
}

// Service answers lexical searches over a read-only index.
type Service struct {
	index  *Index
	cache  *lru.Cache[cacheKey, []knowledge.RetrievedResult]
	tracer trace.Tracer
}

// NewService wraps index. A cacheSize of zero disables the result cache.
func NewService(index *Index, cacheSize int) (*Service, error) {
	s := &Service{
		index:  index,
		tracer: otel.Tracer("hybridqa.knowledge.retriever"),
	}
	if cacheSize > 0 {
		cache, err := lru.New[cacheKey, []knowledge.RetrievedResult](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("knowledge: create retrieval cache: %w", err)
		}
		s.cache = cache
	}
	return s, nil
}

// Len returns the number of searchable chunks.
func (s *Service) Len() int {
	if s == nil {
		return 0
	}
	return s.index.Len()
}

// Retrieve returns up to topK chunks by descending relevance. It never fails;
// an empty or missing index yields no results.
func (s *Service) Retrieve(ctx context.Context, query string, topK int) []knowledge.RetrievedResult {
	if s.Len() == 0 || topK <= 0 || strings.TrimSpace(query) == "" {
		return nil
	}
	ctx, span := s.tracer.Start(ctx, "hybridqa.knowledge.retrieve", trace.WithAttributes(
		attribute.Int("top_k", topK),
		attribute.Int("query_length", len(query)),
	))
	defer span.End()
	start := time.Now()
	key := cacheKey{query: query, topK: topK}
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			knowledge.RecordRetrieval(ctx, len(cached), true)
			span.SetAttributes(attribute.Bool("cached", true), attribute.Int("results", len(cached)))
			return append([]knowledge.RetrievedResult(nil), cached...)
		}
	}
	results := s.index.Search(query, topK)
	if s.cache != nil {
		s.cache.Add(key, append([]knowledge.RetrievedResult(nil), results...))
	}
	knowledge.RecordQueryLatency(ctx, time.Since(start))
	knowledge.RecordRetrieval(ctx, len(results), false)
	span.SetAttributes(attribute.Int("results", len(results)))
	logger.FromContext(ctx).Debug("Knowledge retrieval executed", "results", len(results), "top_k", topK)
	return results
}
