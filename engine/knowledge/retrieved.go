package knowledge

import "github.com/compozy/hybridqa/engine/knowledge/chunk"

// RetrievedResult is a chunk with its relevance score. Scores are comparable
// only within the result set of one query.
type RetrievedResult struct {
	Chunk chunk.Chunk
	Score float64
}
