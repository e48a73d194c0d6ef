package retriever

import (
	"math"
	"sort"
	"unicode"

	"github.com/compozy/hybridqa/engine/knowledge"
	"github.com/compozy/hybridqa/engine/knowledge/chunk"
	"golang.org/x/text/cases"
)

// Okapi BM25 parameters.
const (
	defaultK1 = 1.5
	defaultB  = 0.75
)

// Index is an immutable BM25 index over chunks in corpus order.
type Index struct {
	chunks  []chunk.Chunk
	terms   []map[string]int
	lengths []int
	df      map[string]int
	avgLen  float64
	k1      float64
	b       float64
}

// NewIndex tokenizes and indexes chunks. The slice order defines tie-breaking.
func NewIndex(chunks []chunk.Chunk) *Index {
	idx := &Index{
		chunks:  append([]chunk.Chunk(nil), chunks...),
		terms:   make([]map[string]int, len(chunks)),
		lengths: make([]int, len(chunks)),
		df:      make(map[string]int),
		k1:      defaultK1,
		b:       defaultB,
	}
	total := 0
	for i, c := range idx.chunks {
		tokens := Tokenize(c.Content)
		tf := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			tf[tok]++
		}
		for term := range tf {
			idx.df[term]++
		}
		idx.terms[i] = tf
		idx.lengths[i] = len(tokens)
		total += len(tokens)
	}
	if len(idx.chunks) > 0 {
		idx.avgLen = float64(total) / float64(len(idx.chunks))
	}
	return idx
}

// Len returns the number of indexed chunks.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.chunks)
}

func (idx *Index) idf(term string) float64 {
	n := float64(idx.df[term])
	total := float64(len(idx.chunks))
	return math.Log((total-n+0.5)/(n+0.5) + 1)
}

// Scores returns the BM25 score of every chunk for query.
func (idx *Index) Scores(query string) []float64 {
	scores := make([]float64, len(idx.chunks))
	if len(idx.chunks) == 0 {
		return scores
	}
	for _, term := range Tokenize(query) {
		if idx.df[term] == 0 {
			continue
		}
		idf := idx.idf(term)
		for i, tf := range idx.terms {
			freq := float64(tf[term])
			if freq == 0 {
				continue
			}
			norm := 1 - idx.b
			if idx.avgLen > 0 {
				norm += idx.b * float64(idx.lengths[i]) / idx.avgLen
			}
			scores[i] += idf * freq * (idx.k1 + 1) / (freq + idx.k1*norm)
		}
	}
	return scores
}

// Search returns at most topK results by descending score; equal scores keep
// corpus order.
func (idx *Index) Search(query string, topK int) []knowledge.RetrievedResult {
	if idx.Len() == 0 || topK <= 0 {
		return nil
	}
	scores := idx.Scores(query)
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	if topK < len(order) {
		order = order[:topK]
	}
	results := make([]knowledge.RetrievedResult, len(order))
	for i, pos := range order {
		results[i] = knowledge.RetrievedResult{Chunk: idx.chunks[pos], Score: scores[pos]}
	}
	return results
}

// Tokenize case-folds text and splits it into runs of letters and digits.
func Tokenize(text string) []string {
	folded := cases.Fold().String(text)
	var tokens []string
	start := -1
	for i, r := range folded {
		word := unicode.IsLetter(r) || unicode.IsDigit(r)
		switch {
		case word && start < 0:
			start = i
		case !word && start >= 0:
			tokens = append(tokens, folded[start:i])
			start = -1
		}
	}
	if start >= 0 {
		tokens = append(tokens, folded[start:])
	}
	return tokens
}
