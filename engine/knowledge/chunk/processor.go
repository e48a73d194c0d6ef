package chunk

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

const (
	StrategyParagraph = "paragraph"
	StrategyRecursive = "recursive"
)

const paragraphSeparator = "\n\n"

var newlinePattern = regexp.MustCompile(`\r\n|\r`)

// Processor splits documents into chunks with stable identifiers.
type Processor struct {
	settings Settings
}

// NewProcessor validates settings. Size and overlap only apply to the
// recursive strategy.
func NewProcessor(settings Settings) (*Processor, error) {
	if settings.Strategy == "" {
		settings.Strategy = StrategyParagraph
	}
	switch settings.Strategy {
	case StrategyParagraph:
	case StrategyRecursive:
		if settings.Size <= 0 {
			return nil, errors.New("chunk: size must be greater than zero")
		}
		if settings.Overlap < 0 {
			return nil, errors.New("chunk: overlap cannot be negative")
		}
		if settings.Overlap >= settings.Size {
			return nil, fmt.Errorf("chunk: overlap %d must be smaller than size %d", settings.Overlap, settings.Size)
		}
	default:
		return nil, fmt.Errorf("chunk: unknown strategy %q", settings.Strategy)
	}
	return &Processor{settings: settings}, nil
}

// Process chunks documents in order. Chunk ids are "<name>::chunk<N>" where N
// is the segment ordinal inside the document; blank segments are dropped but
// still consume their ordinal.
func (p *Processor) Process(docs []Document) ([]Chunk, error) {
	chunks := make([]Chunk, 0, len(docs))
	for _, doc := range docs {
		segments, err := p.split(newlinePattern.ReplaceAllString(doc.Text, "\n"))
		if err != nil {
			return nil, fmt.Errorf("chunk: split document %s: %w", doc.Name, err)
		}
		for idx, segment := range segments {
			text := strings.TrimSpace(segment)
			if text == "" {
				continue
			}
			chunks = append(chunks, Chunk{
				ID:      fmt.Sprintf("%s::chunk%d", doc.Name, idx),
				Content: text,
				Source:  doc.Name,
			})
		}
	}
	return chunks, nil
}

func (p *Processor) split(text string) ([]string, error) {
	if p.settings.Strategy == StrategyRecursive {
		splitter := textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(p.settings.Size),
			textsplitter.WithChunkOverlap(p.settings.Overlap),
		)
		return splitter.SplitText(text)
	}
	return strings.Split(text, paragraphSeparator), nil
}
