package qa

import (
	"context"

	"github.com/compozy/hybridqa/engine/dataset"
	"github.com/compozy/hybridqa/engine/knowledge"
	"github.com/compozy/hybridqa/engine/llm/task"
)

// Dataset runs generated queries. Execute reports failures in the outcome.
type Dataset interface {
	Execute(ctx context.Context, query string) dataset.Outcome
	DescribeSchema(ctx context.Context) string
}

// Searcher returns the chunks most relevant to a query.
type Searcher interface {
	Retrieve(ctx context.Context, query string, topK int) []knowledge.RetrievedResult
}

// TaskRunner runs one model task and returns its untyped outputs.
type TaskRunner interface {
	Run(ctx context.Context, def *task.Definition, inputs map[string]string) (task.Result, error)
}
