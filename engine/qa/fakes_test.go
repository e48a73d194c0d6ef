package qa

import (
	"context"
	"sync"

	"github.com/compozy/hybridqa/engine/dataset"
	"github.com/compozy/hybridqa/engine/knowledge"
	"github.com/compozy/hybridqa/engine/knowledge/chunk"
	"github.com/compozy/hybridqa/engine/llm/task"
)

type taskFunc func(inputs map[string]string) (task.Result, error)

// fakeRunner answers each task through its own function and records inputs.
type fakeRunner struct {
	mu     sync.Mutex
	tasks  map[string]taskFunc
	inputs map[string][]map[string]string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{tasks: map[string]taskFunc{}, inputs: map[string][]map[string]string{}}
}

func (f *fakeRunner) on(name string, fn taskFunc) *fakeRunner {
	f.tasks[name] = fn
	return f
}

func (f *fakeRunner) Run(_ context.Context, def *task.Definition, inputs map[string]string) (task.Result, error) {
	f.mu.Lock()
	f.inputs[def.Name] = append(f.inputs[def.Name], inputs)
	fn := f.tasks[def.Name]
	f.mu.Unlock()
	if fn == nil {
		return task.Result{}, nil
	}
	return fn(inputs)
}

func (f *fakeRunner) calls(name string) []map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inputs[name]
}

func reply(kv ...any) taskFunc {
	res := task.Result{}
	for i := 0; i+1 < len(kv); i += 2 {
		res[kv[i].(string)] = kv[i+1]
	}
	return func(map[string]string) (task.Result, error) { return res, nil }
}

func failing(err error) taskFunc {
	return func(map[string]string) (task.Result, error) { return nil, err }
}

type fakeDataset struct {
	mu      sync.Mutex
	execute func(query string) dataset.Outcome
	queries []string
}

func (d *fakeDataset) Execute(_ context.Context, query string) dataset.Outcome {
	d.mu.Lock()
	d.queries = append(d.queries, query)
	d.mu.Unlock()
	if d.execute == nil {
		return dataset.NoRowsOutcome()
	}
	return d.execute(query)
}

func (d *fakeDataset) DescribeSchema(context.Context) string {
	return "Table: orders\nColumns: OrderID, OrderDate\n--------------------"
}

func (d *fakeDataset) executed() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.queries...)
}

type fakeSearcher struct {
	mu    sync.Mutex
	docs  []knowledge.RetrievedResult
	calls int
}

func (s *fakeSearcher) Retrieve(_ context.Context, _ string, topK int) []knowledge.RetrievedResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.docs[:min(topK, len(s.docs))]
}

func doc(id, content string) knowledge.RetrievedResult {
	return knowledge.RetrievedResult{Chunk: chunk.Chunk{ID: id, Content: content, Source: "doc.md"}, Score: 1}
}

func rowsOutcome(columns []string, values ...[]any) dataset.Outcome {
	rows := make([]dataset.Row, 0, len(values))
	for _, v := range values {
		rows = append(rows, dataset.NewRow(columns, v))
	}
	return dataset.RowsOutcome(rows)
}
