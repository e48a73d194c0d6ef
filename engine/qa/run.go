package qa

import (
	"fmt"
	"reflect"

	"dario.cat/mergo"
	"github.com/compozy/hybridqa/engine/core"
	"github.com/compozy/hybridqa/engine/dataset"
	"github.com/compozy/hybridqa/engine/knowledge"
)

// GeneratedQuery is one generation attempt.
type GeneratedQuery struct {
	SQL     string
	Context string
	Attempt int
}

// AgentRun is the state of one question as it moves through the stages.
// Stages return partial runs that are merged with Apply; zero fields in an
// update leave the current value untouched.
type AgentRun struct {
	Question    string
	FormatHint  string
	Route       Route
	Retrieved   []knowledge.RetrievedResult
	Query       *GeneratedQuery
	Outcome     *dataset.Outcome
	Retries     int
	FinalAnswer any
	Explanation string
	Citations   []string
}

// Apply merges update into a copy of the run and returns it.
func (r AgentRun) Apply(update AgentRun) (AgentRun, error) {
	next, err := r.Snapshot()
	if err != nil {
		return r, err
	}
	if err := mergo.Merge(&next, update, mergo.WithOverride, mergo.WithTransformers(replacePointers{})); err != nil {
		return r, fmt.Errorf("failed to merge run update: %w", err)
	}
	return next, nil
}

// Snapshot returns a deep copy that shares nothing with r.
func (r AgentRun) Snapshot() (AgentRun, error) {
	return core.DeepCopy(r)
}

// LastError is the message of a failed outcome, or "".
func (r AgentRun) LastError() string {
	if r.Outcome == nil || !r.Outcome.Failed() {
		return ""
	}
	return r.Outcome.Message
}

// SQL is the current query text, or "".
func (r AgentRun) SQL() string {
	if r.Query == nil {
		return ""
	}
	return r.Query.SQL
}

// Attempts is the number of generation attempts so far.
func (r AgentRun) Attempts() int {
	if r.Query == nil {
		return 0
	}
	return r.Query.Attempt
}

var (
	queryPtrType   = reflect.TypeOf((*GeneratedQuery)(nil))
	outcomePtrType = reflect.TypeOf((*dataset.Outcome)(nil))
)

// replacePointers swaps query and outcome pointers whole instead of merging
// their fields, so a new outcome never inherits rows from the previous one.
type replacePointers struct{}

func (replacePointers) Transformer(typ reflect.Type) func(dst, src reflect.Value) error {
	if typ != queryPtrType && typ != outcomePtrType {
		return nil
	}
	return func(dst, src reflect.Value) error {
		if !src.IsNil() && dst.CanSet() {
			dst.Set(src)
		}
		return nil
	}
}
