package qa

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/compozy/hybridqa/engine/core"
	"github.com/compozy/hybridqa/engine/dataset"
	"github.com/compozy/hybridqa/engine/knowledge"
	"github.com/compozy/hybridqa/engine/llm/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, runner *fakeRunner, ds *fakeDataset, searcher *fakeSearcher) *Engine {
	t.Helper()
	opts := Options{Runner: runner, Dataset: ds, TopK: 3, MaxRetries: 2}
	if searcher != nil {
		opts.Searcher = searcher
	}
	engine, err := New(opts)
	require.NoError(t, err)
	return engine
}

func TestNew(t *testing.T) {
	t.Run("Should require a runner and a dataset", func(t *testing.T) {
		_, err := New(Options{Dataset: &fakeDataset{}})
		require.Error(t, err)

		_, err = New(Options{Runner: newFakeRunner()})
		require.Error(t, err)
	})

	t.Run("Should expose Answer as the only method", func(t *testing.T) {
		typ := reflect.TypeFor[*Engine]()

		require.Equal(t, 1, typ.NumMethod())
		assert.Equal(t, "Answer", typ.Method(0).Name)
	})
}

func TestEngine_Answer(t *testing.T) {
	t.Run("Should answer a data question in one attempt", func(t *testing.T) {
		runner := newFakeRunner().
			on("route", reply(task.FieldClassification, "data")).
			on("generate_sql", reply(task.FieldSQLQuery, "SELECT COUNT(*) AS n FROM orders")).
			on("synthesize", reply(
				task.FieldFinalAnswer, "There are 830 orders.",
				task.FieldExplanation, "Counted rows in Orders",
				task.FieldCitations, []any{"orders"},
			))
		ds := &fakeDataset{execute: func(string) dataset.Outcome {
			return rowsOutcome([]string{"n"}, []any{int64(830)})
		}}
		searcher := &fakeSearcher{docs: []knowledge.RetrievedResult{doc("a::chunk0", "x")}}

		answer, err := newEngine(t, runner, ds, searcher).Answer(t.Context(), Question{
			ID:         "q1",
			Text:       "How many orders?",
			FormatHint: "int",
		})

		require.NoError(t, err)
		assert.Equal(t, "q1", answer.ID)
		assert.Equal(t, 830, answer.FinalAnswer)
		assert.Equal(t, "SELECT COUNT(*) AS n FROM orders", answer.SQL)
		assert.Equal(t, 0.8, answer.Confidence)
		assert.Equal(t, "Counted rows in Orders.", answer.Explanation)
		assert.Equal(t, []string{"Orders", "orders"}, answer.Citations)
		assert.Equal(t, RouteData, answer.Route)
		assert.Equal(t, 1, answer.Attempts)
		assert.Equal(t, 0, answer.Retries)
		assert.NotEmpty(t, answer.RunID)
		assert.Equal(t, 0, searcher.calls)
		assert.Len(t, ds.executed(), 1)
	})

	t.Run("Should stop repairing after two retries", func(t *testing.T) {
		attempt := 0
		runner := newFakeRunner().
			on("route", reply(task.FieldClassification, "data")).
			on("generate_sql", func(map[string]string) (task.Result, error) {
				attempt++
				return task.Result{task.FieldSQLQuery: "SELECT bad" + strings.Repeat("!", attempt)}, nil
			}).
			on("synthesize", reply(task.FieldFinalAnswer, "unknown", task.FieldExplanation, "The query failed."))
		ds := &fakeDataset{execute: func(q string) dataset.Outcome {
			return dataset.ErrorOutcome(dataset.ErrorExecution, "SQL Error: near \"bad\": syntax error")
		}}

		answer, err := newEngine(t, runner, ds, nil).Answer(t.Context(), Question{ID: "q2", Text: "Total freight?", FormatHint: "float"})

		require.NoError(t, err)
		assert.Len(t, ds.executed(), 3)
		assert.Equal(t, 2, answer.Retries)
		assert.Equal(t, 3, answer.Attempts)
		assert.Equal(t, "SELECT bad!!!", answer.SQL)
		assert.Equal(t, 0.0, answer.FinalAnswer)
		assert.Equal(t, 0.3, answer.Confidence)

		gens := runner.calls("generate_sql")
		require.Len(t, gens, 3)
		assert.NotContains(t, gens[0][task.FieldQuestion], "ERROR IN PREVIOUS QUERY")
		assert.Contains(t, gens[1][task.FieldQuestion], "ERROR IN PREVIOUS QUERY: SQL Error: near \"bad\": syntax error")
		synth := runner.calls("synthesize")
		require.Len(t, synth, 1)
		assert.Equal(t, "SQL Error: near \"bad\": syntax error", synth[0][task.FieldSQLResult])
	})

	t.Run("Should repair an unsafe query like any failure", func(t *testing.T) {
		queries := []string{"DROP TABLE Orders", "SELECT COUNT(*) FROM orders"}
		runner := newFakeRunner().
			on("route", reply(task.FieldClassification, "data")).
			on("generate_sql", func(map[string]string) (task.Result, error) {
				q := queries[0]
				queries = queries[1:]
				return task.Result{task.FieldSQLQuery: q}, nil
			}).
			on("synthesize", reply(task.FieldFinalAnswer, "4"))
		ds := &fakeDataset{execute: func(q string) dataset.Outcome {
			if dataset.IsUnsafe(q) {
				return dataset.ErrorOutcome(dataset.ErrorUnsafe, dataset.UnsafeQueryMessage)
			}
			return rowsOutcome([]string{"n"}, []any{int64(4)})
		}}

		answer, err := newEngine(t, runner, ds, nil).Answer(t.Context(), Question{Text: "Orders? Return an integer."})

		require.NoError(t, err)
		assert.Equal(t, 4, answer.FinalAnswer)
		assert.Equal(t, 1, answer.Retries)
		assert.Equal(t, 0.6, answer.Confidence)
		assert.Equal(t, "int", answer.FormatHint)
	})

	t.Run("Should run both paths when classification fails", func(t *testing.T) {
		runner := newFakeRunner().
			on("route", failing(errors.New("model down"))).
			on("generate_sql", reply(task.FieldSQLQuery, "SELECT CategoryName FROM categories")).
			on("synthesize", reply(task.FieldFinalAnswer, "Beverages"))
		ds := &fakeDataset{execute: func(string) dataset.Outcome {
			return rowsOutcome([]string{"CategoryName"}, []any{"Beverages"})
		}}
		searcher := &fakeSearcher{docs: []knowledge.RetrievedResult{
			doc("marketing_calendar::chunk0", "Summer Beverages 2017: June 1 to June 30."),
		}}

		answer, err := newEngine(t, runner, ds, searcher).Answer(t.Context(), Question{ID: "q3", Text: "Top category in summer?"})

		require.NoError(t, err)
		assert.Equal(t, RouteCombined, answer.Route)
		assert.Equal(t, 1, searcher.calls)
		assert.Len(t, ds.executed(), 1)
		assert.Equal(t, "Beverages", answer.FinalAnswer)
		assert.Equal(t, 0.9, answer.Confidence)
		assert.Equal(t, []string{"marketing_calendar::chunk0", "Categories"}, answer.Citations)
		assert.Contains(t, runner.calls("generate_sql")[0][task.FieldQuestion], "- Summer Beverages 2017: June 1 to June 30.")
	})

	t.Run("Should skip the query loop for document questions", func(t *testing.T) {
		runner := newFakeRunner().
			on("route", reply(task.FieldClassification, "document")).
			on("synthesize", reply(
				task.FieldFinalAnswer, "The window is 14 days",
				task.FieldCitations, "['product_policy::chunk0']",
			))
		ds := &fakeDataset{}
		searcher := &fakeSearcher{docs: []knowledge.RetrievedResult{doc("product_policy::chunk0", "Beverages: 14 days.")}}

		answer, err := newEngine(t, runner, ds, searcher).Answer(t.Context(), Question{
			Text: "What is the return window for unopened Beverages? Return an integer.",
		})

		require.NoError(t, err)
		assert.Empty(t, ds.executed())
		assert.Empty(t, runner.calls("generate_sql"))
		assert.Equal(t, 14, answer.FinalAnswer)
		assert.Equal(t, "", answer.SQL)
		assert.Equal(t, 0.6, answer.Confidence)
		assert.Equal(t, []string{"product_policy::chunk0"}, answer.Citations)
		assert.Equal(t, "No data", runner.calls("synthesize")[0][task.FieldSQLResult])
	})

	t.Run("Should build a string list from rows when the answer is unusable", func(t *testing.T) {
		names := []string{"Beverages", "Condiments", "Confections", "Dairy Products", "Seafood"}
		runner := newFakeRunner().
			on("route", reply(task.FieldClassification, "data")).
			on("generate_sql", reply(task.FieldSQLQuery, "SELECT CategoryName FROM categories")).
			on("synthesize", reply(task.FieldFinalAnswer, "several categories"))
		ds := &fakeDataset{execute: func(string) dataset.Outcome {
			values := make([][]any, 0, len(names))
			for _, n := range names {
				values = append(values, []any{n})
			}
			return rowsOutcome([]string{"CategoryName"}, values...)
		}}

		answer, err := newEngine(t, runner, ds, nil).Answer(t.Context(), Question{Text: "List categories", FormatHint: "list[str]"})

		require.NoError(t, err)
		assert.Equal(t, []any{"Beverages", "Condiments", "Confections", "Dairy Products", "Seafood"}, answer.FinalAnswer)
	})

	t.Run("Should still produce a record when synthesis fails", func(t *testing.T) {
		runner := newFakeRunner().
			on("route", reply(task.FieldClassification, "data")).
			on("generate_sql", reply(task.FieldSQLQuery, "SELECT CategoryName, TotalQuantity FROM x")).
			on("synthesize", failing(errors.New("context length exceeded")))
		ds := &fakeDataset{execute: func(string) dataset.Outcome {
			return rowsOutcome([]string{"CategoryName", "TotalQuantity"}, []any{"Beverages", "42"})
		}}

		answer, err := newEngine(t, runner, ds, nil).Answer(t.Context(), Question{
			Text:       "Top category",
			FormatHint: "{category:str, quantity:int}",
		})

		require.NoError(t, err)
		assert.Equal(t, map[string]any{"category": "Beverages", "quantity": 42}, answer.FinalAnswer)
		assert.Equal(t, "context length exceeded.", answer.Explanation)
		assert.Equal(t, []string{}, answer.Citations)
	})

	t.Run("Should reject an empty question", func(t *testing.T) {
		_, err := newEngine(t, newFakeRunner(), &fakeDataset{}, nil).Answer(t.Context(), Question{ID: "q", Text: "  "})

		require.Error(t, err)
		assert.Equal(t, core.ErrCodeInvalidQuestion, core.ErrorCode(err))
	})

	t.Run("Should turn a panic into an orchestration error", func(t *testing.T) {
		runner := newFakeRunner().
			on("route", reply(task.FieldClassification, "data")).
			on("generate_sql", reply(task.FieldSQLQuery, "SELECT 1"))
		ds := &fakeDataset{execute: func(string) dataset.Outcome { panic("driver exploded") }}

		answer, err := newEngine(t, runner, ds, nil).Answer(t.Context(), Question{ID: "q9", Text: "boom"})

		require.Error(t, err)
		assert.Nil(t, answer)
		assert.Equal(t, core.ErrCodeOrchestration, core.ErrorCode(err))
		assert.Contains(t, err.Error(), "driver exploded")
	})
}

func TestRunFSM(t *testing.T) {
	t.Run("Should only allow the documented transitions", func(t *testing.T) {
		machine := newRunFSM(t.Context(), nil)
		rc := &runContext{}

		require.NoError(t, machine.Event(t.Context(), EventStart, rc))
		assert.Equal(t, StateRouting, machine.Current())
		require.Error(t, machine.Event(t.Context(), EventExecute, rc))
		require.NoError(t, machine.Event(t.Context(), EventGenerate, rc))
		require.NoError(t, machine.Event(t.Context(), EventExecute, rc))
		require.NoError(t, machine.Event(t.Context(), EventRepair, rc))
		assert.Equal(t, StateGenerating, machine.Current())
		require.NoError(t, machine.Event(t.Context(), EventExecute, rc))
		require.NoError(t, machine.Event(t.Context(), EventSynthesize, rc))
		require.NoError(t, machine.Event(t.Context(), EventFinish, rc))
		assert.Equal(t, StateDone, machine.Current())
	})
}
