package batch

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/compozy/hybridqa/engine/core"
	"github.com/compozy/hybridqa/engine/qa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type answerFunc func(ctx context.Context, q qa.Question) (*qa.Answer, error)

func (f answerFunc) Answer(ctx context.Context, q qa.Question) (*qa.Answer, error) {
	return f(ctx, q)
}

func echoAnswerer(seen *[]qa.Question) answerFunc {
	return func(_ context.Context, q qa.Question) (*qa.Answer, error) {
		*seen = append(*seen, q)
		return &qa.Answer{
			ID:          q.ID,
			FinalAnswer: 42,
			SQL:         "SELECT 42",
			Confidence:  0.8,
			Explanation: "Computed.",
			Citations:   []string{"Orders"},
		}, nil
	}
}

func writeInput(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "questions.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))
	return path
}

func readOutput(t *testing.T, path string) []map[string]any {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	var records []map[string]any
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		records = append(records, rec)
	}
	require.NoError(t, scanner.Err())
	return records
}

func TestReader_Next(t *testing.T) {
	t.Run("Should skip blank lines and report bad ones", func(t *testing.T) {
		input := strings.Join([]string{
			`{"id": "q1", "question": "How many orders?", "format_hint": "int"}`,
			``,
			`   `,
			`{not json`,
			`{"id": "q2"}`,
			`{"id": "q3", "question": "Which category?"}`,
		}, "\n")
		reader := NewReader(strings.NewReader(input))

		q, err := reader.Next()
		require.NoError(t, err)
		assert.Equal(t, qa.Question{ID: "q1", Text: "How many orders?", FormatHint: "int"}, q)

		_, err = reader.Next()
		var lineErr *LineError
		require.ErrorAs(t, err, &lineErr)
		assert.Equal(t, 4, lineErr.Line)
		assert.Contains(t, lineErr.Error(), "invalid JSON")

		_, err = reader.Next()
		require.ErrorAs(t, err, &lineErr)
		assert.Equal(t, 5, lineErr.Line)
		assert.Contains(t, lineErr.Error(), "invalid record")

		q, err = reader.Next()
		require.NoError(t, err)
		assert.Equal(t, "q3", q.ID)
		assert.Empty(t, q.FormatHint)

		_, err = reader.Next()
		assert.ErrorIs(t, err, io.EOF)
	})
}

func TestWriter(t *testing.T) {
	t.Run("Should refuse a second writer on the same output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out", "answers.jsonl")
		first, err := Create(path)
		require.NoError(t, err)

		_, err = Create(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "locked")

		require.NoError(t, first.Close())
		second, err := Create(path)
		require.NoError(t, err)
		require.NoError(t, second.Close())
	})

	t.Run("Should make each record visible before close", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "answers.jsonl")
		w, err := Create(path)
		require.NoError(t, err)
		defer w.Close()

		require.NoError(t, w.Write(qa.ErrorAnswer("q1", "boom")))

		records := readOutput(t, path)
		require.Len(t, records, 1)
		assert.Equal(t, "q1", records[0]["id"])
		assert.Equal(t, []any{}, records[0]["citations"])
	})

	t.Run("Should report an unencodable record without writing it", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "answers.jsonl")
		w, err := Create(path)
		require.NoError(t, err)
		defer w.Close()

		err = w.Write(&qa.Answer{ID: "q1", FinalAnswer: math.NaN(), Citations: []string{}})

		var encErr *EncodeError
		require.ErrorAs(t, err, &encErr)
		assert.Equal(t, "q1", encErr.ID)
		assert.Empty(t, readOutput(t, path))
	})
}

func TestRunner_Run(t *testing.T) {
	t.Run("Should answer questions in input order and count skips", func(t *testing.T) {
		input := writeInput(t,
			`{"id": "a", "question": "First?"}`,
			`garbage`,
			`{"id": "b", "question": "Second?", "format_hint": "float"}`,
		)
		output := filepath.Join(t.TempDir(), "answers.jsonl")
		var seen []qa.Question

		summary, err := NewRunner(echoAnswerer(&seen)).Run(t.Context(), input, output)

		require.NoError(t, err)
		assert.Equal(t, 2, summary.Processed)
		assert.Equal(t, 0, summary.Failed)
		assert.Equal(t, 1, summary.Skipped)
		require.Len(t, seen, 2)
		assert.Equal(t, "float", seen[1].FormatHint)
		records := readOutput(t, output)
		require.Len(t, records, 2)
		assert.Equal(t, "a", records[0]["id"])
		assert.Equal(t, "b", records[1]["id"])
		assert.Equal(t, 42.0, records[0]["final_answer"])
		assert.Equal(t, "SELECT 42", records[0]["sql"])
		assert.Equal(t, 0.8, records[0]["confidence"])
		assert.Equal(t, []any{"Orders"}, records[0]["citations"])
		assert.NotContains(t, records[0], "route")
	})

	t.Run("Should write an error record and keep going when a question fails", func(t *testing.T) {
		input := writeInput(t,
			`{"id": "bad", "question": "Explode?"}`,
			`{"id": "panic", "question": "Panic?"}`,
			`{"id": "good", "question": "Fine?"}`,
		)
		output := filepath.Join(t.TempDir(), "answers.jsonl")
		answerer := answerFunc(func(_ context.Context, q qa.Question) (*qa.Answer, error) {
			switch q.ID {
			case "bad":
				return nil, errors.New("model unreachable: api_key=sk-secret")
			case "panic":
				panic("unexpected state")
			}
			return &qa.Answer{ID: q.ID, FinalAnswer: "ok", Citations: []string{}}, nil
		})

		summary, err := NewRunner(answerer).Run(t.Context(), input, output)

		require.NoError(t, err)
		assert.Equal(t, 3, summary.Processed)
		assert.Equal(t, 2, summary.Failed)
		records := readOutput(t, output)
		require.Len(t, records, 3)
		assert.Equal(t, "Error", records[0]["final_answer"])
		assert.Equal(t, "", records[0]["sql"])
		assert.Equal(t, 0.0, records[0]["confidence"])
		assert.Equal(t, []any{}, records[0]["citations"])
		assert.Contains(t, records[0]["explanation"], "model unreachable")
		assert.NotContains(t, records[0]["explanation"], "sk-secret")
		assert.Equal(t, "Error", records[1]["final_answer"])
		assert.Contains(t, records[1]["explanation"], "unexpected state")
		assert.Equal(t, "ok", records[2]["final_answer"])
	})

	t.Run("Should write an error record when an answer cannot be encoded", func(t *testing.T) {
		input := writeInput(t,
			`{"id": "a", "question": "Infinite?"}`,
			`{"id": "b", "question": "Fine?"}`,
		)
		output := filepath.Join(t.TempDir(), "answers.jsonl")
		answerer := answerFunc(func(_ context.Context, q qa.Question) (*qa.Answer, error) {
			if q.ID == "a" {
				return &qa.Answer{
					ID:          q.ID,
					FinalAnswer: map[string]any{"x": math.Inf(1)},
					Confidence:  0.7,
					Citations:   []string{},
				}, nil
			}
			return &qa.Answer{ID: q.ID, FinalAnswer: "ok", Citations: []string{}}, nil
		})

		summary, err := NewRunner(answerer).Run(t.Context(), input, output)

		require.NoError(t, err)
		assert.Equal(t, 2, summary.Processed)
		assert.Equal(t, 1, summary.Failed)
		records := readOutput(t, output)
		require.Len(t, records, 2)
		assert.Equal(t, "a", records[0]["id"])
		assert.Equal(t, "Error", records[0]["final_answer"])
		assert.Equal(t, 0.0, records[0]["confidence"])
		assert.Contains(t, records[0]["explanation"], "unsupported value")
		assert.Equal(t, "ok", records[1]["final_answer"])
	})

	t.Run("Should fail when the input file is missing", func(t *testing.T) {
		dir := t.TempDir()
		var seen []qa.Question

		_, err := NewRunner(echoAnswerer(&seen)).Run(
			t.Context(),
			filepath.Join(dir, "missing.jsonl"),
			filepath.Join(dir, "answers.jsonl"),
		)

		require.Error(t, err)
		assert.Equal(t, core.ErrCodeBatchIO, core.ErrorCode(err))
		assert.ErrorIs(t, err, os.ErrNotExist)
		assert.NoFileExists(t, filepath.Join(dir, "answers.jsonl"))
	})

	t.Run("Should stop between questions when the context is canceled", func(t *testing.T) {
		input := writeInput(t,
			`{"id": "a", "question": "First?"}`,
			`{"id": "b", "question": "Second?"}`,
		)
		output := filepath.Join(t.TempDir(), "answers.jsonl")
		ctx, cancel := context.WithCancel(t.Context())
		answerer := answerFunc(func(_ context.Context, q qa.Question) (*qa.Answer, error) {
			cancel()
			return &qa.Answer{ID: q.ID, FinalAnswer: "ok", Citations: []string{}}, nil
		})

		summary, err := NewRunner(answerer).Run(ctx, input, output)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, summary.Processed)
		assert.Len(t, readOutput(t, output), 1)
	})
}
