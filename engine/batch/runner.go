// Package batch answers a JSONL file of questions and writes one JSONL
// record per question.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/compozy/hybridqa/engine/core"
	"github.com/compozy/hybridqa/engine/qa"
	"github.com/compozy/hybridqa/pkg/logger"
)

// Answerer answers a single question.
type Answerer interface {
	Answer(ctx context.Context, q qa.Question) (*qa.Answer, error)
}

// Summary counts what a run did. Failed questions are included in
// Processed; Skipped counts input lines that were not questions.
type Summary struct {
	Processed int           `json:"processed"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	Duration  time.Duration `json:"duration"`
}

type Runner struct {
	answerer Answerer
}

func NewRunner(answerer Answerer) *Runner {
	return &Runner{answerer: answerer}
}

// Run reads questions from input and writes answers to output, one at a
// time and in input order. Only I/O problems and cancellation stop a run.
func (r *Runner) Run(ctx context.Context, input, output string) (Summary, error) {
	log := logger.FromContext(ctx)
	in, err := os.Open(input)
	if err != nil {
		return Summary{}, core.NewError(
			fmt.Errorf("open input: %w", err),
			core.ErrCodeBatchIO,
			map[string]any{"path": input},
		)
	}
	defer in.Close()
	out, err := Create(output)
	if err != nil {
		return Summary{}, core.NewError(err, core.ErrCodeBatchIO, map[string]any{"path": output})
	}
	summary, runErr := r.Process(ctx, NewReader(in), out)
	if err := out.Close(); err != nil && runErr == nil {
		runErr = core.NewError(err, core.ErrCodeBatchIO, map[string]any{"path": output})
	}
	log.Info("Batch finished",
		"input", input,
		"output", output,
		"processed", summary.Processed,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"duration", summary.Duration,
	)
	return summary, runErr
}

// Process drains reader into writer.
func (r *Runner) Process(ctx context.Context, reader *Reader, writer *Writer) (Summary, error) {
	log := logger.FromContext(ctx)
	start := time.Now()
	var summary Summary
	for {
		if err := ctx.Err(); err != nil {
			summary.Duration = time.Since(start)
			return summary, err
		}
		q, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		var lineErr *LineError
		if errors.As(err, &lineErr) {
			summary.Skipped++
			log.Warn("Skipping input line", "line", lineErr.Line, "error", lineErr.Err)
			continue
		}
		if err != nil {
			summary.Duration = time.Since(start)
			return summary, core.NewError(err, core.ErrCodeBatchIO, nil)
		}
		log.Info("Processing question", "index", summary.Processed+1, "question_id", q.ID)
		answer, failed := r.answer(ctx, q)
		replaced, err := r.write(ctx, writer, q, answer)
		if err != nil {
			summary.Duration = time.Since(start)
			return summary, core.NewError(err, core.ErrCodeBatchIO, nil)
		}
		summary.Processed++
		if failed || replaced {
			summary.Failed++
		}
	}
	summary.Duration = time.Since(start)
	return summary, nil
}

// write stores the answer. A record that cannot be encoded is replaced by
// an error record so the question still yields one line.
func (r *Runner) write(
	ctx context.Context,
	writer *Writer,
	q qa.Question,
	answer *qa.Answer,
) (replaced bool, err error) {
	err = writer.Write(answer)
	var encErr *EncodeError
	if !errors.As(err, &encErr) {
		return false, err
	}
	msg := core.RedactError(encErr.Err)
	logger.FromContext(ctx).Error("Answer could not be encoded", "question_id", q.ID, "error", msg)
	return true, writer.Write(qa.ErrorAnswer(q.ID, msg))
}

// answer turns every failure, panics included, into an error record.
func (r *Runner) answer(ctx context.Context, q qa.Question) (answer *qa.Answer, failed bool) {
	defer func() {
		if rec := recover(); rec != nil {
			msg := core.RedactString(fmt.Sprintf("panic: %v", rec))
			logger.FromContext(ctx).Error("Question panicked", "question_id", q.ID, "error", msg)
			answer, failed = qa.ErrorAnswer(q.ID, msg), true
		}
	}()
	answer, err := r.answerer.Answer(ctx, q)
	if err != nil {
		logger.FromContext(ctx).Error("Question failed", "question_id", q.ID, "error", core.RedactError(err))
		return qa.ErrorAnswer(q.ID, core.RedactError(err)), true
	}
	if answer == nil {
		return qa.ErrorAnswer(q.ID, "no answer produced"), true
	}
	answer.ID = q.ID
	return answer, false
}
