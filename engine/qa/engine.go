// Package qa answers questions by routing them to document retrieval, a
// generate/execute query loop, or both, and synthesizing a typed answer.
package qa

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/compozy/hybridqa/engine/core"
	"github.com/compozy/hybridqa/engine/dataset"
	"github.com/compozy/hybridqa/engine/qa/coerce"
	"github.com/compozy/hybridqa/pkg/logger"
	"github.com/google/uuid"
)

const DefaultTopK = 3

// Options wires the collaborators of an Engine.
type Options struct {
	Runner     TaskRunner
	Dataset    Dataset
	Searcher   Searcher
	TopK       int
	MaxRetries int
}

// Engine answers one question at a time. It holds no per-question state,
// so a single Engine serves any number of sequential questions.
type Engine struct {
	router      *Router
	generator   *Generator
	synthesizer *Synthesizer
	repair      *RepairController
	dataset     Dataset
	searcher    Searcher
	topK        int
}

func New(opts Options) (*Engine, error) {
	if opts.Runner == nil {
		return nil, errors.New("task runner is required")
	}
	if opts.Dataset == nil {
		return nil, errors.New("dataset is required")
	}
	topK := opts.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Engine{
		router:      NewRouter(opts.Runner),
		generator:   NewGenerator(opts.Runner),
		synthesizer: NewSynthesizer(opts.Runner),
		repair:      NewRepairController(opts.MaxRetries),
		dataset:     opts.Dataset,
		searcher:    opts.Searcher,
		topK:        topK,
	}, nil
}

// Answer runs the full pipeline for q. Stage failures are absorbed by
// their fallbacks; an error is returned only when the run itself breaks.
func (e *Engine) Answer(ctx context.Context, q Question) (answer *Answer, err error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, core.NewError(errors.New("question text is empty"), core.ErrCodeInvalidQuestion, map[string]any{"id": q.ID})
	}
	runID := uuid.NewString()
	log := logger.FromContext(ctx).With("run_id", runID, "question_id", q.ID)
	ctx = logger.ContextWithLogger(ctx, log)
	start := time.Now()
	rc := &runContext{Run: AgentRun{Question: q.Text, FormatHint: ResolveFormatHint(q)}}
	defer func() {
		if r := recover(); r != nil {
			answer = nil
			err = core.NewError(fmt.Errorf("panic: %v", r), core.ErrCodeOrchestration, map[string]any{"id": q.ID})
		}
		status := statusSuccess
		if err != nil {
			status = statusError
			log.Error("Question failed", "error", core.RedactError(err))
		}
		recordQuestion(ctx, rc.Run.Route, status, time.Since(start))
	}()
	log.Info("Answering question", "format_hint", rc.Run.FormatHint)
	machine := newRunFSM(ctx, e)
	if err := machine.Event(ctx, EventStart, rc); err != nil && rc.err == nil {
		rc.err = err
	}
	if rc.err == nil && machine.Current() != StateDone {
		rc.err = fmt.Errorf("run stopped in state %s", machine.Current())
	}
	if rc.err != nil {
		return nil, core.NewError(rc.err, core.ErrCodeOrchestration, map[string]any{"id": q.ID})
	}
	answer = e.buildAnswer(q, runID, rc.Run)
	log.Info(
		"Question answered",
		"route", answer.Route,
		"attempts", answer.Attempts,
		"retries", answer.Retries,
		"confidence", answer.Confidence,
	)
	return answer, nil
}

func (e *Engine) buildAnswer(q Question, runID string, run AgentRun) *Answer {
	citations := run.Citations
	if citations == nil {
		citations = []string{}
	}
	return &Answer{
		ID:          q.ID,
		FinalAnswer: run.FinalAnswer,
		SQL:         run.SQL(),
		Confidence:  Confidence(run),
		Explanation: run.Explanation,
		Citations:   citations,
		RunID:       runID,
		Route:       run.Route,
		FormatHint:  run.FormatHint,
		Retries:     run.Retries,
		Attempts:    run.Attempts(),
	}
}

// apply merges a stage update into the run context.
func apply(rc *runContext, update AgentRun) error {
	next, err := rc.Run.Apply(update)
	if err != nil {
		return err
	}
	rc.Run = next
	return nil
}

func (e *Engine) onEnterRouting(ctx context.Context, rc *runContext) transitionResult {
	route := e.router.Classify(ctx, rc.Run.Question)
	if err := apply(rc, AgentRun{Route: route}); err != nil {
		return transitionResult{Err: err}
	}
	logger.FromContext(ctx).Debug("Question routed", "route", route)
	if route.NeedsDocuments() {
		return transitionResult{Event: EventRetrieve}
	}
	return transitionResult{Event: EventGenerate}
}

func (e *Engine) onEnterRetrieving(ctx context.Context, rc *runContext) transitionResult {
	if e.searcher != nil {
		docs := e.searcher.Retrieve(ctx, rc.Run.Question, e.topK)
		if err := apply(rc, AgentRun{Retrieved: docs}); err != nil {
			return transitionResult{Err: err}
		}
		logger.FromContext(ctx).Debug("Documents retrieved", "chunks", len(docs))
	}
	if rc.Run.Route.NeedsQuery() {
		return transitionResult{Event: EventGenerate}
	}
	return transitionResult{Event: EventSynthesize}
}

func (e *Engine) onEnterGenerating(ctx context.Context, rc *runContext) transitionResult {
	questionCtx := BuildQuestionContext(rc.Run.Question, rc.Run.Retrieved, rc.Run.LastError())
	sql := e.generator.Generate(ctx, questionCtx, e.dataset.DescribeSchema(ctx))
	query := &GeneratedQuery{SQL: sql, Context: questionCtx, Attempt: rc.Run.Attempts() + 1}
	if err := apply(rc, AgentRun{Query: query}); err != nil {
		return transitionResult{Err: err}
	}
	logger.FromContext(ctx).Debug("Query generated", "attempt", query.Attempt, "sql", sql)
	return transitionResult{Event: EventExecute}
}

func (e *Engine) onEnterExecuting(ctx context.Context, rc *runContext) transitionResult {
	outcome := e.dataset.Execute(ctx, rc.Run.SQL())
	if err := apply(rc, AgentRun{Outcome: &outcome}); err != nil {
		return transitionResult{Err: err}
	}
	if outcome.Failed() {
		logger.FromContext(ctx).Warn(
			"Query failed",
			"attempt", rc.Run.Attempts(),
			"kind", outcome.ErrorKind,
			"error", outcome.Message,
		)
	}
	update, retry := e.repair.Next(rc.Run)
	if !retry {
		return transitionResult{Event: EventSynthesize}
	}
	if err := apply(rc, update); err != nil {
		return transitionResult{Err: err}
	}
	recordRepair(ctx)
	return transitionResult{Event: EventRepair}
}

func (e *Engine) onEnterSynthesizing(ctx context.Context, rc *runContext) transitionResult {
	run := rc.Run
	var outcome dataset.Outcome
	if run.Outcome != nil {
		outcome = *run.Outcome
	}
	synth := e.synthesizer.Synthesize(ctx, SynthesisInput{
		Question:   run.Question,
		Documents:  run.Retrieved,
		SQL:        run.SQL(),
		Result:     outcome.Describe(),
		FormatHint: run.FormatHint,
	})
	update := AgentRun{
		FinalAnswer: coerce.Coerce(synth.RawAnswer, run.FormatHint, outcome),
		Explanation: TrimExplanation(synth.Explanation),
		Citations:   ResolveCitations(run.Retrieved, run.SQL(), synth.Citations),
	}
	if err := apply(rc, update); err != nil {
		return transitionResult{Err: err}
	}
	return transitionResult{Event: EventFinish}
}
