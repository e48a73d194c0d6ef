package qa

import (
	"context"
	"time"

	"github.com/compozy/hybridqa/engine/core"
	"github.com/compozy/hybridqa/pkg/logger"
	"github.com/looplab/fsm"
)

const (
	StateInit         = "init"
	StateRouting      = "routing"
	StateRetrieving   = "retrieving"
	StateGenerating   = "generating"
	StateExecuting    = "executing"
	StateSynthesizing = "synthesizing"
	StateDone         = "done"
	StateFailed       = "failed"
)

const (
	EventStart      = "start"
	EventRetrieve   = "retrieve"
	EventGenerate   = "generate"
	EventExecute    = "execute"
	EventRepair     = "repair"
	EventSynthesize = "synthesize"
	EventFinish     = "finish"
	EventFailure    = "failure"
)

type stageDeps interface {
	onEnterRouting(ctx context.Context, rc *runContext) transitionResult
	onEnterRetrieving(ctx context.Context, rc *runContext) transitionResult
	onEnterGenerating(ctx context.Context, rc *runContext) transitionResult
	onEnterExecuting(ctx context.Context, rc *runContext) transitionResult
	onEnterSynthesizing(ctx context.Context, rc *runContext) transitionResult
}

type transitionResult struct {
	Event string
	Err   error
}

// runContext travels with every event of one question.
type runContext struct {
	Run            AgentRun
	err            error
	stageStartedAt time.Time
}

func newRunFSM(ctx context.Context, deps stageDeps) *fsm.FSM {
	observer := newTransitionObserver(ctx)
	return fsm.NewFSM(StateInit, runFSMEvents(), runFSMCallbacks(observer, deps))
}

func runFSMEvents() fsm.Events {
	return fsm.Events{
		{Name: EventStart, Src: []string{StateInit}, Dst: StateRouting},
		{Name: EventRetrieve, Src: []string{StateRouting}, Dst: StateRetrieving},
		{Name: EventGenerate, Src: []string{StateRouting, StateRetrieving}, Dst: StateGenerating},
		{Name: EventExecute, Src: []string{StateGenerating}, Dst: StateExecuting},
		{Name: EventRepair, Src: []string{StateExecuting}, Dst: StateGenerating},
		{Name: EventSynthesize, Src: []string{StateRetrieving, StateExecuting}, Dst: StateSynthesizing},
		{Name: EventFinish, Src: []string{StateSynthesizing}, Dst: StateDone},
		{
			Name: EventFailure,
			Src: []string{
				StateRouting,
				StateRetrieving,
				StateGenerating,
				StateExecuting,
				StateSynthesizing,
			},
			Dst: StateFailed,
		},
	}
}

func runFSMCallbacks(observer *transitionObserver, deps stageDeps) fsm.Callbacks {
	terminal := func(cbCtx context.Context, e *fsm.Event) {
		ctx := observer.resolveContext(cbCtx)
		observer.EnterState(ctx, e, runContextFromEvent(ctx, e))
	}
	callbacks := fsm.Callbacks{
		"leave_state":          func(cbCtx context.Context, e *fsm.Event) { observer.LeaveState(cbCtx, e) },
		"enter_" + StateDone:   terminal,
		"enter_" + StateFailed: terminal,
	}
	callbacks["enter_"+StateRouting] = makeEnterCallback(observer, deps, stageDeps.onEnterRouting)
	callbacks["enter_"+StateRetrieving] = makeEnterCallback(observer, deps, stageDeps.onEnterRetrieving)
	callbacks["enter_"+StateGenerating] = makeEnterCallback(observer, deps, stageDeps.onEnterGenerating)
	callbacks["enter_"+StateExecuting] = makeEnterCallback(observer, deps, stageDeps.onEnterExecuting)
	callbacks["enter_"+StateSynthesizing] = makeEnterCallback(observer, deps, stageDeps.onEnterSynthesizing)
	return callbacks
}

func runContextFromEvent(ctx context.Context, e *fsm.Event) *runContext {
	if e != nil && len(e.Args) > 0 {
		if rc, ok := e.Args[0].(*runContext); ok && rc != nil {
			return rc
		}
	}
	logger.FromContext(ctx).Error("FSM run context missing from event args")
	return &runContext{}
}

// applyTransitionResult fires the next event. Errors move the run to
// StateFailed and are kept on the run context.
func applyTransitionResult(ctx context.Context, e *fsm.Event, rc *runContext, result transitionResult) {
	if result.Err != nil {
		rc.err = result.Err
		result.Event = EventFailure
	}
	if result.Event == "" {
		return
	}
	if err := e.FSM.Event(ctx, result.Event, rc); err != nil && rc.err == nil {
		rc.err = err
	}
}

type transitionObserver struct {
	now     func() time.Time
	baseCtx context.Context
}

func newTransitionObserver(ctx context.Context) *transitionObserver {
	return &transitionObserver{now: time.Now, baseCtx: ctx}
}

func (o *transitionObserver) resolveContext(cbCtx context.Context) context.Context {
	if cbCtx != nil {
		return cbCtx
	}
	if o.baseCtx != nil {
		return o.baseCtx
	}
	return context.Background()
}

// LeaveState records how long the run stayed in the state it leaves.
func (o *transitionObserver) LeaveState(cbCtx context.Context, e *fsm.Event) {
	ctx := o.resolveContext(cbCtx)
	rc := runContextFromEvent(ctx, e)
	if rc.stageStartedAt.IsZero() || e.Src == StateInit {
		return
	}
	d := o.now().Sub(rc.stageStartedAt)
	recordStage(ctx, e.Src, d)
	keyvals := []any{"state", e.Src, "event", e.Event, "duration_ms", d.Milliseconds()}
	if rc.err != nil {
		keyvals = append(keyvals, "error", core.RedactError(rc.err))
	}
	logger.FromContext(ctx).Debug("FSM state left", keyvals...)
}

func (o *transitionObserver) EnterState(ctx context.Context, e *fsm.Event, rc *runContext) {
	rc.stageStartedAt = o.now()
	logger.FromContext(ctx).Debug(
		"FSM state entered",
		"state", e.Dst,
		"event", e.Event,
		"retries", rc.Run.Retries,
	)
}

func makeEnterCallback(
	observer *transitionObserver,
	deps stageDeps,
	handler func(stageDeps, context.Context, *runContext) transitionResult,
) fsm.Callback {
	return func(cbCtx context.Context, e *fsm.Event) {
		ctx := observer.resolveContext(cbCtx)
		rc := runContextFromEvent(ctx, e)
		observer.EnterState(ctx, e, rc)
		if deps == nil {
			return
		}
		applyTransitionResult(ctx, e, rc, handler(deps, ctx, rc))
	}
}
