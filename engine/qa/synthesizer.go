package qa

import (
	"context"
	"strings"

	"github.com/compozy/hybridqa/engine/core"
	"github.com/compozy/hybridqa/engine/knowledge"
	"github.com/compozy/hybridqa/engine/llm/task"
	"github.com/compozy/hybridqa/pkg/logger"
)

// Synthesis is the untrusted reply of the synthesizer.
type Synthesis struct {
	RawAnswer   string
	Explanation string
	Citations   any
}

// SynthesisInput carries everything the synthesizer sees.
type SynthesisInput struct {
	Question   string
	Documents  []knowledge.RetrievedResult
	SQL        string
	Result     string
	FormatHint string
}

type Synthesizer struct {
	runner TaskRunner
	def    *task.Definition
}

func NewSynthesizer(runner TaskRunner) *Synthesizer {
	return &Synthesizer{runner: runner, def: task.Synthesize()}
}

// Synthesize never fails; a model error yields a degenerate "Error" answer
// carrying the message.
func (s *Synthesizer) Synthesize(ctx context.Context, in SynthesisInput) Synthesis {
	sql := in.SQL
	if sql == "" {
		sql = "N/A"
	}
	res, err := s.runner.Run(ctx, s.def, map[string]string{
		task.FieldQuestion:   in.Question,
		task.FieldContext:    DocumentContext(in.Documents),
		task.FieldSQLQuery:   sql,
		task.FieldSQLResult:  in.Result,
		task.FieldFormatHint: in.FormatHint,
	})
	if err != nil {
		msg := core.RedactError(err)
		recordAbsorbed(ctx, "synthesize")
		logger.FromContext(ctx).Warn(
			"Synthesis failed",
			"error", core.RedactError(core.NewError(err, core.ErrCodeSynthesisFailed, nil)),
		)
		return Synthesis{RawAnswer: "Error", Explanation: msg}
	}
	return Synthesis{
		RawAnswer:   res.String(task.FieldFinalAnswer),
		Explanation: res.String(task.FieldExplanation),
		Citations:   res[task.FieldCitations],
	}
}

// DocumentContext renders chunks tagged with their ids.
func DocumentContext(docs []knowledge.RetrievedResult) string {
	var b strings.Builder
	for _, d := range docs {
		b.WriteString("[Source: ")
		b.WriteString(d.Chunk.ID)
		b.WriteString("] ")
		b.WriteString(d.Chunk.Content)
		b.WriteString("\n")
	}
	return b.String()
}
