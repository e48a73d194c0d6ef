package qa

import (
	"context"
	"strings"

	"github.com/compozy/hybridqa/engine/core"
	"github.com/compozy/hybridqa/engine/knowledge"
	"github.com/compozy/hybridqa/engine/llm/task"
	"github.com/compozy/hybridqa/pkg/logger"
)

// FallbackQuery keeps the pipeline moving when generation fails.
const FallbackQuery = "SELECT 1"

// Generator writes one SQL query per call.
type Generator struct {
	runner TaskRunner
	def    *task.Definition
}

func NewGenerator(runner TaskRunner) *Generator {
	return &Generator{runner: runner, def: task.GenerateSQL()}
}

// Generate never fails: errors and empty replies yield FallbackQuery.
func (g *Generator) Generate(ctx context.Context, questionContext string, schema string) string {
	res, err := g.runner.Run(ctx, g.def, map[string]string{
		task.FieldQuestion: questionContext,
		task.FieldDBSchema: schema,
	})
	if err != nil {
		err = core.NewError(err, core.ErrCodeGenerationFailed, nil)
		recordAbsorbed(ctx, "generate")
		logger.FromContext(ctx).Warn("Query generation failed, using fallback", "error", core.RedactError(err))
		return FallbackQuery
	}
	query := CleanQuery(res.String(task.FieldSQLQuery))
	if query == "" {
		logger.FromContext(ctx).Warn("Query generation returned nothing, using fallback")
		return FallbackQuery
	}
	return query
}

// CleanQuery strips code fences and surrounding whitespace.
func CleanQuery(raw string) string {
	q := strings.ReplaceAll(raw, "```sql", "")
	q = strings.ReplaceAll(q, "```", "")
	return strings.TrimSpace(q)
}

// BuildQuestionContext assembles the generator input from the question,
// any retrieved chunks and the previous attempt's error.
func BuildQuestionContext(question string, docs []knowledge.RetrievedResult, prevErr string) string {
	var b strings.Builder
	b.WriteString("Question: ")
	b.WriteString(question)
	b.WriteString("\n")
	if len(docs) > 0 {
		b.WriteString("\nContext from Documents (Use these dates/definitions):")
		for _, d := range docs {
			b.WriteString("\n- ")
			b.WriteString(d.Chunk.Content)
		}
	}
	if prevErr != "" {
		b.WriteString("\n\nERROR IN PREVIOUS QUERY: ")
		b.WriteString(prevErr)
		b.WriteString("\nFix the syntax.")
	}
	return b.String()
}
