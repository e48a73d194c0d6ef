package task

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/compozy/hybridqa/engine/core"
	llmadapter "github.com/compozy/hybridqa/engine/llm/adapter"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

type systemData struct {
	Instructions string
	Inputs       []Field
	Outputs      []Field
	Schema       string
}

type inputField struct {
	Name  string
	Value string
}

type inputData struct {
	Fields []inputField
}

// Renderer turns a task definition and its inputs into a model request.
type Renderer struct {
	system *template.Template
	input  *template.Template
}

func NewRenderer() (*Renderer, error) {
	tpl, err := template.New("task").
		Option("missingkey=error").
		Funcs(sprig.FuncMap()).
		ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse task templates: %w", err)
	}
	return &Renderer{
		system: tpl.Lookup("system.tmpl"),
		input:  tpl.Lookup("input.tmpl"),
	}, nil
}

// SystemPrompt renders the instructions, field listing and reply schema.
func (r *Renderer) SystemPrompt(def *Definition) (string, error) {
	schema, err := json.MarshalIndent(ReplySchema(def), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal reply schema: %w", err)
	}
	var buf bytes.Buffer
	err = r.system.Execute(&buf, systemData{
		Instructions: def.Instructions,
		Inputs:       def.Inputs,
		Outputs:      def.Outputs,
		Schema:       string(schema),
	})
	if err != nil {
		return "", core.NewError(err, core.ErrCodeTemplateRendering, map[string]any{"task": def.Name})
	}
	return buf.String(), nil
}

// Inputs renders the given values in declaration order. Every declared
// input must be present unless partial is set.
func (r *Renderer) Inputs(def *Definition, values map[string]string, partial bool) (string, error) {
	data := inputData{Fields: make([]inputField, 0, len(def.Inputs))}
	for _, f := range def.Inputs {
		v, ok := values[f.Name]
		if !ok {
			if partial {
				continue
			}
			return "", fmt.Errorf("task %s: missing input %s", def.Name, f.Name)
		}
		data.Fields = append(data.Fields, inputField{Name: f.Name, Value: v})
	}
	var buf bytes.Buffer
	if err := r.input.Execute(&buf, data); err != nil {
		return "", core.NewError(err, core.ErrCodeTemplateRendering, map[string]any{"task": def.Name})
	}
	return buf.String(), nil
}

// Request builds the full request: system prompt, one user/assistant pair per
// demo, then the real inputs.
func (r *Renderer) Request(def *Definition, values map[string]string) (*llmadapter.LLMRequest, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	system, err := r.SystemPrompt(def)
	if err != nil {
		return nil, err
	}
	messages := make([]llmadapter.Message, 0, len(def.Demos)*2+1)
	for _, demo := range def.Demos {
		in, err := r.Inputs(def, demo.Inputs, true)
		if err != nil {
			return nil, err
		}
		out, err := json.Marshal(demo.Outputs)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal demo outputs: %w", err)
		}
		messages = append(messages,
			llmadapter.Message{Role: llmadapter.RoleUser, Content: in},
			llmadapter.Message{Role: llmadapter.RoleAssistant, Content: string(out)},
		)
	}
	in, err := r.Inputs(def, values, false)
	if err != nil {
		return nil, err
	}
	messages = append(messages, llmadapter.Message{Role: llmadapter.RoleUser, Content: in})
	return &llmadapter.LLMRequest{SystemPrompt: system, Messages: messages}, nil
}
