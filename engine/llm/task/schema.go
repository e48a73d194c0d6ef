package task

import "github.com/invopop/jsonschema"

// ReplySchema describes the JSON object a task reply must be.
func ReplySchema(def *Definition) *jsonschema.Schema {
	props := jsonschema.NewProperties()
	required := make([]string, 0, len(def.Outputs))
	for _, f := range def.Outputs {
		props.Set(f.Name, fieldSchema(f))
		required = append(required, f.Name)
	}
	return &jsonschema.Schema{
		Type:       "object",
		Title:      def.Name,
		Properties: props,
		Required:   required,
	}
}

func fieldSchema(f Field) *jsonschema.Schema {
	s := &jsonschema.Schema{Description: f.Desc}
	switch f.Type {
	case "", TypeString:
		s.Type = "string"
	case TypeArray:
		s.Type = "array"
		s.Items = &jsonschema.Schema{Type: "string"}
	}
	return s
}
