package coerce

import (
	"strings"
)

// Shape is the kind of value a format hint asks for.
type Shape string

const (
	ShapeInt     Shape = "int"
	ShapeFloat   Shape = "float"
	ShapeList    Shape = "list"
	ShapeObject  Shape = "object"
	ShapeDefault Shape = "default"
)

// Field is one `name:type` entry of an object hint.
type Field struct {
	Name string
	Type string
}

// Hint is a parsed format hint.
//
// List hints carry either an element type (list[str]) or the fields of
// their element objects (list[{product:str, revenue:float}]).
type Hint struct {
	Raw     string
	Shape   Shape
	Element string
	Fields  []Field
}

// ParseHint classifies a hint string. Unknown hints yield ShapeDefault.
func ParseHint(raw string) Hint {
	h := Hint{Raw: raw, Shape: ShapeDefault}
	norm := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case norm == "int":
		h.Shape = ShapeInt
	case norm == "float":
		h.Shape = ShapeFloat
	case strings.HasPrefix(norm, "list"):
		h.Shape = ShapeList
		h.Fields = parseFields(raw)
		if len(h.Fields) == 0 {
			h.Element = listElement(norm)
		}
	case strings.Contains(norm, "{") && strings.Contains(norm, "}"):
		h.Shape = ShapeObject
		h.Fields = parseFields(raw)
	}
	return h
}

// HasObjectElements reports whether a list hint describes objects.
func (h Hint) HasObjectElements() bool {
	return h.Shape == ShapeList && len(h.Fields) > 0
}

func listElement(norm string) string {
	open := strings.Index(norm, "[")
	end := strings.LastIndex(norm, "]")
	if open < 0 || end <= open {
		return "str"
	}
	elem := strings.TrimSpace(norm[open+1 : end])
	if elem == "" {
		return "str"
	}
	return elem
}

func parseFields(raw string) []Field {
	open := strings.Index(raw, "{")
	end := strings.Index(raw, "}")
	if open < 0 || end <= open {
		return nil
	}
	var fields []Field
	for part := range strings.SplitSeq(raw[open+1:end], ",") {
		name, typ, _ := strings.Cut(part, ":")
		name = strings.Trim(strings.TrimSpace(name), `"'`)
		if name == "" {
			continue
		}
		fields = append(fields, Field{
			Name: name,
			Type: strings.ToLower(strings.TrimSpace(typ)),
		})
	}
	return fields
}
