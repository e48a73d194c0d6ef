// Package coerce turns an untrusted raw answer into a value of the shape a
// format hint asks for, falling back to the query rows when the text is
// unusable.
package coerce

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/compozy/hybridqa/engine/dataset"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

var (
	intPattern    = regexp.MustCompile(`\d+`)
	floatPattern  = regexp.MustCompile(`\d+\.?\d*`)
	listPattern   = regexp.MustCompile(`(?s)\[.*\]`)
	objectPattern = regexp.MustCompile(`\{[^}]+\}`)
)

// parser handles one shape. parse reads the raw answer; fallback derives
// the value from rows and must accept an empty slice.
type parser struct {
	parse    func(raw string, h Hint) (any, bool)
	fallback func(rows []dataset.Row, h Hint) any
}

var parsers = map[Shape]parser{
	ShapeInt:     {parse: parseInt, fallback: fallbackInt},
	ShapeFloat:   {parse: parseFloat, fallback: fallbackFloat},
	ShapeList:    {parse: parseList, fallback: fallbackList},
	ShapeObject:  {parse: parseObject, fallback: fallbackObject},
	ShapeDefault: {parse: parseDefault, fallback: func([]dataset.Row, Hint) any { return "" }},
}

// Coerce never fails: every shape ends in a zero value of its type.
func Coerce(raw string, hint string, outcome dataset.Outcome) any {
	return CoerceHint(raw, ParseHint(hint), outcome)
}

// CoerceHint is Coerce with an already parsed hint.
func CoerceHint(raw string, h Hint, outcome dataset.Outcome) any {
	p, ok := parsers[h.Shape]
	if !ok {
		p = parsers[ShapeDefault]
	}
	answer := strings.TrimSpace(raw)
	if v, ok := p.parse(answer, h); ok {
		return v
	}
	var rows []dataset.Row
	if outcome.Kind == dataset.OutcomeRows {
		rows = outcome.Rows
	}
	return p.fallback(rows, h)
}

func parseInt(raw string, _ Hint) (any, bool) {
	m := intPattern.FindString(raw)
	if m == "" {
		return nil, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return nil, false
	}
	return n, true
}

func fallbackInt(rows []dataset.Row, _ Hint) any {
	if len(rows) == 0 {
		return 0
	}
	return toInt(rows[0].First())
}

func parseFloat(raw string, _ Hint) (any, bool) {
	m := floatPattern.FindString(raw)
	if m == "" {
		return nil, false
	}
	d, err := decimal.NewFromString(strings.TrimSuffix(m, "."))
	if err != nil {
		return nil, false
	}
	return round2(d), true
}

func fallbackFloat(rows []dataset.Row, _ Hint) any {
	if len(rows) == 0 {
		return 0.0
	}
	return toFloat(rows[0].First())
}

func parseList(raw string, h Hint) (any, bool) {
	m := listPattern.FindString(strings.ReplaceAll(raw, "'", `"`))
	if m == "" || !gjson.Valid(m) {
		return nil, false
	}
	list, ok := gjson.Parse(m).Value().([]any)
	if !ok || len(list) == 0 {
		return nil, false
	}
	for i, elem := range list {
		list[i] = typeElement(elem, h)
	}
	return list, true
}

// typeElement applies the hint's element type to one parsed list item.
// Object items only have their declared fields converted.
func typeElement(elem any, h Hint) any {
	if !h.HasObjectElements() {
		return convert(elem, scalarType(h.Element))
	}
	obj, ok := elem.(map[string]any)
	if !ok {
		return elem
	}
	for _, f := range h.Fields {
		if v, present := obj[f.Name]; present {
			obj[f.Name] = convert(v, f.Type)
		}
	}
	return obj
}

func fallbackList(rows []dataset.Row, h Hint) any {
	out := make([]any, 0, len(rows))
	for _, row := range rows {
		if h.HasObjectElements() {
			out = append(out, buildObject(row, h.Fields))
			continue
		}
		out = append(out, convert(row.First(), scalarType(h.Element)))
	}
	return out
}

// scalarType maps a list element to a conversion; anything unrecognized is
// rendered as text.
func scalarType(elem string) string {
	switch elem {
	case "int", "integer", "float", "number":
		return elem
	default:
		return "str"
	}
}

func parseObject(raw string, _ Hint) (any, bool) {
	m := objectPattern.FindString(strings.ReplaceAll(raw, "'", `"`))
	if m == "" || !gjson.Valid(m) {
		return nil, false
	}
	obj, ok := gjson.Parse(m).Value().(map[string]any)
	if !ok || len(obj) == 0 {
		return nil, false
	}
	return obj, true
}

func fallbackObject(rows []dataset.Row, h Hint) any {
	if len(rows) == 0 {
		return map[string]any{}
	}
	return buildObject(rows[0], h.Fields)
}

func buildObject(row dataset.Row, fields []Field) map[string]any {
	obj := make(map[string]any, len(fields))
	for _, f := range fields {
		v, _ := lookup(row, f.Name)
		obj[f.Name] = convert(v, f.Type)
	}
	return obj
}

func parseDefault(raw string, _ Hint) (any, bool) {
	return raw, true
}
