package task

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrEmptyReply is returned when the model answered with nothing.
var ErrEmptyReply = errors.New("empty model reply")

// markerPattern matches "name: value" and "[[ ## name ## ]]" field headers.
var markerPattern = regexp.MustCompile(
	`^\s*(?:\[\[\s*#*\s*([A-Za-z_][A-Za-z0-9_]*)\s*#*\s*\]\]|\**([A-Za-z_][A-Za-z0-9_]*)\**\s*:)\s*(.*)$`,
)

// ParseReply extracts the declared output fields from a raw reply. It tries
// an embedded JSON object first, then field headers, and finally treats the
// whole reply as the value of a single-output task.
func ParseReply(def *Definition, content string) (Result, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyReply
	}
	if obj, ok := extractObject(content); ok {
		out := fromJSON(def, obj)
		if len(out) > 0 {
			return out, nil
		}
		if strings.TrimSpace(stripFence(content)) == obj {
			return nil, fmt.Errorf("task %s: reply has none of the declared fields", def.Name)
		}
	}
	if out := fromMarkers(def, content); len(out) > 0 {
		return out, nil
	}
	if len(def.Outputs) == 1 {
		return Result{def.Outputs[0].Name: content}, nil
	}
	return nil, fmt.Errorf("task %s: could not locate output fields in reply", def.Name)
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSuffix(strings.TrimSpace(s), "```")
}

// extractObject returns the outermost {...} span when it is valid JSON.
func extractObject(content string) (string, bool) {
	start := strings.IndexByte(content, '{')
	end := strings.LastIndexByte(content, '}')
	if start < 0 || end <= start {
		return "", false
	}
	candidate := content[start : end+1]
	if !gjson.Valid(candidate) {
		return "", false
	}
	return candidate, true
}

func fromJSON(def *Definition, obj string) Result {
	parsed := gjson.Parse(obj)
	out := Result{}
	for _, f := range def.Outputs {
		v := parsed.Get(f.Name)
		if !v.Exists() {
			continue
		}
		out[f.Name] = v.Value()
	}
	return out
}

func fromMarkers(def *Definition, content string) Result {
	names := make(map[string]string, len(def.Outputs))
	for _, f := range def.Outputs {
		names[strings.ToLower(f.Name)] = f.Name
	}
	out := Result{}
	var current string
	var buf []string
	flush := func() {
		if current != "" {
			out[current] = strings.TrimSpace(strings.Join(buf, "\n"))
		}
	}
	for line := range strings.SplitSeq(content, "\n") {
		if m := markerPattern.FindStringSubmatch(line); m != nil {
			name := m[1]
			if name == "" {
				name = m[2]
			}
			if declared, ok := names[strings.ToLower(name)]; ok {
				flush()
				current = declared
				buf = []string{m[3]}
				continue
			}
		}
		if current != "" {
			buf = append(buf, line)
		}
	}
	flush()
	return out
}
