package batch

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/compozy/hybridqa/engine/qa"
	"github.com/go-playground/validator/v10"
)

const maxLineBytes = 1 << 20

type record struct {
	ID         string `json:"id"          validate:"required"`
	Question   string `json:"question"    validate:"required"`
	FormatHint string `json:"format_hint"`
}

// LineError describes an input line that was skipped.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Reader yields questions from a JSONL stream. Blank lines are ignored.
type Reader struct {
	scanner  *bufio.Scanner
	validate *validator.Validate
	line     int
}

func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &Reader{scanner: scanner, validate: validator.New()}
}

// Next returns the next question. A *LineError means the line was skipped
// and reading can continue; io.EOF ends the stream.
func (r *Reader) Next() (qa.Question, error) {
	for r.scanner.Scan() {
		r.line++
		raw := bytes.TrimSpace(r.scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var rec record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return qa.Question{}, &LineError{Line: r.line, Err: fmt.Errorf("invalid JSON: %w", err)}
		}
		if err := r.validate.Struct(rec); err != nil {
			return qa.Question{}, &LineError{Line: r.line, Err: fmt.Errorf("invalid record: %w", err)}
		}
		return qa.Question{ID: rec.ID, Text: rec.Question, FormatHint: rec.FormatHint}, nil
	}
	if err := r.scanner.Err(); err != nil {
		return qa.Question{}, fmt.Errorf("read line %d: %w", r.line+1, err)
	}
	return qa.Question{}, io.EOF
}
