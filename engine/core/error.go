package core

import (
	"errors"
	"fmt"
)

const (
	ErrCodeRoutingFailed     = "ROUTING_FAILED"
	ErrCodeGenerationFailed  = "GENERATION_FAILED"
	ErrCodeSynthesisFailed   = "SYNTHESIS_FAILED"
	ErrCodeDatasetOpen       = "DATASET_OPEN_FAILED"
	ErrCodeCorpusLoad        = "CORPUS_LOAD_FAILED"
	ErrCodeBatchIO           = "BATCH_IO_FAILED"
	ErrCodeLLMRequest        = "LLM_REQUEST_FAILED"
	ErrCodeInvalidQuestion   = "INVALID_QUESTION"
	ErrCodeOrchestration     = "ORCHESTRATION_FAILED"
	ErrCodeTemplateRendering = "TEMPLATE_RENDERING_FAILED"
)

// Error is a coded error carrying optional structured details.
type Error struct {
	Message string         `json:"message"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
	err     error
}

// NewError wraps err with a stable code. A nil err yields a message equal to the code.
func NewError(err error, code string, details map[string]any) *Error {
	msg := code
	if err != nil {
		msg = err.Error()
	}
	return &Error{Message: msg, Code: code, Details: details, err: err}
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Code == "" || e.Message == e.Code {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

// AsMap renders the error for JSON responses and structured logs.
func (e *Error) AsMap() map[string]any {
	if e == nil {
		return nil
	}
	m := map[string]any{"message": e.Message, "code": e.Code}
	if len(e.Details) > 0 {
		m["details"] = e.Details
	}
	return m
}

// ErrorCode returns the code of the first *Error in err's chain, or "".
func ErrorCode(err error) string {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ""
}
