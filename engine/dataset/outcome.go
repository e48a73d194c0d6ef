package dataset

import "encoding/json"

// OutcomeKind distinguishes the three results of running a query.
type OutcomeKind string

const (
	OutcomeRows   OutcomeKind = "rows"
	OutcomeNoRows OutcomeKind = "no_rows"
	OutcomeError  OutcomeKind = "error"
)

// ErrorKind classifies a failed query.
type ErrorKind string

const (
	ErrorUnsafe    ErrorKind = "unsafe"
	ErrorExecution ErrorKind = "execution"
)

const (
	UnsafeQueryMessage = "Error: Unsafe query detected. Only SELECT is allowed."
	NoRowsMessage      = "Query executed successfully but returned no results."
)

// Outcome is the result of Execute: rows, an empty success, or a classified error.
type Outcome struct {
	Kind      OutcomeKind
	Rows      []Row
	ErrorKind ErrorKind
	Message   string
}

func RowsOutcome(rows []Row) Outcome {
	if len(rows) == 0 {
		return NoRowsOutcome()
	}
	return Outcome{Kind: OutcomeRows, Rows: rows}
}

func NoRowsOutcome() Outcome {
	return Outcome{Kind: OutcomeNoRows, Message: NoRowsMessage}
}

func ErrorOutcome(kind ErrorKind, message string) Outcome {
	return Outcome{Kind: OutcomeError, ErrorKind: kind, Message: message}
}

// Failed reports whether the query was rejected or errored.
func (o Outcome) Failed() bool {
	return o.Kind == OutcomeError
}

// Succeeded reports a clean execution, with or without rows.
func (o Outcome) Succeeded() bool {
	return o.Kind == OutcomeRows || o.Kind == OutcomeNoRows
}

// Describe renders the outcome as text for prompts.
func (o Outcome) Describe() string {
	switch o.Kind {
	case OutcomeRows:
		b, err := json.Marshal(o.Rows)
		if err != nil {
			return "Error rendering rows: " + err.Error()
		}
		return string(b)
	case OutcomeNoRows:
		return NoRowsMessage
	case OutcomeError:
		return o.Message
	default:
		return "No data"
	}
}
