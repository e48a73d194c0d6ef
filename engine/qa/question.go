package qa

// Route is the routing decision for a question.
type Route string

const (
	RouteData     Route = "data"
	RouteDocument Route = "document"
	RouteCombined Route = "combined"
)

func (r Route) Valid() bool {
	switch r {
	case RouteData, RouteDocument, RouteCombined:
		return true
	}
	return false
}

// NeedsDocuments reports whether the route runs the retriever.
func (r Route) NeedsDocuments() bool {
	return r == RouteDocument || r == RouteCombined
}

// NeedsQuery reports whether the route runs the generate/execute loop.
func (r Route) NeedsQuery() bool {
	return r == RouteData || r == RouteCombined
}

// Question is one question to answer. An empty FormatHint is inferred
// from the question text.
type Question struct {
	ID         string `json:"id"`
	Text       string `json:"question"`
	FormatHint string `json:"format_hint,omitempty"`
}

// Answer is the final record for a question.
type Answer struct {
	ID          string   `json:"id"`
	FinalAnswer any      `json:"final_answer"`
	SQL         string   `json:"sql"`
	Confidence  float64  `json:"confidence"`
	Explanation string   `json:"explanation"`
	Citations   []string `json:"citations"`

	RunID      string `json:"-"`
	Route      Route  `json:"-"`
	FormatHint string `json:"-"`
	Retries    int    `json:"-"`
	Attempts   int    `json:"-"`
}

// ErrorAnswer is the record emitted when a question could not be answered.
func ErrorAnswer(id string, message string) *Answer {
	return &Answer{
		ID:          id,
		FinalAnswer: "Error",
		SQL:         "",
		Confidence:  0.0,
		Explanation: message,
		Citations:   []string{},
	}
}
