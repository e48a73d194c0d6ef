package qa

import (
	"strings"

	"github.com/shopspring/decimal"
)

const maxExplanationRunes = 300

// Confidence scores a finished run: 0.5 base, +0.3 for a clean execution,
// +0.1 when documents were retrieved and -0.2 once a retry happened.
func Confidence(run AgentRun) float64 {
	score := decimal.NewFromFloat(0.5)
	if run.Outcome != nil && run.Outcome.Succeeded() {
		score = score.Add(decimal.NewFromFloat(0.3))
	}
	if len(run.Retrieved) > 0 {
		score = score.Add(decimal.NewFromFloat(0.1))
	}
	if run.Retries > 0 {
		score = score.Sub(decimal.NewFromFloat(0.2))
	}
	if score.LessThan(decimal.Zero) {
		score = decimal.Zero
	}
	if score.GreaterThan(decimal.NewFromInt(1)) {
		score = decimal.NewFromInt(1)
	}
	return score.Round(2).InexactFloat64()
}

// TrimExplanation keeps the first two sentences, ends them with a period
// and caps the result at 300 characters.
func TrimExplanation(explanation string) string {
	if explanation == "" {
		return ""
	}
	sentences := strings.Split(explanation, ". ")
	if len(sentences) > 2 {
		sentences = sentences[:2]
	}
	out := strings.Join(sentences, ". ")
	if !strings.HasSuffix(out, ".") {
		out += "."
	}
	runes := []rune(out)
	if len(runes) > maxExplanationRunes {
		out = string(runes[:maxExplanationRunes])
	}
	return out
}
