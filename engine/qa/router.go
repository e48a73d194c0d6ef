package qa

import (
	"context"
	"strings"

	"github.com/compozy/hybridqa/engine/core"
	"github.com/compozy/hybridqa/engine/llm/task"
	"github.com/compozy/hybridqa/pkg/logger"
)

// legacyRoutes maps labels some prompts still produce.
var legacyRoutes = map[string]Route{
	"sql":    RouteData,
	"rag":    RouteDocument,
	"hybrid": RouteCombined,
}

// Router classifies questions with a single model call.
type Router struct {
	runner TaskRunner
	def    *task.Definition
}

func NewRouter(runner TaskRunner) *Router {
	return &Router{runner: runner, def: task.Route()}
}

// Classify always returns a valid route. Model failures and unknown labels
// both yield RouteCombined.
func (r *Router) Classify(ctx context.Context, question string) Route {
	log := logger.FromContext(ctx)
	res, err := r.runner.Run(ctx, r.def, map[string]string{task.FieldQuestion: question})
	if err != nil {
		err = core.NewError(err, core.ErrCodeRoutingFailed, nil)
		recordAbsorbed(ctx, "route")
		log.Warn("Classification failed, using combined route", "error", core.RedactError(err))
		return RouteCombined
	}
	label := res.String(task.FieldClassification)
	route, ok := ParseRoute(label)
	if !ok {
		log.Warn("Unrecognized route label, using combined route", "label", label)
		return RouteCombined
	}
	return route
}

// NormalizeLabel lowercases a raw label and strips surrounding
// punctuation and quotes.
func NormalizeLabel(label string) string {
	return strings.Trim(strings.ToLower(strings.TrimSpace(label)), " \t\r\n.,;:!?'\"`*")
}

// ParseRoute maps a raw model label to a route.
func ParseRoute(label string) (Route, bool) {
	norm := NormalizeLabel(label)
	if route := Route(norm); route.Valid() {
		return route, true
	}
	if route, ok := legacyRoutes[norm]; ok {
		return route, true
	}
	return "", false
}
