package qa

// MaxRepairRetries caps regenerations after failed executions.
const MaxRepairRetries = 2

// RepairController decides whether a failed execution is regenerated.
type RepairController struct {
	maxRetries int
}

// NewRepairController clamps maxRetries to [0, MaxRepairRetries].
func NewRepairController(maxRetries int) *RepairController {
	return &RepairController{maxRetries: max(0, min(maxRetries, MaxRepairRetries))}
}

// Next returns the update for a retry and true, or false when the run
// should move on to synthesis with its last outcome.
func (c *RepairController) Next(run AgentRun) (AgentRun, bool) {
	if run.Outcome == nil || !run.Outcome.Failed() || run.Retries >= c.maxRetries {
		return AgentRun{}, false
	}
	return AgentRun{Retries: run.Retries + 1}, true
}

func (c *RepairController) MaxRetries() int {
	return c.maxRetries
}
