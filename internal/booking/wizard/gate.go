// Package wizard gates forward navigation through the booking wizard.
//
// Only forward moves are gated, and the gate is recomputed from Facts on
// every attempt. Backward moves and jumps to visited steps always succeed.
package wizard

// Facts is the slice of form state the step predicates read.
type Facts struct {
	VehicleSelected bool
	StartSet        bool
	EndSet          bool
	DurationDays    int
	HasEmail        bool
	HasPhone        bool
	Pickup          string
	Dropoff         string
}

// State is a read-only copy of the gate for views.
type State struct {
	Flow            string `json:"flow"`
	Steps           []Step `json:"steps"`
	Current         int    `json:"current"`
	FurthestReached int    `json:"furthestReached"`
	ValidatedSteps  []int  `json:"validatedSteps"`
	CanProceed      bool   `json:"canProceed"`
	SubmitOnEnter   bool   `json:"submitOnEnter"`
}

// Gate tracks the wizard position of one form session.
type Gate struct {
	flow      Flow
	current   int
	furthest  int
	validated map[int]bool
}

// NewGate starts at the first step of flow.
func NewGate(flow Flow) *Gate {
	return &Gate{flow: flow, validated: make(map[int]bool)}
}

// Current returns the current step index.
func (g *Gate) Current() int { return g.current }

// IsTerminal reports whether the current step is the last one.
func (g *Gate) IsTerminal() bool { return g.current == len(g.flow.Steps)-1 }

// CanProceed evaluates the predicate of step against f. Out of range
// indices cannot proceed.
func (g *Gate) CanProceed(step int, f Facts) bool {
	if step < 0 || step >= len(g.flow.Steps) {
		return false
	}
	switch g.flow.Steps[step].Key {
	case StepReservation:
		return f.VehicleSelected && f.StartSet && f.EndSet && f.DurationDays > 0
	case StepCustomer:
		return f.HasEmail || f.HasPhone
	case StepLogistics:
		return f.Pickup != "" && f.Dropoff != ""
	case StepPricing:
		return true
	default:
		return false
	}
}

// Next advances one step when the current step's predicate holds and
// marks the step validated. It never moves past the terminal step.
func (g *Gate) Next(f Facts) bool {
	if g.IsTerminal() || !g.CanProceed(g.current, f) {
		return false
	}
	g.validated[g.current] = true
	g.current++
	g.furthest = max(g.furthest, g.current)
	return true
}

// Previous moves back one step. It is never gated.
func (g *Gate) Previous() bool {
	if g.current == 0 {
		return false
	}
	g.current--
	return true
}

// GoTo jumps to any step already reached. State is not re-validated and
// a jump to the current step is a no-op.
func (g *Gate) GoTo(step int) bool {
	if step < 0 || step > g.furthest {
		return false
	}
	g.current = step
	return true
}

// SubmitOnEnter reports whether an implicit Enter submission may proceed.
func (g *Gate) SubmitOnEnter() bool { return g.IsTerminal() }

// State snapshots the gate.
func (g *Gate) State(f Facts) State {
	validated := make([]int, 0, len(g.validated))
	for i := range g.flow.Steps {
		if g.validated[i] {
			validated = append(validated, i)
		}
	}
	return State{
		Flow:            g.flow.Name,
		Steps:           g.flow.Steps,
		Current:         g.current,
		FurthestReached: g.furthest,
		ValidatedSteps:  validated,
		CanProceed:      g.CanProceed(g.current, f),
		SubmitOnEnter:   g.SubmitOnEnter(),
	}
}
