package master

// Phase names the states of the play loop so its control flow is
// inspectable and testable instead of living in scattered flags.
type Phase int

const (
	PhaseAwaitingResponse Phase = iota
	PhaseValidating
	PhaseStepping
	PhaseRoundBoundary
	PhaseTerminated
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingResponse:
		return "awaiting_response"
	case PhaseValidating:
		return "validating"
	case PhaseStepping:
		return "stepping"
	case PhaseRoundBoundary:
		return "round_boundary"
	case PhaseTerminated:
		return "terminated"
	}
	return "unknown"
}
