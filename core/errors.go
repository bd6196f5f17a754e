package core

import "fmt"

// Kind classifies a core.Error into the four-part taxonomy the dispatch
// layer and the HTTP surface both switch on.
type Kind int

const (
	// KindValidation marks malformed or inconsistent input.
	KindValidation Kind = iota
	// KindInfeasible marks a solve that returned INFEASIBLE or UNKNOWN
	// with no assignment at all.
	KindInfeasible
	// KindTimeout marks a solve that hit its wall budget. The core never
	// returns this directly (a timeout with a FEASIBLE incumbent is
	// promoted to success); it exists for callers that want to
	// distinguish a bare timeout from true infeasibility.
	KindTimeout
	// KindSolverFault marks an unexpected internal search failure.
	KindSolverFault
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindInfeasible:
		return "infeasible"
	case KindTimeout:
		return "timeout"
	case KindSolverFault:
		return "solver_fault"
	default:
		return "unknown"
	}
}

// Error is the error type every core operation returns on failure.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, k Kind) bool {
	ce, ok := err.(*Error)
	return ok && ce.Kind == k
}
