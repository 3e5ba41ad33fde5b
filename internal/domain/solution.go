package domain

// SolverStatus is the status code reported by the routing engine.
type SolverStatus int

// Status codes follow the routing-library convention so stored values stay comparable.
const (
	StatusNotSolved      SolverStatus = 0
	StatusSuccess        SolverStatus = 1
	StatusPartialSuccess SolverStatus = 2
	StatusFail           SolverStatus = 3
	StatusFailTimeout    SolverStatus = 4
	StatusInvalid        SolverStatus = 5
)

func (s SolverStatus) String() string {
	switch s {
	case StatusNotSolved:
		return "not_solved"
	case StatusSuccess:
		return "success"
	case StatusPartialSuccess:
		return "partial_success"
	case StatusFail:
		return "fail"
	case StatusFailTimeout:
		return "fail_timeout"
	case StatusInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// RouteAssignment is the engine output: for each vehicle, the ordered node indices
// from the depot back to the depot. A vehicle left unused has the route [depot, depot].
// It is consumed by the materializer and never persisted as is.
type RouteAssignment struct {
	Routes [][]int
	Status SolverStatus
}

// Solution is the persisted result of a successful solve; at most one per batch.
type Solution struct {
	ID            int
	BatchID       int
	BatchName     string
	Routes        []string
	TotalDistance int
	TotalLoad     float64
	SolverStatus  *SolverStatus
}
