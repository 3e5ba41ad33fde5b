package ports

import (
	"context"
	"vrp-solver-service/internal/domain"
)

// Contract for the capacitated routing engine.
type Solver interface {
	// Solve searches for a route assignment within in.TimeLimit.
	// A nil assignment with a nil error means no feasible assignment was found;
	// that is an expected outcome, not a failure.
	Solve(ctx context.Context, in domain.SolverInput) (*domain.RouteAssignment, error)
}
