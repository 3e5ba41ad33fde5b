package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrBatchNotFound is returned when no batch has the requested name.
	ErrBatchNotFound = errors.New("batch not found")

	// ErrNoCustomers is returned when a batch yields no graph node besides the depot.
	ErrNoCustomers = errors.New("no customer found in the given batch")

	// ErrTooManyLocations is returned when the node count exceeds the provider's
	// per-request element cap, which leaves no room for even one origin row.
	ErrTooManyLocations = errors.New("too many locations for the distance matrix element limit")

	// ErrCapacityInsufficient is returned when the fleet capacity is below the total demand.
	ErrCapacityInsufficient = errors.New("the vehicle capacities is less than the sum of customer demands")

	// ErrInfeasible is returned when the engine finds no assignment within the time limit.
	ErrInfeasible = errors.New("no feasible solution found within the time limit")

	// ErrUpstream matches every *UpstreamError.
	ErrUpstream = errors.New("distance matrix provider failure")

	// ErrVehicleNotFound is returned when no vehicle has the requested id.
	ErrVehicleNotFound = errors.New("vehicle not found")

	// ErrSolutionNotFound is returned when a batch has not been solved yet.
	ErrSolutionNotFound = errors.New("solution not found")

	// ErrSolveInFlight is returned when a solve for the batch is already queued or running.
	ErrSolveInFlight = errors.New("a solve for this batch is already in progress")
)

// UpstreamError reports a failed distance matrix request for one origin chunk.
type UpstreamError struct {
	Chunk       int
	FirstOrigin int
	LastOrigin  int
	Err         error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf(
		"distance matrix chunk %d (origins %d..%d): %v",
		e.Chunk, e.FirstOrigin, e.LastOrigin, e.Err,
	)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

// IsInputError reports whether err means the solve request itself cannot be served.
func IsInputError(err error) bool {
	return errors.Is(err, ErrBatchNotFound) ||
		errors.Is(err, ErrNoCustomers) ||
		errors.Is(err, ErrTooManyLocations)
}

// IsTerminal reports whether err ends a pipeline run for good.
// Every classified failure is terminal; a retry means triggering a new solve.
func IsTerminal(err error) bool {
	return IsInputError(err) ||
		errors.Is(err, ErrCapacityInsufficient) ||
		errors.Is(err, ErrInfeasible) ||
		errors.Is(err, ErrUpstream)
}
