package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"vrp-solver-service/internal/domain"
	"vrp-solver-service/internal/platform/metrics"
	"vrp-solver-service/internal/platform/obs"
	"vrp-solver-service/internal/ports"

	"github.com/rs/zerolog/log"
)

// BatchSolverDeps wires the collaborators of one pipeline.
type BatchSolverDeps struct {
	Batches   ports.BatchRepository
	Vehicles  ports.VehicleRepository
	Solutions ports.SolutionRepository
	Matrix    ports.DistanceMatrixProvider
	Solver    ports.Solver
	// Depot is the raw depot postcode or address.
	Depot string
}

// BatchSolver runs the batch-to-solution pipeline as one callable unit.
// It holds no mutable state and may be shared by concurrent workers.
type BatchSolver struct {
	batches   ports.BatchRepository
	vehicles  ports.VehicleRepository
	solutions ports.SolutionRepository
	matrix    ports.DistanceMatrixProvider
	solver    ports.Solver
	graph     *GraphBuilder
}

func NewBatchSolver(deps BatchSolverDeps) (*BatchSolver, error) {
	switch {
	case deps.Batches == nil:
		return nil, errors.New("batch solver: batch repository is nil")
	case deps.Vehicles == nil:
		return nil, errors.New("batch solver: vehicle repository is nil")
	case deps.Solutions == nil:
		return nil, errors.New("batch solver: solution repository is nil")
	case deps.Matrix == nil:
		return nil, errors.New("batch solver: distance matrix provider is nil")
	case deps.Solver == nil:
		return nil, errors.New("batch solver: solver is nil")
	}

	return &BatchSolver{
		batches:   deps.Batches,
		vehicles:  deps.Vehicles,
		solutions: deps.Solutions,
		matrix:    deps.Matrix,
		solver:    deps.Solver,
		graph:     NewGraphBuilder(deps.Batches, deps.Depot),
	}, nil
}

// Solve builds the graph of the batch, checks fleet capacity, fetches the distance
// matrix, runs the solver and persists the materialized Solution.
//
// Every failure is returned before anything is written; a Solution is persisted only
// after a complete materialization. The returned errors match the domain sentinels:
// ErrBatchNotFound, ErrNoCustomers, ErrTooManyLocations, ErrCapacityInsufficient,
// ErrUpstream and ErrInfeasible.
func (s *BatchSolver) Solve(
	ctx context.Context,
	batchName string,
	timeLimit time.Duration,
) (_ *domain.Solution, err error) {
	defer obs.Time(ctx, "services.SolveBatch")(&err)

	start := time.Now()
	defer func() {
		metrics.SolveRuns.WithLabelValues(outcome(err)).Inc()
		metrics.SolveDuration.Observe(time.Since(start).Seconds())
	}()

	batch, err := s.batches.GetBatchByName(ctx, batchName)
	if err != nil {
		return nil, fmt.Errorf("solve batch: %w", err)
	}

	g, err := s.graph.BuildGraph(ctx, batchName)
	if err != nil {
		return nil, fmt.Errorf("solve batch: %w", err)
	}

	in, err := s.assembleInput(ctx, g, timeLimit)
	if err != nil {
		return nil, fmt.Errorf("solve batch %q: %w", batchName, err)
	}

	assignment, err := s.solver.Solve(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("solve batch %q: run solver: %w", batchName, err)
	}
	if assignment == nil {
		return nil, fmt.Errorf("solve batch %q: %w", batchName, domain.ErrInfeasible)
	}

	sol, err := Materialize(in, assignment, batch)
	if err != nil {
		return nil, fmt.Errorf("solve batch %q: %w", batchName, err)
	}

	if err := s.solutions.UpsertSolution(ctx, sol); err != nil {
		return nil, fmt.Errorf("solve batch %q: persist solution: %w", batchName, err)
	}

	log.Info().
		Str("req_id", obs.RequestID(ctx)).
		Str("batch", batchName).
		Int("nodes", g.Len()).
		Int("vehicles", in.NumVehicles).
		Int("total_distance", sol.TotalDistance).
		Float64("total_load", sol.TotalLoad).
		Str("status", assignment.Status.String()).
		Msg("batch solved")

	return sol, nil
}

// assembleInput reads the available fleet, applies the capacity pre-check and
// fetches the distance matrix. The provider is not called when the pre-check fails.
func (s *BatchSolver) assembleInput(
	ctx context.Context,
	g domain.Graph,
	timeLimit time.Duration,
) (domain.SolverInput, error) {
	available := true
	vehicles, err := s.vehicles.ListVehicles(ctx, &available)
	if err != nil {
		return domain.SolverInput{}, fmt.Errorf("list available vehicles: %w", err)
	}

	capacities := domain.Capacities(vehicles)
	capacity := 0.0
	for _, c := range capacities {
		capacity += c
	}

	if len(capacities) == 0 || capacity < g.TotalDemand() {
		return domain.SolverInput{}, fmt.Errorf(
			"%w: %d vehicles with capacity %v, demand %v",
			domain.ErrCapacityInsufficient, len(capacities), capacity, g.TotalDemand(),
		)
	}

	matrix, err := s.matrix.ComputeMatrix(ctx, g.Locations)
	if err != nil {
		return domain.SolverInput{}, fmt.Errorf("compute distance matrix: %w", err)
	}
	if err := matrix.Validate(g.Len()); err != nil {
		return domain.SolverInput{}, fmt.Errorf("compute distance matrix: %w", err)
	}

	return domain.NewSolverInput(matrix, g, capacities, timeLimit), nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case domain.IsInputError(err):
		return "input_error"
	case errors.Is(err, domain.ErrCapacityInsufficient):
		return "capacity_insufficient"
	case errors.Is(err, domain.ErrUpstream):
		return "upstream_error"
	case errors.Is(err, domain.ErrInfeasible):
		return "infeasible"
	default:
		return "error"
	}
}
