package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"vrp-solver-service/internal/domain"
)

// RouteSummary is the materialized form of one vehicle route.
type RouteSummary struct {
	Vehicle     int
	Description string
	Distance    int
	Load        float64
}

// Materialize walks every vehicle route of the assignment and builds the Solution to persist.
// Arc costs are read back from the solver input, per vehicle, never recomputed.
func Materialize(
	in domain.SolverInput,
	a *domain.RouteAssignment,
	batch *domain.Batch,
) (*domain.Solution, error) {
	if a == nil {
		return nil, errors.New("materialize: assignment is nil")
	}
	if batch == nil {
		return nil, errors.New("materialize: batch is nil")
	}
	if len(a.Routes) != in.NumVehicles {
		return nil, fmt.Errorf("materialize: got %d routes for %d vehicles", len(a.Routes), in.NumVehicles)
	}

	sol := &domain.Solution{
		BatchID:   batch.ID,
		BatchName: batch.Name,
		Routes:    make([]string, 0, len(a.Routes)),
	}

	for v, route := range a.Routes {
		summary, err := summarizeRoute(in, v, route)
		if err != nil {
			return nil, fmt.Errorf("materialize: %w", err)
		}
		sol.Routes = append(sol.Routes, summary.Description)
		sol.TotalDistance += summary.Distance
		sol.TotalLoad += summary.Load
	}

	status := a.Status
	sol.SolverStatus = &status

	return sol, nil
}

func summarizeRoute(in domain.SolverInput, v int, route []int) (RouteSummary, error) {
	if len(route) < 2 {
		return RouteSummary{}, fmt.Errorf("vehicle %d: route has %d nodes, want at least 2", v, len(route))
	}
	n := len(in.Demands)
	for _, node := range route {
		if node < 0 || node >= n {
			return RouteSummary{}, fmt.Errorf("vehicle %d: node %d out of range", v, node)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Route for vehicle %d:\n", v)

	distance := 0
	load := 0.0
	for i, node := range route[:len(route)-1] {
		load += in.Demands[node]
		fmt.Fprintf(&b, " %d Load(%s) -> ", node, formatLoad(load))
		distance += in.ArcCost(v, node, route[i+1])
	}
	fmt.Fprintf(&b, " %d Load(%s)\n", route[len(route)-1], formatLoad(load))
	fmt.Fprintf(&b, "Distance of the route: %dm\n", distance)
	fmt.Fprintf(&b, "Load of the route: %s\n", formatLoad(load))

	return RouteSummary{Vehicle: v, Description: b.String(), Distance: distance, Load: load}, nil
}

func formatLoad(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
