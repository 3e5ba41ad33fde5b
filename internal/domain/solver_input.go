package domain

import "time"

// SolverInput is everything the routing engine needs for one solve.
// It is built once per pipeline run and never mutated afterwards.
type SolverInput struct {
	DistanceMatrix    DistanceMatrix
	Demands           []float64
	VehicleCapacities []float64
	Depot             int
	NumVehicles       int
	TimeLimit         time.Duration
}

// NewSolverInput assembles a SolverInput with the depot fixed at DepotIndex.
func NewSolverInput(matrix DistanceMatrix, g Graph, capacities []float64, timeLimit time.Duration) SolverInput {
	return SolverInput{
		DistanceMatrix:    matrix,
		Demands:           g.Demands,
		VehicleCapacities: capacities,
		Depot:             DepotIndex,
		NumVehicles:       len(capacities),
		TimeLimit:         timeLimit,
	}
}

// TotalCapacity sums the capacity of the fleet.
func (in SolverInput) TotalCapacity() float64 {
	total := 0.0
	for _, c := range in.VehicleCapacities {
		total += c
	}
	return total
}

// TotalDemand sums the demand of every node.
func (in SolverInput) TotalDemand() float64 {
	total := 0.0
	for _, d := range in.Demands {
		total += d
	}
	return total
}

// ArcCost returns the cost for vehicle to travel from node to node.
// The cost is the same for every vehicle; the vehicle is part of the signature so
// per-vehicle evaluators can be introduced without touching callers.
func (in SolverInput) ArcCost(vehicle, from, to int) int {
	return in.DistanceMatrix[from][to]
}
