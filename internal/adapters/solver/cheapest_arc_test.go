package solver

import (
	"context"
	"testing"
	"time"
	"vrp-solver-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lineMatrix places node i at position pos[i] on a line.
func lineMatrix(pos ...int) domain.DistanceMatrix {
	m := make(domain.DistanceMatrix, len(pos))
	for i := range pos {
		m[i] = make([]int, len(pos))
		for j := range pos {
			d := pos[i] - pos[j]
			if d < 0 {
				d = -d
			}
			m[i][j] = d
		}
	}
	return m
}

func input(m domain.DistanceMatrix, demands, capacities []float64, limit time.Duration) domain.SolverInput {
	return domain.SolverInput{
		DistanceMatrix:    m,
		Demands:           demands,
		VehicleCapacities: capacities,
		Depot:             domain.DepotIndex,
		NumVehicles:       len(capacities),
		TimeLimit:         limit,
	}
}

// assertFeasible checks the route invariants of a solved assignment.
func assertFeasible(t *testing.T, in domain.SolverInput, got *domain.RouteAssignment) {
	t.Helper()
	require.NotNil(t, got)
	require.Len(t, got.Routes, in.NumVehicles)

	seen := map[int]int{}
	for v, r := range got.Routes {
		require.GreaterOrEqual(t, len(r), 2, "vehicle %d", v)
		assert.Equal(t, in.Depot, r[0], "vehicle %d starts at depot", v)
		assert.Equal(t, in.Depot, r[len(r)-1], "vehicle %d ends at depot", v)

		load := 0.0
		for _, node := range r[1 : len(r)-1] {
			assert.NotEqual(t, in.Depot, node)
			seen[node]++
			load += in.Demands[node]
		}
		assert.LessOrEqual(t, load, in.VehicleCapacities[v], "vehicle %d load", v)
	}

	for node := range in.Demands {
		if node == in.Depot {
			continue
		}
		assert.Equal(t, 1, seen[node], "node %d visited once", node)
	}
}

func totalCost(in domain.SolverInput, routes [][]int) int {
	total := 0
	for v, r := range routes {
		for i := 0; i+1 < len(r); i++ {
			total += in.ArcCost(v, r[i], r[i+1])
		}
	}
	return total
}

func TestSolveSingleVehicleVisitsEveryone(t *testing.T) {
	in := input(lineMatrix(0, 10, 20, 30), []float64{0, 1, 1, 1}, []float64{10}, time.Second)

	got, err := NewCheapestArc().Solve(context.Background(), in)
	require.NoError(t, err)
	assertFeasible(t, in, got)

	assert.Equal(t, domain.StatusSuccess, got.Status)
	assert.Equal(t, [][]int{{0, 1, 2, 3, 0}}, got.Routes)
	assert.Equal(t, 60, totalCost(in, got.Routes))
}

func TestSolveSplitsByCapacity(t *testing.T) {
	in := input(
		lineMatrix(0, 10, 20, -10, -20),
		[]float64{0, 3, 3, 3, 3},
		[]float64{6, 6},
		time.Second,
	)

	got, err := NewCheapestArc().Solve(context.Background(), in)
	require.NoError(t, err)
	assertFeasible(t, in, got)

	// Each side of the depot fills exactly one vehicle.
	assert.Equal(t, 80, totalCost(in, got.Routes))
}

func TestSolveLeavesUnusedVehicleAtDepot(t *testing.T) {
	in := input(lineMatrix(0, 5, 6), []float64{0, 1, 1}, []float64{10, 10, 10}, time.Second)

	got, err := NewCheapestArc().Solve(context.Background(), in)
	require.NoError(t, err)
	assertFeasible(t, in, got)

	assert.Equal(t, []int{0, 1, 2, 0}, got.Routes[0])
	assert.Equal(t, []int{0, 0}, got.Routes[1])
	assert.Equal(t, []int{0, 0}, got.Routes[2])
}

func TestSolveDepotOnly(t *testing.T) {
	in := input(lineMatrix(0), []float64{0}, []float64{4, 4}, time.Second)

	got, err := NewCheapestArc().Solve(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 0}, {0, 0}}, got.Routes)
	assert.Equal(t, domain.StatusSuccess, got.Status)
}

func TestSolveFallsBackToBestFitPacking(t *testing.T) {
	// Greedy construction puts the 4-unit node into the 6-unit vehicle first and
	// strands a 3-unit node; only {3,3} + {4} packs the fleet.
	in := input(
		lineMatrix(0, 5, 6, 1),
		[]float64{0, 3, 3, 4},
		[]float64{6, 4},
		time.Second,
	)

	_, ok := newProblem(in).cheapestArc()
	require.False(t, ok, "greedy construction strands a node")

	got, err := NewCheapestArc().Solve(context.Background(), in)
	require.NoError(t, err)
	assertFeasible(t, in, got)
}

func TestSolveInfeasible(t *testing.T) {
	cases := map[string]domain.SolverInput{
		"total demand exceeds fleet": input(
			lineMatrix(0, 1, 2), []float64{0, 3, 3}, []float64{5}, time.Second,
		),
		"node larger than any vehicle": input(
			lineMatrix(0, 1, 2), []float64{0, 1, 7}, []float64{5, 5}, time.Second,
		),
		"zero capacity fleet": input(
			lineMatrix(0, 1), []float64{0, 1}, []float64{0}, time.Second,
		),
	}

	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := NewCheapestArc().Solve(context.Background(), in)
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestSolveZeroDemandNodesAlwaysFit(t *testing.T) {
	in := input(lineMatrix(0, 1, 2), []float64{0, 0, 0}, []float64{0}, time.Second)

	got, err := NewCheapestArc().Solve(context.Background(), in)
	require.NoError(t, err)
	assertFeasible(t, in, got)
}

func TestSolveImprovesConstruction(t *testing.T) {
	// Cheapest arc from the depot walks 1 -> 2 -> 3 -> 4, then pays the long way back.
	m := domain.DistanceMatrix{
		{0, 1, 50, 50, 2},
		{1, 0, 1, 50, 50},
		{50, 50, 0, 1, 50},
		{50, 50, 50, 0, 1},
		{100, 50, 50, 50, 0},
	}
	in := input(m, []float64{0, 1, 1, 1, 1}, []float64{2, 2}, time.Second)

	p := newProblem(in)
	constructed, ok := p.construct()
	require.True(t, ok)
	before := totalCost(in, constructed)

	got, err := NewCheapestArc().Solve(context.Background(), in)
	require.NoError(t, err)
	assertFeasible(t, in, got)
	assert.LessOrEqual(t, totalCost(in, got.Routes), before)
	assert.Equal(t, domain.StatusSuccess, got.Status)
}

func TestSolveReversesTwoCustomerRoute(t *testing.T) {
	// Depot -> 1 is the cheapest first arc, but 1 -> 2 and 2 -> depot are expensive.
	m := domain.DistanceMatrix{
		{0, 10, 11},
		{1, 0, 100},
		{100, 1, 0},
	}
	in := input(m, []float64{0, 1, 1}, []float64{5}, time.Second)

	p := newProblem(in)
	constructed, ok := p.construct()
	require.True(t, ok)
	require.Equal(t, [][]int{{0, 1, 2, 0}}, constructed)

	got, err := NewCheapestArc().Solve(context.Background(), in)
	require.NoError(t, err)
	assertFeasible(t, in, got)
	assert.Equal(t, [][]int{{0, 2, 1, 0}}, got.Routes)
	assert.Equal(t, 13, totalCost(in, got.Routes))
	assert.Equal(t, domain.StatusSuccess, got.Status)
}

func TestSolvePartialWhenTimeRunsOut(t *testing.T) {
	in := input(lineMatrix(0, 10, 20, 30, 40), []float64{0, 1, 1, 1, 1}, []float64{10}, time.Second)

	// The clock jumps past the deadline right after the start is recorded.
	calls := 0
	base := time.Unix(0, 0)
	s := &CheapestArc{now: func() time.Time {
		calls++
		if calls == 1 {
			return base
		}
		return base.Add(time.Hour)
	}}

	got, err := s.Solve(context.Background(), in)
	require.NoError(t, err)
	assertFeasible(t, in, got)
	assert.Equal(t, domain.StatusPartialSuccess, got.Status)
}

func TestSolveHonorsCancellation(t *testing.T) {
	in := input(lineMatrix(0, 10, 20), []float64{0, 1, 1}, []float64{10}, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCheapestArc().Solve(ctx, in)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSolveRejectsMalformedInput(t *testing.T) {
	good := input(lineMatrix(0, 1), []float64{0, 1}, []float64{1}, time.Second)

	cases := map[string]func(in *domain.SolverInput){
		"no nodes":           func(in *domain.SolverInput) { in.Demands = nil },
		"no vehicles":        func(in *domain.SolverInput) { in.NumVehicles = 0; in.VehicleCapacities = nil },
		"count mismatch":     func(in *domain.SolverInput) { in.NumVehicles = 2 },
		"matrix not square":  func(in *domain.SolverInput) { in.DistanceMatrix = domain.DistanceMatrix{{0, 1}, {1}} },
		"negative demand":    func(in *domain.SolverInput) { in.Demands = []float64{0, -1} },
		"depot out of range": func(in *domain.SolverInput) { in.Depot = 5 },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := good
			mutate(&in)
			_, err := NewCheapestArc().Solve(context.Background(), in)
			require.Error(t, err)
		})
	}
}

func TestTwoOptSwap(t *testing.T) {
	assert.Equal(t, []int{0, 3, 2, 1, 4, 0}, twoOptSwap([]int{0, 1, 2, 3, 4, 0}, 1, 3))
}
