package solver

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"
	"vrp-solver-service/internal/domain"
	"vrp-solver-service/internal/platform/obs"
)

// capacityEpsilon absorbs float noise in demand sums; capacities have no slack otherwise.
const capacityEpsilon = 1e-9

// CheapestArc is a capacitated routing engine.
//
// Construction extends one vehicle route at a time along the cheapest arc to an unvisited
// node that still fits. When that leaves nodes unserved, nodes are packed best-fit
// decreasing by demand and ordered nearest-first per vehicle. The result is then improved
// with intra-route 2-opt and inter-route relocate moves until no move helps or the
// time limit expires.
//
// Status is StatusSuccess when the search converged and StatusPartialSuccess when the
// time limit cut it short. Results are deterministic for a given input.
type CheapestArc struct {
	now func() time.Time
}

func NewCheapestArc() *CheapestArc {
	return &CheapestArc{now: time.Now}
}

func (s *CheapestArc) Solve(ctx context.Context, in domain.SolverInput) (_ *domain.RouteAssignment, err error) {
	defer obs.Time(ctx, "solver.CheapestArc")(&err)

	if err := validate(in); err != nil {
		return nil, err
	}

	now := s.now
	if now == nil {
		now = time.Now
	}
	start := now()

	p := newProblem(in)
	routes, ok := p.construct()
	if !ok {
		return nil, nil
	}

	status := domain.StatusSuccess
	if in.TimeLimit > 0 {
		deadline := start.Add(in.TimeLimit)
		expired := func() bool { return !now().Before(deadline) }

		converged, err := p.improve(ctx, routes, expired)
		if err != nil {
			return nil, err
		}
		if !converged {
			status = domain.StatusPartialSuccess
		}
	}

	return &domain.RouteAssignment{Routes: routes, Status: status}, nil
}

func validate(in domain.SolverInput) error {
	n := len(in.Demands)
	if n == 0 {
		return errors.New("solve: no nodes")
	}
	if in.NumVehicles <= 0 || in.NumVehicles != len(in.VehicleCapacities) {
		return fmt.Errorf(
			"solve: vehicle count %d does not match %d capacities",
			in.NumVehicles, len(in.VehicleCapacities),
		)
	}
	if in.Depot < 0 || in.Depot >= n {
		return fmt.Errorf("solve: depot index %d out of range", in.Depot)
	}
	if err := in.DistanceMatrix.Validate(n); err != nil {
		return fmt.Errorf("solve: %w", err)
	}
	for i, d := range in.Demands {
		if d < 0 {
			return fmt.Errorf("solve: negative demand %v at node %d", d, i)
		}
	}
	for v, c := range in.VehicleCapacities {
		if c < 0 {
			return fmt.Errorf("solve: negative capacity %v for vehicle %d", c, v)
		}
	}
	return nil
}

type problem struct {
	in    domain.SolverInput
	n     int
	depot int
}

func newProblem(in domain.SolverInput) *problem {
	return &problem{in: in, n: len(in.Demands), depot: in.Depot}
}

func (p *problem) cost(v, from, to int) int {
	return p.in.ArcCost(v, from, to)
}

func (p *problem) fits(v int, load, demand float64) bool {
	return load+demand <= p.in.VehicleCapacities[v]+capacityEpsilon
}

func (p *problem) routeCost(v int, route []int) int {
	total := 0
	for i := 0; i+1 < len(route); i++ {
		total += p.cost(v, route[i], route[i+1])
	}
	return total
}

func (p *problem) routeLoad(route []int) float64 {
	load := 0.0
	for _, node := range route {
		load += p.in.Demands[node]
	}
	return load
}

func (p *problem) customers() []int {
	out := make([]int, 0, p.n-1)
	for i := 0; i < p.n; i++ {
		if i != p.depot {
			out = append(out, i)
		}
	}
	return out
}

// construct returns one depot-to-depot route per vehicle, or false when the
// demands cannot be packed into the fleet.
func (p *problem) construct() ([][]int, bool) {
	if routes, ok := p.cheapestArc(); ok {
		return routes, true
	}
	return p.bestFitDecreasing()
}

func (p *problem) cheapestArc() ([][]int, bool) {
	visited := make([]bool, p.n)
	visited[p.depot] = true
	remaining := p.n - 1

	routes := make([][]int, p.in.NumVehicles)
	for v := range routes {
		route := []int{p.depot}
		load := 0.0
		current := p.depot

		for remaining > 0 {
			next := -1
			best := 0
			for j := 0; j < p.n; j++ {
				if visited[j] || !p.fits(v, load, p.in.Demands[j]) {
					continue
				}
				c := p.cost(v, current, j)
				if next == -1 || c < best {
					next, best = j, c
				}
			}
			if next == -1 {
				break
			}
			visited[next] = true
			remaining--
			load += p.in.Demands[next]
			route = append(route, next)
			current = next
		}

		routes[v] = append(route, p.depot)
	}

	return routes, remaining == 0
}

func (p *problem) bestFitDecreasing() ([][]int, bool) {
	order := p.customers()
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case p.in.Demands[a] > p.in.Demands[b]:
			return -1
		case p.in.Demands[a] < p.in.Demands[b]:
			return 1
		default:
			return 0
		}
	})

	loads := make([]float64, p.in.NumVehicles)
	members := make([][]int, p.in.NumVehicles)
	for _, node := range order {
		d := p.in.Demands[node]
		bin := -1
		bestSlack := 0.0
		for v := range loads {
			if !p.fits(v, loads[v], d) {
				continue
			}
			slack := p.in.VehicleCapacities[v] - loads[v] - d
			if bin == -1 || slack < bestSlack {
				bin, bestSlack = v, slack
			}
		}
		if bin == -1 {
			return nil, false
		}
		loads[bin] += d
		members[bin] = append(members[bin], node)
	}

	routes := make([][]int, p.in.NumVehicles)
	for v, nodes := range members {
		routes[v] = p.nearestOrder(v, nodes)
	}
	return routes, true
}

// nearestOrder sequences nodes greedily from the depot and closes the route.
func (p *problem) nearestOrder(v int, nodes []int) []int {
	left := slices.Clone(nodes)
	route := make([]int, 0, len(nodes)+2)
	route = append(route, p.depot)
	current := p.depot

	for len(left) > 0 {
		bi := 0
		for i := 1; i < len(left); i++ {
			if p.cost(v, current, left[i]) < p.cost(v, current, left[bi]) {
				bi = i
			}
		}
		current = left[bi]
		route = append(route, current)
		left = slices.Delete(left, bi, bi+1)
	}

	return append(route, p.depot)
}
