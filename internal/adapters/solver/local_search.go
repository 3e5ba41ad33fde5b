package solver

import (
	"context"
	"slices"
)

// improve applies improving moves in place until a full pass finds none (converged)
// or expired reports true. Cancellation of ctx aborts with its error.
func (p *problem) improve(ctx context.Context, routes [][]int, expired func() bool) (bool, error) {
	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if expired() {
			return false, nil
		}

		improved := false
		for v := range routes {
			if p.twoOpt(v, routes, expired) {
				improved = true
			}
		}
		if p.relocate(routes, expired) {
			improved = true
		}

		if !improved {
			return true, nil
		}
	}
}

// twoOpt reverses segments of one route while that lowers its cost.
// Costs may be asymmetric, so candidate routes are re-costed in full.
func (p *problem) twoOpt(v int, routes [][]int, expired func() bool) bool {
	route := routes[v]
	// [depot, a, b, depot] is the shortest route with a segment to reverse.
	if len(route) < 4 {
		return false
	}

	improved := false
	bestCost := p.routeCost(v, route)
	for i := 1; i < len(route)-2; i++ {
		if expired() {
			break
		}
		for k := i + 1; k < len(route)-1; k++ {
			candidate := twoOptSwap(route, i, k)
			if c := p.routeCost(v, candidate); c < bestCost {
				route, bestCost = candidate, c
				improved = true
			}
		}
	}

	routes[v] = route
	return improved
}

func twoOptSwap(route []int, i, k int) []int {
	out := slices.Clone(route)
	slices.Reverse(out[i : k+1])
	return out
}

// relocate moves single nodes to another vehicle when capacity allows and the total cost drops.
func (p *problem) relocate(routes [][]int, expired func() bool) bool {
	loads := make([]float64, len(routes))
	for v, r := range routes {
		loads[v] = p.routeLoad(r)
	}

	improved := false
	for a := range routes {
		for i := 1; i < len(routes[a])-1; i++ {
			if expired() {
				return improved
			}

			src := routes[a]
			node := src[i]
			d := p.in.Demands[node]
			removeGain := p.cost(a, src[i-1], node) + p.cost(a, node, src[i+1]) - p.cost(a, src[i-1], src[i+1])

			bestB, bestJ, bestDelta := -1, 0, 0
			for b := range routes {
				if b == a || !p.fits(b, loads[b], d) {
					continue
				}
				dst := routes[b]
				for j := 1; j < len(dst); j++ {
					insertCost := p.cost(b, dst[j-1], node) + p.cost(b, node, dst[j]) - p.cost(b, dst[j-1], dst[j])
					if delta := insertCost - removeGain; delta < bestDelta {
						bestB, bestJ, bestDelta = b, j, delta
					}
				}
			}
			if bestB == -1 {
				continue
			}

			routes[a] = slices.Delete(slices.Clone(src), i, i+1)
			routes[bestB] = slices.Insert(slices.Clone(routes[bestB]), bestJ, node)
			loads[a] -= d
			loads[bestB] += d
			improved = true
			i--
		}
	}

	return improved
}
