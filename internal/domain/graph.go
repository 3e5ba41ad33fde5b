package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// DepotIndex is the node index of the depot in every graph.
const DepotIndex = 0

// Graph is the solver-ready node list of a batch.
// Locations[0] is the depot with Demands[0] == 0; both slices are positionally aligned.
type Graph struct {
	Locations []string
	Demands   []float64
}

// Len returns the number of nodes, depot included.
func (g Graph) Len() int { return len(g.Locations) }

// TotalDemand sums the demand of every node.
func (g Graph) TotalDemand() float64 {
	total := 0.0
	for _, d := range g.Demands {
		total += d
	}
	return total
}

// NormalizeLocation turns a postcode or address into a location token:
// whitespace is collapsed and the result is query-escaped, so "LS2 9JT" becomes "LS2+9JT".
func NormalizeLocation(s string) string {
	return url.QueryEscape(strings.Join(strings.Fields(s), " "))
}

// DistanceMatrix holds travel cost in meters: m[i][j] is the cost from location i to location j.
type DistanceMatrix [][]int

// Validate checks that the matrix is square with dimension n and has no negative entries.
func (m DistanceMatrix) Validate(n int) error {
	if len(m) != n {
		return fmt.Errorf("distance matrix: got %d rows, want %d", len(m), n)
	}
	for i, row := range m {
		if len(row) != n {
			return fmt.Errorf("distance matrix: row %d has %d columns, want %d", i, len(row), n)
		}
		for j, v := range row {
			if v < 0 {
				return fmt.Errorf("distance matrix: negative cost %d at [%d][%d]", v, i, j)
			}
		}
	}
	return nil
}
