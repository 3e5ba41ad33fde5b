package services

import (
	"context"
	"fmt"
	"vrp-solver-service/internal/domain"
	"vrp-solver-service/internal/platform/obs"
	"vrp-solver-service/internal/ports"
)

// GraphBuilder turns the customers of a batch into a solver-ready node list.
type GraphBuilder struct {
	batches ports.BatchRepository
	depot   string
}

// NewGraphBuilder returns a builder anchored at the given depot postcode or address.
func NewGraphBuilder(batches ports.BatchRepository, depot string) *GraphBuilder {
	return &GraphBuilder{batches: batches, depot: domain.NormalizeLocation(depot)}
}

// Depot returns the normalized depot token.
func (b *GraphBuilder) Depot() string { return b.depot }

// BuildGraph emits the depot at index 0 with demand 0, then one node per customer.
// Customers whose location token equals the depot token are skipped.
// A batch that yields no customer node fails with domain.ErrNoCustomers.
func (b *GraphBuilder) BuildGraph(ctx context.Context, batchName string) (_ domain.Graph, err error) {
	defer obs.Time(ctx, "services.BuildGraph")(&err)

	customers, err := b.batches.ListCustomersByBatch(ctx, batchName)
	if err != nil {
		return domain.Graph{}, fmt.Errorf("build graph: list customers: %w", err)
	}

	g := domain.Graph{
		Locations: make([]string, 0, len(customers)+1),
		Demands:   make([]float64, 0, len(customers)+1),
	}
	g.Locations = append(g.Locations, b.depot)
	g.Demands = append(g.Demands, 0)

	for _, c := range customers {
		token := domain.NormalizeLocation(c.Address.ZipPostcode)
		if token == "" {
			return domain.Graph{}, fmt.Errorf("build graph: customer %d has an empty postcode", c.ID)
		}
		if token == b.depot {
			continue
		}
		if c.Demand < 0 {
			return domain.Graph{}, fmt.Errorf("build graph: customer %d has negative demand %v", c.ID, c.Demand)
		}

		g.Locations = append(g.Locations, token)
		g.Demands = append(g.Demands, c.Demand)
	}

	if g.Len() < 2 {
		return domain.Graph{}, fmt.Errorf("build graph %q: %w", batchName, domain.ErrNoCustomers)
	}

	return g, nil
}
