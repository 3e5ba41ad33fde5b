package services

import (
	"context"
	"fmt"
	"sync"
	"vrp-solver-service/internal/domain"
	"vrp-solver-service/internal/ports"
)

type fakeBatchRepo struct {
	batches   map[string]*domain.Batch
	customers map[string][]*domain.Customer
}

func newFakeBatchRepo() *fakeBatchRepo {
	return &fakeBatchRepo{
		batches:   map[string]*domain.Batch{},
		customers: map[string][]*domain.Customer{},
	}
}

// add registers a batch whose customers sit at the given postcodes with the given demands.
func (r *fakeBatchRepo) add(name string, postcodes []string, demands []float64) *domain.Batch {
	b := &domain.Batch{ID: len(r.batches) + 1, Name: name}
	r.batches[name] = b
	for i, pc := range postcodes {
		r.customers[name] = append(r.customers[name], &domain.Customer{
			ID:        100*b.ID + i,
			Address:   domain.Address{ID: 100*b.ID + i, ZipPostcode: pc},
			Demand:    demands[i],
			BatchID:   b.ID,
			BatchName: name,
		})
	}
	return b
}

func (r *fakeBatchRepo) GetBatchByName(_ context.Context, name string) (*domain.Batch, error) {
	b, ok := r.batches[name]
	if !ok {
		return nil, fmt.Errorf("get batch %q: %w", name, domain.ErrBatchNotFound)
	}
	return b, nil
}

func (r *fakeBatchRepo) ListBatches(context.Context) ([]*domain.Batch, error) {
	out := make([]*domain.Batch, 0, len(r.batches))
	for _, b := range r.batches {
		out = append(out, b)
	}
	return out, nil
}

func (r *fakeBatchRepo) ListCustomersByBatch(ctx context.Context, name string) ([]*domain.Customer, error) {
	if _, err := r.GetBatchByName(ctx, name); err != nil {
		return nil, err
	}
	return r.customers[name], nil
}

func (r *fakeBatchRepo) ListCustomers(context.Context) ([]*domain.Customer, error) {
	var out []*domain.Customer
	for _, cs := range r.customers {
		out = append(out, cs...)
	}
	return out, nil
}

func (r *fakeBatchRepo) ListAddresses(context.Context) ([]*domain.Address, error) {
	return nil, nil
}

type fakeVehicleRepo struct {
	vehicles []*domain.Vehicle
}

func (r *fakeVehicleRepo) ListVehicles(_ context.Context, available *bool) ([]*domain.Vehicle, error) {
	out := make([]*domain.Vehicle, 0, len(r.vehicles))
	for _, v := range r.vehicles {
		if available == nil || v.Available == *available {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *fakeVehicleRepo) GetVehicle(_ context.Context, id int) (*domain.Vehicle, error) {
	for _, v := range r.vehicles {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, domain.ErrVehicleNotFound
}

func fleet(capacities ...float64) *fakeVehicleRepo {
	r := &fakeVehicleRepo{}
	for i, c := range capacities {
		r.vehicles = append(r.vehicles, &domain.Vehicle{
			ID:                 i + 1,
			RegistrationNumber: fmt.Sprintf("V%d", i+1),
			Capacity:           c,
			Available:          true,
		})
	}
	return r
}

type fakeSolutionRepo struct {
	mu      sync.Mutex
	upserts int
	byBatch map[int]*domain.Solution
}

func newFakeSolutionRepo() *fakeSolutionRepo {
	return &fakeSolutionRepo{byBatch: map[int]*domain.Solution{}}
}

func (r *fakeSolutionRepo) UpsertSolution(_ context.Context, s *domain.Solution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	cp := *s
	r.byBatch[s.BatchID] = &cp
	return nil
}

func (r *fakeSolutionRepo) GetSolutionByBatch(_ context.Context, name string) (*domain.Solution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.byBatch {
		if s.BatchName == name {
			return s, nil
		}
	}
	return nil, domain.ErrSolutionNotFound
}

// countingSolver records invocations of the wrapped solver.
type countingSolver struct {
	inner ports.Solver
	calls int
}

func (s *countingSolver) Solve(ctx context.Context, in domain.SolverInput) (*domain.RouteAssignment, error) {
	s.calls++
	return s.inner.Solve(ctx, in)
}
