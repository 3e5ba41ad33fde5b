package ports

import (
	"context"
	"vrp-solver-service/internal/domain"
)

// Port: read access to batches and the customers they group.
type BatchRepository interface {
	// Return the batch with the given name, or domain.ErrBatchNotFound.
	GetBatchByName(ctx context.Context, name string) (*domain.Batch, error)
	ListBatches(ctx context.Context) ([]*domain.Batch, error)
	// Return every customer of the named batch, ordered by customer id.
	ListCustomersByBatch(ctx context.Context, batchName string) ([]*domain.Customer, error)
	ListCustomers(ctx context.Context) ([]*domain.Customer, error)
	ListAddresses(ctx context.Context) ([]*domain.Address, error)
}

// Port: read access to the fleet.
type VehicleRepository interface {
	// Return vehicles, optionally filtered by availability, ordered by id.
	ListVehicles(ctx context.Context, available *bool) ([]*domain.Vehicle, error)
	// Return the vehicle with the given id, or domain.ErrVehicleNotFound.
	GetVehicle(ctx context.Context, id int) (*domain.Vehicle, error)
}

// Port: persistence of solve results.
type SolutionRepository interface {
	// Create or replace the single solution of the batch.
	UpsertSolution(ctx context.Context, s *domain.Solution) error
	// Return the solution of the named batch, or domain.ErrSolutionNotFound.
	GetSolutionByBatch(ctx context.Context, batchName string) (*domain.Solution, error)
}
