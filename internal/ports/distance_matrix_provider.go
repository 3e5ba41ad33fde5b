package ports

import (
	"context"
	"vrp-solver-service/internal/domain"
)

// Contract for building a full distance matrix over an ordered location list.
type DistanceMatrixProvider interface {
	// Return the square matrix whose row i and column j follow locations[i] and locations[j].
	// Provider failures are reported as *domain.UpstreamError.
	ComputeMatrix(ctx context.Context, locations []string) (domain.DistanceMatrix, error)
}

// Cache of origin->destination distances in meters.
// Keys are location tokens and are expected to be normalized by the caller.
type DistanceCache interface {
	GetMany(ctx context.Context, origin string, destinations []string) (map[string]int, error)
	PutMany(ctx context.Context, origin string, results map[string]int) error
}
