package distance

import (
	"context"
	"fmt"
	"sync"
	"vrp-solver-service/internal/domain"
)

type MockPair struct {
	From, To string
	Meters   int
}

// MockMatrixProvider serves distances from a fixed table of pairs.
// Self-distances default to zero. It records how many matrices were requested.
type MockMatrixProvider struct {
	m     map[string]int
	mu    sync.Mutex
	calls int
}

func NewMockMatrixProvider(pairs []MockPair) *MockMatrixProvider {
	m := make(map[string]int, len(pairs))
	for _, p := range pairs {
		m[p.From+"|"+p.To] = p.Meters
	}
	return &MockMatrixProvider{m: m}
}

func (p *MockMatrixProvider) ComputeMatrix(ctx context.Context, locations []string) (domain.DistanceMatrix, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	out := make(domain.DistanceMatrix, len(locations))
	for i, from := range locations {
		out[i] = make([]int, len(locations))
		for j, to := range locations {
			if from == to {
				continue
			}
			v, ok := p.m[from+"|"+to]
			if !ok {
				return nil, &domain.UpstreamError{
					Chunk:       0,
					FirstOrigin: i,
					LastOrigin:  i,
					Err:         fmt.Errorf("missing pair %q -> %q", from, to),
				}
			}
			out[i][j] = v
		}
	}

	return out, nil
}

// Calls returns the number of ComputeMatrix invocations.
func (p *MockMatrixProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
