package distance

import (
	"fmt"
	"vrp-solver-service/internal/domain"
)

// maxOriginRows returns how many origin rows fit in one request when every request
// carries all n destinations. n above maxElements leaves no room for a single row.
func maxOriginRows(n, maxElements int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("max origin rows: location count must be positive, got %d", n)
	}
	rows := maxElements / n
	if rows == 0 {
		return 0, fmt.Errorf(
			"%w: %d locations need %d elements per origin row, limit is %d",
			domain.ErrTooManyLocations, n, n, maxElements,
		)
	}
	return rows, nil
}

// chunkOrigins splits origin indices into consecutive groups of at most size.
// The last group holds the remainder and is kept even when shorter.
func chunkOrigins(origins []int, size int) [][]int {
	if size <= 0 || len(origins) == 0 {
		return nil
	}

	chunks := make([][]int, 0, (len(origins)+size-1)/size)
	for start := 0; start < len(origins); start += size {
		end := start + size
		if end > len(origins) {
			end = len(origins)
		}
		chunks = append(chunks, origins[start:end])
	}
	return chunks
}
