package distance

import (
	"testing"
	"vrp-solver-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaxOriginRows(t *testing.T) {
	rows, err := maxOriginRows(20, 100)
	require.NoError(t, err)
	assert.Equal(t, 5, rows)

	rows, err = maxOriginRows(100, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, rows)

	_, err = maxOriginRows(150, 100)
	require.ErrorIs(t, err, domain.ErrTooManyLocations)

	_, err = maxOriginRows(0, 100)
	require.Error(t, err)
}

func TestChunkOrigins(t *testing.T) {
	origins := []int{0, 1, 2, 3, 4, 5, 6}

	assert.Equal(t, [][]int{{0, 1, 2}, {3, 4, 5}, {6}}, chunkOrigins(origins, 3))
	assert.Equal(t, [][]int{{0, 1, 2, 3, 4, 5, 6}}, chunkOrigins(origins, 7))
	assert.Equal(t, [][]int{{0, 1, 2, 3, 4, 5, 6}}, chunkOrigins(origins, 50))
	assert.Nil(t, chunkOrigins(origins, 0))
	assert.Nil(t, chunkOrigins(nil, 3))
}
