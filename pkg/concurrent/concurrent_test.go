package concurrent

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRanges(t *testing.T) {
	assert.Nil(t, Ranges(0, 4))
	assert.Equal(t, [][2]int{{0, 3}}, Ranges(3, 0))
	assert.Equal(t, [][2]int{{0, 1}, {1, 2}}, Ranges(2, 8))
	assert.Equal(t, [][2]int{{0, 4}, {4, 7}, {7, 10}}, Ranges(10, 3))
}

func TestChunkedCoversEveryIndexOnce(t *testing.T) {
	const n = 1000
	var hits [n]atomic.Int32

	err := Chunked(context.Background(), n, 7, func(_ context.Context, _, lo, hi int) error {
		for i := lo; i < hi; i++ {
			hits[i].Add(1)
		}
		return nil
	})
	require.NoError(t, err)

	for i := range hits {
		assert.Equal(t, int32(1), hits[i].Load(), "index %d", i)
	}
}

func TestChunkedReturnsError(t *testing.T) {
	boom := errors.New("boom")
	err := Chunked(context.Background(), 10, 5, func(_ context.Context, chunk, _, _ int) error {
		if chunk == 3 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
}
