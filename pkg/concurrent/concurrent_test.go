package concurrent

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/composer/pkg/sequence"
)

func TestConcurrent_RunsAll(t *testing.T) {
	var sum atomic.Int64
	err := Concurrent(context.Background(), sequence.From([]int64{1, 2, 3, 4}), 2, func(_ context.Context, v int64) error {
		sum.Add(v)
		return nil
	})
	require.NoError(t, err)
	assert.EqualValues(t, 10, sum.Load())
}

func TestConcurrent_ReturnsError(t *testing.T) {
	boom := errors.New("boom")
	err := Concurrent(context.Background(), sequence.From([]int{1, 2, 3}), 0, func(_ context.Context, v int) error {
		if v == 2 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestMap_PreservesOrder(t *testing.T) {
	out, err := Map(context.Background(), sequence.From([]string{"a", "bb", "ccc"}), 0, func(_ context.Context, s string) (int, error) {
		return len(s), nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, out)
}

func TestMap_DiscardsOnError(t *testing.T) {
	out, err := Map(context.Background(), sequence.From([]int{1, 2}), 1, func(_ context.Context, v int) (int, error) {
		if v == 2 {
			return 0, errors.New("bad")
		}
		return v, nil
	})
	require.Error(t, err)
	assert.Nil(t, out)
}
