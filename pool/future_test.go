package pool

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuture_Get(t *testing.T) {
	t.Run("successful result", func(t *testing.T) {
		future := newFuture[string]()

		go func() {
			time.Sleep(50 * time.Millisecond)
			future.complete("success", nil)
		}()

		value, err := future.Get()
		require.NoError(t, err)
		assert.Equal(t, "success", value)
	})

	t.Run("error result", func(t *testing.T) {
		future := newFuture[string]()
		expectedErr := errors.New("task failed")

		go future.complete("", expectedErr)

		value, err := future.Get()
		assert.Same(t, expectedErr, err)
		assert.Empty(t, value)
	})

	t.Run("multiple Get calls return same result", func(t *testing.T) {
		future := newFuture[int]()
		future.complete(123, nil)

		v1, err1 := future.Get()
		v2, err2 := future.Get()

		assert.Equal(t, v1, v2)
		assert.Equal(t, err1, err2)
	})

	t.Run("only the first completion counts", func(t *testing.T) {
		future := newFuture[int]()
		future.complete(1, nil)
		future.complete(2, errors.New("late"))

		v, err := future.Get()
		assert.NoError(t, err)
		assert.Equal(t, 1, v)
	})

	t.Run("concurrent readers all see the result", func(t *testing.T) {
		future := newFuture[int]()

		var wg sync.WaitGroup
		results := make([]int, 10)
		for i := range results {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i], _ = future.Get()
			}()
		}

		future.complete(42, nil)
		wg.Wait()

		for _, r := range results {
			assert.Equal(t, 42, r)
		}
	})
}

func TestFuture_IsReady(t *testing.T) {
	future := newFuture[int]()
	assert.False(t, future.IsReady())

	future.complete(1, nil)
	assert.True(t, future.IsReady())
}

func TestFuture_Done(t *testing.T) {
	future := newFuture[int]()

	select {
	case <-future.Done():
		t.Fatal("Done closed before completion")
	default:
	}

	go future.complete(7, nil)

	select {
	case <-future.Done():
	case <-time.After(time.Second):
		t.Fatal("Done not closed after completion")
	}

	res := future.Result()
	assert.Equal(t, Result[int]{Value: 7}, res)
}

func TestPanicError(t *testing.T) {
	t.Run("unwraps error values", func(t *testing.T) {
		sentinel := errors.New("sentinel")
		err := &PanicError{Value: sentinel, Stack: []byte("stack")}

		assert.ErrorIs(t, err, sentinel)
		assert.Contains(t, err.Error(), "worker panic: sentinel")
		assert.Contains(t, err.Error(), "stack")
	})

	t.Run("non-error values do not unwrap", func(t *testing.T) {
		err := &PanicError{Value: "boom"}
		assert.Nil(t, err.Unwrap())
	})
}
