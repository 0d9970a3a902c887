package mempool

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type order struct {
	ID    int64
	Price float64
	Qty   int32
	Tags  []string
}

func TestNewObjectPool(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		p, err := NewObjectPool[order]()
		require.NoError(t, err)

		want := DefaultBlockSize / int(unsafe.Sizeof(order{}))
		assert.Equal(t, want, p.SlotsPerBlock())
		assert.Equal(t, want, p.Capacity())
		assert.Equal(t, p.Capacity(), p.Available())
	})

	t.Run("initial blocks", func(t *testing.T) {
		p, err := NewObjectPool[int64](WithBlockSize(64), WithInitialBlocks(3))
		require.NoError(t, err)
		assert.Equal(t, 8, p.SlotsPerBlock())
		assert.Equal(t, 24, p.Capacity())
	})

	t.Run("type larger than block", func(t *testing.T) {
		p, err := NewObjectPool[[1024]byte](WithBlockSize(16))
		require.NoError(t, err)
		assert.Equal(t, 1, p.SlotsPerBlock())
	})

	t.Run("zero sized type", func(t *testing.T) {
		p, err := NewObjectPool[struct{}](WithBlockSize(32))
		require.NoError(t, err)
		assert.Equal(t, 32, p.Capacity())
	})

	tests := []struct {
		name    string
		opts    []Option
		wantErr error
	}{
		{"zero block size", []Option{WithBlockSize(0)}, ErrInvalidBlockSize},
		{"negative block size", []Option{WithBlockSize(-1)}, ErrInvalidBlockSize},
		{"initial over max", []Option{WithInitialBlocks(3), WithMaxBlocks(2)}, ErrOutOfMemory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewObjectPool[order](tt.opts...)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, p)
		})
	}
}

func TestObjectPool_AllocateRelease(t *testing.T) {
	p, err := NewObjectPool[order]()
	require.NoError(t, err)

	held := make([]*order, 5)
	for i := range held {
		held[i], err = p.Allocate()
		require.NoError(t, err)
	}
	assert.Equal(t, p.Capacity()-5, p.Available())

	for _, o := range held {
		p.Release(o)
	}
	assert.Equal(t, p.Capacity(), p.Available())
}

func TestObjectPool_DistinctSlots(t *testing.T) {
	p, err := NewObjectPool[int64](WithBlockSize(64))
	require.NoError(t, err)

	seen := make(map[*int64]struct{})
	for range 100 {
		v, err := p.Allocate()
		require.NoError(t, err)
		_, dup := seen[v]
		require.False(t, dup, "slot handed out twice")
		seen[v] = struct{}{}
	}
}

func TestObjectPool_Grows(t *testing.T) {
	p, err := NewObjectPool[int64](WithBlockSize(32))
	require.NoError(t, err)
	require.Equal(t, 4, p.Capacity())

	for range 4 {
		_, err := p.Allocate()
		require.NoError(t, err)
	}
	assert.Zero(t, p.Available())

	_, err = p.Allocate()
	require.NoError(t, err)
	assert.Equal(t, 8, p.Capacity())
	assert.Equal(t, 3, p.Available())
}

func TestObjectPool_MaxBlocks(t *testing.T) {
	p, err := NewObjectPool[int64](WithBlockSize(16), WithMaxBlocks(2))
	require.NoError(t, err)

	for range 4 {
		_, err := p.Allocate()
		require.NoError(t, err)
	}

	v, err := p.Allocate()
	assert.ErrorIs(t, err, ErrOutOfMemory)
	assert.Nil(t, v)
	assert.Equal(t, 4, p.Capacity(), "failed growth must not change capacity")
}

func TestObjectPool_UnlimitedGrowth(t *testing.T) {
	p, err := NewObjectPool[int64](WithBlockSize(8))
	require.NoError(t, err)

	for range 1000 {
		_, err := p.Allocate()
		require.NoError(t, err, "only a block cap makes growth fail")
	}
	assert.Equal(t, 1000, p.Capacity())
	assert.Zero(t, p.Available())
}

func TestObjectPool_New(t *testing.T) {
	t.Run("initialises in place", func(t *testing.T) {
		p, err := NewObjectPool[order]()
		require.NoError(t, err)

		o, err := p.New(func(o *order) error {
			o.ID = 7
			o.Tags = []string{"ioc"}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, int64(7), o.ID)
		assert.Equal(t, p.Capacity()-1, p.Available())
	})

	t.Run("failed init returns the slot", func(t *testing.T) {
		p, err := NewObjectPool[order]()
		require.NoError(t, err)

		errInit := errors.New("bad order")
		o, err := p.New(func(*order) error { return errInit })
		assert.ErrorIs(t, err, errInit)
		assert.Nil(t, o)
		assert.Equal(t, p.Capacity(), p.Available())
	})

	t.Run("panicking init returns the slot", func(t *testing.T) {
		p, err := NewObjectPool[order]()
		require.NoError(t, err)

		assert.PanicsWithValue(t, "boom", func() {
			_, _ = p.New(func(*order) error { panic("boom") })
		})
		assert.Equal(t, p.Capacity(), p.Available())
	})

	t.Run("nil init", func(t *testing.T) {
		p, err := NewObjectPool[order]()
		require.NoError(t, err)

		o, err := p.New(nil)
		require.NoError(t, err)
		assert.NotNil(t, o)
	})

	t.Run("allocation failure", func(t *testing.T) {
		p, err := NewObjectPool[int64](WithBlockSize(8), WithMaxBlocks(1))
		require.NoError(t, err)
		_, err = p.Allocate()
		require.NoError(t, err)

		called := false
		_, err = p.New(func(*int64) error { called = true; return nil })
		assert.ErrorIs(t, err, ErrOutOfMemory)
		assert.False(t, called)
	})
}

func TestObjectPool_Destroy(t *testing.T) {
	p, err := NewObjectPool[order](WithBlockSize(int(unsafe.Sizeof(order{}))))
	require.NoError(t, err)
	require.Equal(t, 1, p.Capacity())

	o, err := p.New(func(o *order) error {
		*o = order{ID: 1, Price: 2.5, Qty: 3, Tags: []string{"a"}}
		return nil
	})
	require.NoError(t, err)

	p.Destroy(o)
	assert.Equal(t, 1, p.Available())

	again, err := p.Allocate()
	require.NoError(t, err)
	assert.Same(t, o, again)
	assert.Equal(t, order{}, *again)
}

func TestObjectPool_ReleaseKeepsContents(t *testing.T) {
	p, err := NewObjectPool[int64](WithBlockSize(8))
	require.NoError(t, err)

	v, err := p.Allocate()
	require.NoError(t, err)
	*v = 42
	p.Release(v)

	again, err := p.Allocate()
	require.NoError(t, err)
	assert.Equal(t, int64(42), *again)
}

func TestObjectPool_NilIsNoop(t *testing.T) {
	p, err := NewObjectPool[order]()
	require.NoError(t, err)

	p.Release(nil)
	p.Destroy(nil)
	assert.Equal(t, p.Capacity(), p.Available())
}

type intConfig map[string]int

func (c intConfig) GetInt(key string, def int) int {
	if v, ok := c[key]; ok {
		return v
	}
	return def
}

func TestOptionsFromConfig(t *testing.T) {
	t.Run("nil store", func(t *testing.T) {
		assert.Nil(t, OptionsFromConfig(nil))
	})

	t.Run("empty store keeps defaults", func(t *testing.T) {
		p, err := NewObjectPool[int64](OptionsFromConfig(intConfig{})...)
		require.NoError(t, err)
		assert.Equal(t, DefaultBlockSize/8, p.Capacity())
	})

	t.Run("values applied", func(t *testing.T) {
		cfg := intConfig{
			ConfigKeyBlockSize:     128,
			ConfigKeyInitialBlocks: 2,
			ConfigKeyMaxBlocks:     2,
		}
		p, err := NewObjectPool[int64](OptionsFromConfig(cfg)...)
		require.NoError(t, err)
		assert.Equal(t, 32, p.Capacity())

		for range 32 {
			_, err := p.Allocate()
			require.NoError(t, err)
		}
		_, err = p.Allocate()
		assert.ErrorIs(t, err, ErrOutOfMemory)
	})
}
