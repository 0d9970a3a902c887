// Package mempool provides typed object pools for hot paths that should not
// touch the garbage collector on every allocation.
//
// Two allocators are available:
//
//   - ObjectPool carves slots out of fixed-size blocks and keeps a plain free
//     list. It is not safe for concurrent use.
//   - LockFree keeps a lock-free free list and may be shared by any number of
//     goroutines.
//
// Both pools grow on demand and never shrink. Neither runs constructors:
// storage handed out may hold a previous user's value.
//
// # Basic Usage
//
//	p, _ := mempool.NewObjectPool[Order](mempool.WithBlockSize(16 << 10))
//	o, err := p.New(func(o *Order) error {
//	    o.ID = nextID()
//	    return nil
//	})
//	if err != nil {
//	    return err
//	}
//	defer p.Destroy(o)
//
// # Concurrent Use
//
//	free := mempool.NewLockFree[Order](1024)
//	o := free.Allocate()
//	*o = Order{ID: nextID()}
//	free.Deallocate(o)
package mempool
