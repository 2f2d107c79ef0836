package memory

import (
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
)

// ErrExhausted is returned by Get once the pool's live limit is reached.
var ErrExhausted = errors.New("memory: pool exhausted")

// Pool is a typed object pool with an optional cap on the number of
// objects handed out and not yet returned. A Pool[rbtree.Node] is the
// node allocator for a bounded tree.
type Pool[T any] struct {
	p     sync.Pool
	limit int64
	live  atomic.Int64
}

// NewPool returns a pool that builds objects with ctor. limit <= 0
// means unbounded.
func NewPool[T any](limit int, ctor func() *T) *Pool[T] {
	pool := &Pool[T]{limit: int64(limit)}
	pool.p.New = func() any { return ctor() }
	return pool
}

func (p *Pool[T]) Get() (*T, error) {
	if p.limit > 0 {
		for {
			n := p.live.Load()
			if n >= p.limit {
				return nil, errors.Wrapf(ErrExhausted, "limit %d", p.limit)
			}
			if p.live.CompareAndSwap(n, n+1) {
				break
			}
		}
	} else {
		p.live.Add(1)
	}
	return p.p.Get().(*T), nil
}

// Put returns v. The caller must not use v afterwards.
func (p *Pool[T]) Put(v *T) {
	if v == nil {
		return
	}
	p.live.Add(-1)
	p.p.Put(v)
}

func (p *Pool[T]) Live() int  { return int(p.live.Load()) }
func (p *Pool[T]) Limit() int { return int(p.limit) }
