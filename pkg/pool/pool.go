// Package pool provides a small worker pool used to parallelize the
// independent, CPU-bound exponentiations that dominate Paillier key
// generation and batched ZK proof verification. It mirrors the
// teacher's pkg/pool.Pool.
package pool

import (
	"runtime"
	"sync"
)

// Pool runs a fixed number of worker goroutines.
type Pool struct {
	workers int
}

// NewPool creates a Pool with the given number of workers. A count <= 0
// defaults to runtime.NumCPU().
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{workers: workers}
}

// Parallelize calls f(i) for i in [0, n) across the pool's workers and
// returns the results in order.
func (p *Pool) Parallelize(n int, f func(i int) interface{}) []interface{} {
	out := make([]interface{}, n)
	if p == nil || p.workers <= 1 || n <= 1 {
		for i := 0; i < n; i++ {
			out[i] = f(i)
		}
		return out
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, p.workers)
	for i := 0; i < n; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			out[i] = f(i)
		}(i)
	}
	wg.Wait()
	return out
}

// Search runs f repeatedly (in parallel across the pool) until it
// returns a non-nil result, then cancels the remaining workers. Used by
// Paillier prime generation, where many candidates are tried and only
// the first valid one matters.
func (p *Pool) Search(f func() interface{}) interface{} {
	workers := p.workers
	if workers <= 0 {
		workers = 1
	}
	resultCh := make(chan interface{}, workers)
	done := make(chan struct{})
	var once sync.Once
	for i := 0; i < workers; i++ {
		go func() {
			for {
				select {
				case <-done:
					return
				default:
				}
				if r := f(); r != nil {
					once.Do(func() { resultCh <- r })
					return
				}
			}
		}()
	}
	result := <-resultCh
	close(done)
	return result
}
