package events

import (
	"context"
	"runtime"
	"sync"
)

// Executor runs background units. Go reports false when the unit was refused
// and will never run.
type Executor interface {
	Go(fn func()) bool
}

// Pool is a bounded goroutine executor. Units queue for a free slot rather
// than being dropped.
type Pool struct {
	slots chan struct{}
	wg    sync.WaitGroup
	mu    sync.Mutex
	done  bool
}

// NewPool creates a pool running at most size units at once.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	slots := make(chan struct{}, size)
	for i := 0; i < size; i++ {
		slots <- struct{}{}
	}
	return &Pool{slots: slots}
}

// Go schedules fn. After Shutdown, fn is refused.
func (p *Pool) Go(fn func()) bool {
	p.mu.Lock()
	if p.done {
		p.mu.Unlock()
		return false
	}
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		<-p.slots
		defer func() { p.slots <- struct{}{} }()
		fn()
	}()
	return true
}

// Size returns the concurrency limit.
func (p *Pool) Size() int {
	return cap(p.slots)
}

// Wait blocks until all scheduled units have finished or ctx is done.
func (p *Pool) Wait(ctx context.Context) error {
	finished := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting work and waits for in-flight units.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	p.done = true
	p.mu.Unlock()
	return p.Wait(ctx)
}
