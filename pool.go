package swingkit

import (
	"sync"
)

// Pool is a simple analyzer pool for hosts batch processing many captured
// swings concurrently.  Analyses share nothing mutable, the pool only
// bounds the number of runs in flight.
type Pool struct {
	// pool of analyzers
	analyzers chan *Analyzer
	// size of pool
	size int

	mu     sync.Mutex
	closed bool
}

// NewPool creates a new analyzer pool with every analyzer configured from
// the same parameter set
func NewPool(size int, params AnalyzerParams) *Pool {

	p := &Pool{
		analyzers: make(chan *Analyzer, size),
		size:      size,
	}

	for i := 0; i < size; i++ {
		p.Return(NewAnalyzer(params))
	}

	return p
}

// Get an analyzer from the pool, blocking until one is available.  Returns
// nil once the pool has been closed.
func (p *Pool) Get() *Analyzer {
	return <-p.analyzers
}

// Return an analyzer to the pool.  Returning to a full or closed pool is a
// no-op.
func (p *Pool) Return(a *Analyzer) {

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	select {
	case p.analyzers <- a:
	default:
		// pool is full
	}
}

// Close the pool
func (p *Pool) Close() {

	p.mu.Lock()

	if p.closed {
		p.mu.Unlock()
		return
	}

	p.closed = true
	p.mu.Unlock()

	close(p.analyzers)

	// drain any analyzers left in the pool
	for range p.analyzers {
	}
}
