package service

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/jaehyun/stocklens/internal/domain"
)

// extraWorkerIdle is how long an expanded worker waits for more work before
// exiting and shrinking the pool back toward its core size.
const extraWorkerIdle = 30 * time.Second

// workerPool is a bounded task executor: a fixed set of core workers, a bounded
// queue, and on-demand extra workers up to a maximum. When the queue is full and
// the pool is at its maximum, submissions are rejected immediately so callers
// are never blocked behind OCR latency.
type workerPool struct {
	tasks chan func()
	core  int
	max   int

	extra int32 // current extra workers beyond core
	wg    sync.WaitGroup

	// mu orders submissions against close(tasks): Shutdown takes the write
	// lock, so no TrySubmit can be mid-send when the channel closes.
	mu     sync.RWMutex
	closed bool
}

// newWorkerPool starts core permanent workers over a queue of queueSize slots.
func newWorkerPool(core, max, queueSize int) *workerPool {
	if core < 1 {
		core = 1
	}
	if max < core {
		max = core
	}
	p := &workerPool{
		tasks: make(chan func(), queueSize),
		core:  core,
		max:   max,
	}
	for i := 0; i < core; i++ {
		p.wg.Add(1)
		go p.coreWorker()
	}
	return p
}

// TrySubmit enqueues a task or rejects it with domain.ErrPoolSaturated. It never
// blocks the caller.
func (p *workerPool) TrySubmit(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return domain.ErrPoolSaturated
	}

	select {
	case p.tasks <- task:
		return nil
	default:
	}

	// Queue full: expand up to max before rejecting
	for {
		n := atomic.LoadInt32(&p.extra)
		if int(n) >= p.max-p.core {
			return domain.ErrPoolSaturated
		}
		if atomic.CompareAndSwapInt32(&p.extra, n, n+1) {
			p.wg.Add(1)
			go p.extraWorker(task)
			return nil
		}
	}
}

// Shutdown stops accepting work and waits for queued tasks to drain.
func (p *workerPool) Shutdown() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.tasks)
	}
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *workerPool) coreWorker() {
	defer p.wg.Done()
	for task := range p.tasks {
		task()
	}
}

// extraWorker runs its seed task, then keeps draining the queue until it has
// been idle long enough to retire.
func (p *workerPool) extraWorker(task func()) {
	defer p.wg.Done()
	defer atomic.AddInt32(&p.extra, -1)

	task()

	idle := time.NewTimer(extraWorkerIdle)
	defer idle.Stop()
	for {
		select {
		case next, ok := <-p.tasks:
			if !ok {
				return
			}
			next()
			if !idle.Stop() {
				<-idle.C
			}
			idle.Reset(extraWorkerIdle)
		case <-idle.C:
			return
		}
	}
}
