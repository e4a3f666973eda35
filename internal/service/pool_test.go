package service

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jaehyun/stocklens/internal/domain"
)

func TestPoolRunsSubmittedTasks(t *testing.T) {
	p := newWorkerPool(2, 4, 32)

	var ran int32
	for i := 0; i < 20; i++ {
		if err := p.TrySubmit(func() { atomic.AddInt32(&ran, 1) }); err != nil {
			t.Fatalf("submit %d rejected: %v", i, err)
		}
	}

	p.Shutdown()

	if got := atomic.LoadInt32(&ran); got != 20 {
		t.Errorf("tasks ran = %d, want 20", got)
	}
}

func TestPoolExpandsThenRejects(t *testing.T) {
	p := newWorkerPool(1, 2, 1)

	block := make(chan struct{})
	running := make(chan struct{}, 4)
	busy := func() {
		running <- struct{}{}
		<-block
	}

	// Occupy the single core worker.
	if err := p.TrySubmit(busy); err != nil {
		t.Fatalf("first submit rejected: %v", err)
	}
	<-running

	// Fill the one queue slot.
	if err := p.TrySubmit(busy); err != nil {
		t.Fatalf("second submit rejected: %v", err)
	}

	// Queue full: this one must expand to the extra worker instead of failing.
	if err := p.TrySubmit(busy); err != nil {
		t.Fatalf("expanding submit rejected: %v", err)
	}
	<-running

	// Core busy, extra busy, queue full: saturation.
	err := p.TrySubmit(func() {})
	if !errors.Is(err, domain.ErrPoolSaturated) {
		t.Errorf("saturated submit error = %v, want ErrPoolSaturated", err)
	}

	close(block)
	p.Shutdown()
}

func TestPoolRejectsAfterShutdown(t *testing.T) {
	p := newWorkerPool(1, 1, 1)
	p.Shutdown()

	if err := p.TrySubmit(func() {}); !errors.Is(err, domain.ErrPoolSaturated) {
		t.Errorf("submit after shutdown error = %v, want ErrPoolSaturated", err)
	}
}

// Submissions racing a shutdown must either run or get ErrPoolSaturated,
// never panic on the closed task channel.
func TestPoolSubmitDuringShutdown(t *testing.T) {
	for i := 0; i < 25; i++ {
		p := newWorkerPool(2, 4, 8)

		var wg sync.WaitGroup
		for g := 0; g < 4; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					if err := p.TrySubmit(func() {}); err != nil && !errors.Is(err, domain.ErrPoolSaturated) {
						t.Errorf("submit error = %v, want nil or ErrPoolSaturated", err)
						return
					}
				}
			}()
		}

		p.Shutdown()
		wg.Wait()
	}
}

func TestPoolShutdownDrainsQueue(t *testing.T) {
	p := newWorkerPool(1, 1, 4)

	gate := make(chan struct{})
	var ran int32
	if err := p.TrySubmit(func() { <-gate; atomic.AddInt32(&ran, 1) }); err != nil {
		t.Fatalf("submit rejected: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := p.TrySubmit(func() { atomic.AddInt32(&ran, 1) }); err != nil {
			t.Fatalf("submit %d rejected: %v", i, err)
		}
	}

	done := make(chan struct{})
	go func() {
		p.Shutdown()
		close(done)
	}()
	close(gate)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Shutdown did not drain the queue")
	}
	if got := atomic.LoadInt32(&ran); got != 4 {
		t.Errorf("tasks ran = %d, want 4", got)
	}
}
