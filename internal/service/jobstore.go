package service

import (
	"sync"
	"time"

	"github.com/jaehyun/stocklens/internal/domain"
)

// janitorInterval is how often expired terminal jobs are swept.
const janitorInterval = time.Minute

// jobStore holds job snapshots keyed by id. Writers replace the whole snapshot
// pointer under the lock, never individual fields, so readers can never observe
// a partially written record. Terminal states are absorbing: an update against a
// completed or failed job is dropped. The store is bounded: terminal jobs expire
// after a TTL and the oldest terminal jobs are evicted when the cap is reached.
type jobStore struct {
	mu   sync.RWMutex
	jobs map[string]*jobEntry

	ttl     time.Duration
	maxJobs int

	stopOnce sync.Once
	stop     chan struct{}
}

type jobEntry struct {
	job       *domain.ReceiptJob
	done      chan struct{} // closed when the job reaches a terminal state
	expiresAt time.Time     // zero until terminal
}

func newJobStore(ttl time.Duration, maxJobs int) *jobStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if maxJobs <= 0 {
		maxJobs = 10000
	}
	s := &jobStore{
		jobs:    make(map[string]*jobEntry),
		ttl:     ttl,
		maxJobs: maxJobs,
		stop:    make(chan struct{}),
	}
	go s.janitor()
	return s
}

// Put registers a new job snapshot, evicting old terminal jobs if at capacity.
func (s *jobStore) Put(job *domain.ReceiptJob) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.jobs) >= s.maxJobs {
		s.evictLocked(len(s.jobs) - s.maxJobs + 1)
	}
	entry := &jobEntry{
		job:  job,
		done: make(chan struct{}),
	}
	if job.Terminal() {
		entry.expiresAt = time.Now().Add(s.ttl)
		close(entry.done)
	}
	s.jobs[job.ID] = entry
}

// Update atomically replaces a job snapshot. Updates against unknown or already
// terminal jobs are ignored.
func (s *jobStore) Update(job *domain.ReceiptJob) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.jobs[job.ID]
	if !ok || entry.job.Terminal() {
		return
	}
	entry.job = job
	if job.Terminal() {
		entry.expiresAt = time.Now().Add(s.ttl)
		close(entry.done)
	}
}

// Get returns the current snapshot for a job id.
func (s *jobStore) Get(id string) (*domain.ReceiptJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.jobs[id]
	if !ok {
		return nil, false
	}
	return entry.job, true
}

// Done returns a channel that is closed once the job reaches a terminal state.
// Unknown ids return a closed channel so joins never hang on them.
func (s *jobStore) Done(id string) <-chan struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.jobs[id]
	if !ok {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return entry.done
}

// Remove deletes a job outright (used when dispatch is rejected).
func (s *jobStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
}

// Len returns the number of tracked jobs.
func (s *jobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// Close stops the janitor goroutine.
func (s *jobStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *jobStore) janitor() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sweep(time.Now())
		case <-s.stop:
			return
		}
	}
}

// sweep drops terminal jobs whose TTL has elapsed.
func (s *jobStore) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, entry := range s.jobs {
		if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
			delete(s.jobs, id)
		}
	}
}

// evictLocked removes up to n terminal jobs, oldest first. In-flight jobs are
// never evicted.
func (s *jobStore) evictLocked(n int) {
	type victim struct {
		id        string
		expiresAt time.Time
	}
	var victims []victim
	for id, entry := range s.jobs {
		if entry.job.Terminal() {
			victims = append(victims, victim{id: id, expiresAt: entry.expiresAt})
		}
	}
	for i := 0; i < n && len(victims) > 0; i++ {
		oldest := 0
		for j := range victims {
			if victims[j].expiresAt.Before(victims[oldest].expiresAt) {
				oldest = j
			}
		}
		delete(s.jobs, victims[oldest].id)
		victims = append(victims[:oldest], victims[oldest+1:]...)
	}
}
