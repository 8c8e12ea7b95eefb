package pool

import (
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Pool is a fixed-size worker pool. Its size is set once at construction
// and never changes; the workers are started by New and run until
// Shutdown drains the queue.
type Pool struct {

	// queue is the FIFO hand-off between the single producer and the
	// workers. The Pool owns its sending side via Submit.
	queue *queue

	// workerWG tracks the worker goroutines so Shutdown can wait for
	// their natural termination.
	workerWG sync.WaitGroup

	// jobCounts holds one executed-job counter per worker, indexed by
	// worker id. Incremented only by the owning worker.
	jobCounts []atomic.Uint64

	// closeOnce makes Shutdown idempotent.
	closeOnce sync.Once

	log *logrus.Logger
}

// New creates a pool with size workers and starts them immediately.
// It returns ErrInvalidSize if size is less than one.
func New(size int, log *logrus.Logger) (*Pool, error) {
	if size < 1 {
		return nil, ErrInvalidSize
	}

	p := &Pool{
		queue:     newQueue(),
		jobCounts: make([]atomic.Uint64, size),
		log:       log,
	}

	for i := 0; i < size; i++ {
		p.workerWG.Add(1)
		go p.worker(i)
	}
	return p, nil
}

// Submit enqueues a job for execution by the next free worker. It never
// blocks on queue depth (the queue is unbounded, no backpressure) and
// returns ErrPoolClosed once Shutdown has begun, leaving the job's
// resources with the caller.
func (p *Pool) Submit(j Job) error {
	if !p.queue.push(j) {
		return ErrPoolClosed
	}
	return nil
}

// Shutdown stops the pool: no new jobs are accepted, every job already
// accepted is executed, and all workers terminate before Shutdown
// returns. Safe to call more than once.
func (p *Pool) Shutdown() {
	p.closeOnce.Do(func() {
		p.queue.close()
	})
	p.workerWG.Wait()
}

// Size reports the number of workers.
func (p *Pool) Size() int { return len(p.jobCounts) }

// QueueDepth reports the number of submitted jobs not yet picked up.
func (p *Pool) QueueDepth() int { return p.queue.depth() }

// JobCounts returns a snapshot of how many jobs each worker has executed,
// indexed by worker id.
func (p *Pool) JobCounts() []uint64 {
	counts := make([]uint64, len(p.jobCounts))
	for i := range p.jobCounts {
		counts[i] = p.jobCounts[i].Load()
	}
	return counts
}

// worker is the loop run by each worker goroutine: pull one job, execute
// it to completion, repeat until the queue is closed and drained. A
// worker never runs more than one job at a time.
func (p *Pool) worker(id int) {
	defer p.workerWG.Done()

	for {
		j, ok := p.queue.pop()
		if !ok {
			return
		}
		p.runJob(id, j)
		p.jobCounts[id].Add(1)
	}
}

// runJob executes a single job, containing any panic so one bad job
// cannot take the worker down.
func (p *Pool) runJob(id int, j Job) {
	defer func() {
		if r := recover(); r != nil {
			p.log.WithFields(logrus.Fields{
				"worker": id,
				"panic":  r,
			}).Error("job panicked")
		}
	}()
	j.Run()
}
