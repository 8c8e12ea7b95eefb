package pool

import "sync"

// queue is an unbounded FIFO of Jobs shared by one producer and many
// consumer workers. A mutex plus condition variable guards the slice; a
// native channel is not used because channels are bounded and Submit must
// never block on queue depth.
//
// Wake discipline: push signals exactly one waiter per enqueued job, close
// broadcasts so that every blocked worker re-checks the closed flag and
// can exit. Waiters loop around cond.Wait to tolerate spurious wakeups.
type queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	jobs   []Job
	closed bool
}

func newQueue() *queue {
	q := &queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push appends a job and wakes one waiting worker. It reports false once
// the queue has been closed, without enqueuing.
func (q *queue) push(j Job) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.jobs = append(q.jobs, j)
	q.cond.Signal()
	return true
}

// pop blocks until a job is available or the queue is both closed and
// empty. Jobs already enqueued at close time are still handed out, which
// is what gives the pool its full-drain shutdown.
func (q *queue) pop() (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.jobs) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.jobs) == 0 {
		return nil, false
	}
	j := q.jobs[0]
	q.jobs[0] = nil
	q.jobs = q.jobs[1:]
	return j, true
}

// close marks the queue closed and wakes every waiter. Idempotent.
func (q *queue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	q.cond.Broadcast()
}

// depth reports the number of queued jobs not yet picked up by a worker.
func (q *queue) depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}
