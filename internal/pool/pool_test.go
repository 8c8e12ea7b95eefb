package pool

import (
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
)

// Test_Pool_TestSuite executes the test suite for the Pool.
func Test_Pool_TestSuite(t *testing.T) {
	suite.Run(t, new(Pool_TestSuite))
}

// Pool_TestSuite tests construction, delivery, shutdown and failure
// containment of the worker pool.
type Pool_TestSuite struct {
	suite.Suite
	log *logrus.Logger
}

func (suite *Pool_TestSuite) SetupTest() {
	suite.log = logrus.New()
	suite.log.SetOutput(io.Discard)
}

// Test_New_RejectsZeroSize ensures a pool cannot be built without workers.
func (suite *Pool_TestSuite) Test_New_RejectsZeroSize() {
	p, err := New(0, suite.log)
	suite.Require().Nil(p)
	suite.Require().ErrorIs(err, ErrInvalidSize)

	p, err = New(-3, suite.log)
	suite.Require().Nil(p)
	suite.Require().ErrorIs(err, ErrInvalidSize)
}

// Test_New_StartsRequestedWorkers checks the pool reports its fixed size.
func (suite *Pool_TestSuite) Test_New_StartsRequestedWorkers() {
	p, err := New(4, suite.log)
	suite.Require().NoError(err)
	defer p.Shutdown()

	suite.Require().Equal(4, p.Size())
	suite.Require().Len(p.JobCounts(), 4)
}

// Test_Submit_ExecutesEachJobExactlyOnce submits many jobs, each carrying
// its own counter, and verifies every counter lands on exactly one.
func (suite *Pool_TestSuite) Test_Submit_ExecutesEachJobExactlyOnce() {
	const jobs = 200

	p, err := New(5, suite.log)
	suite.Require().NoError(err)

	executions := make([]atomic.Int64, jobs)
	for i := 0; i < jobs; i++ {
		suite.Require().NoError(p.Submit(JobFunc(func() {
			executions[i].Add(1)
		})))
	}

	p.Shutdown()

	for i := 0; i < jobs; i++ {
		suite.Require().Equal(int64(1), executions[i].Load(), "job %d", i)
	}
}

// Test_Shutdown_DrainsQueuedJobs occupies both workers, piles jobs up in
// the queue, then verifies Shutdown lets every queued job finish.
func (suite *Pool_TestSuite) Test_Shutdown_DrainsQueuedJobs() {
	const jobs = 50

	p, err := New(2, suite.log)
	suite.Require().NoError(err)

	gate := make(chan struct{})
	var done atomic.Int64

	for i := 0; i < 2; i++ {
		suite.Require().NoError(p.Submit(JobFunc(func() {
			<-gate
			done.Add(1)
		})))
	}
	for i := 0; i < jobs; i++ {
		suite.Require().NoError(p.Submit(JobFunc(func() {
			done.Add(1)
		})))
	}

	close(gate)
	p.Shutdown()

	suite.Require().Equal(int64(jobs+2), done.Load())
	suite.Require().Equal(0, p.QueueDepth())
}

// Test_Submit_FailsAfterShutdown ensures late submissions are refused with
// the sentinel error instead of being silently dropped.
func (suite *Pool_TestSuite) Test_Submit_FailsAfterShutdown() {
	p, err := New(1, suite.log)
	suite.Require().NoError(err)

	p.Shutdown()

	err = p.Submit(JobFunc(func() {}))
	suite.Require().ErrorIs(err, ErrPoolClosed)
}

// Test_Shutdown_Idempotent calls Shutdown twice; the second call must
// return without blocking.
func (suite *Pool_TestSuite) Test_Shutdown_Idempotent() {
	p, err := New(2, suite.log)
	suite.Require().NoError(err)

	p.Shutdown()

	finished := make(chan struct{})
	go func() {
		p.Shutdown()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		suite.FailNow("second Shutdown did not return")
	}
}

// Test_Worker_SurvivesPanickingJob verifies a panic inside one job does
// not kill its worker: a single-worker pool must still run the next job.
func (suite *Pool_TestSuite) Test_Worker_SurvivesPanickingJob() {
	p, err := New(1, suite.log)
	suite.Require().NoError(err)

	ran := make(chan struct{})
	suite.Require().NoError(p.Submit(JobFunc(func() {
		panic("bad job")
	})))
	suite.Require().NoError(p.Submit(JobFunc(func() {
		close(ran)
	})))

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		suite.FailNow("worker did not recover from panicking job")
	}

	p.Shutdown()
}

// Test_Pool_NoWorkerStarves submits far more jobs than workers, with each
// job briefly occupying its worker, and checks every worker ends up with
// a share of the executions.
func (suite *Pool_TestSuite) Test_Pool_NoWorkerStarves() {
	const (
		workers = 4
		jobs    = 400
	)

	p, err := New(workers, suite.log)
	suite.Require().NoError(err)

	var wg sync.WaitGroup
	wg.Add(jobs)
	for i := 0; i < jobs; i++ {
		suite.Require().NoError(p.Submit(JobFunc(func() {
			defer wg.Done()
			time.Sleep(time.Millisecond)
		})))
	}
	wg.Wait()
	p.Shutdown()

	counts := p.JobCounts()
	var total uint64
	for id, n := range counts {
		suite.Require().NotZero(n, "worker %d executed no jobs", id)
		total += n
	}
	suite.Require().Equal(uint64(jobs), total)
}

// Test_Pool_SlowJobDoesNotBlockOthers parks one worker on a gated job and
// requires a job submitted afterwards to complete on the other worker
// while the first is still held.
func (suite *Pool_TestSuite) Test_Pool_SlowJobDoesNotBlockOthers() {
	p, err := New(2, suite.log)
	suite.Require().NoError(err)

	slowGate := make(chan struct{})
	slowRunning := make(chan struct{})
	fastDone := make(chan struct{})

	suite.Require().NoError(p.Submit(JobFunc(func() {
		close(slowRunning)
		<-slowGate
	})))
	<-slowRunning

	suite.Require().NoError(p.Submit(JobFunc(func() {
		close(fastDone)
	})))

	select {
	case <-fastDone:
	case <-time.After(2 * time.Second):
		suite.FailNow("fast job blocked behind slow job")
	}
	close(slowGate)
	p.Shutdown()
}
