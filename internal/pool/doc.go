// Package pool implements a fixed-size worker pool fed by an unbounded
// FIFO task queue.
//
// A Pool owns N long-lived worker goroutines and the sending side of the
// queue. Jobs are submitted by a single producer (the accept loop) and
// delivered exactly once to whichever worker dequeues them first; no
// guarantee is made about which idle worker wins, which is what spreads
// load across the pool. Submission never blocks beyond the cost of the
// queue lock: the queue is unbounded and applies no backpressure, so a
// burst of submissions grows memory rather than stalling the producer.
//
// Shutdown closes the queue to new submissions, lets the workers drain
// every job accepted before the close, and then waits for all worker
// goroutines to exit. A job that panics is logged and discarded; it never
// takes its worker down with it.
package pool
