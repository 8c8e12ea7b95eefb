package pool

// Job is one unit of deferred work. A Job owns whatever it captured when
// it was built (typically an accepted network connection) and must release
// those resources itself before Run returns, whether it succeeds or not.
// Every submitted Job is executed exactly once, by exactly one worker.
type Job interface {
	Run()
}

// JobFunc adapts an ordinary function to the Job interface, so callers can
// submit closures without declaring a type per job kind.
type JobFunc func()

// Run calls f.
func (f JobFunc) Run() { f() }
