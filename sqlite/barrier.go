package sqlite

// barrier is a one-shot initialization barrier; the first waiter receives the token and performs initialization, all
// other waiters block until it reports success or failure. On failure the token is handed to the next waiter.
type barrier chan struct{}

func newInitBarrier() barrier {
	b := make(barrier, 1)
	b <- struct{}{}

	return b
}

// wait blocks until initialization is complete, returning true if the caller holds the token and must perform the
// initialization itself.
func (b barrier) wait() bool {
	_, ok := <-b
	return ok
}

// success marks initialization as complete, releasing all current and future waiters.
func (b barrier) success() {
	close(b)
}

// failed returns the token, allowing the next waiter to retry the initialization.
func (b barrier) failed() {
	b <- struct{}{}
}
