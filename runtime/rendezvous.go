package runtime

import "sync"

// launchAborted is panicked out of a rendezvous wait when another lane of the
// same launch failed. The Submit lane wrapper swallows it so only the
// original failure is reported.
type launchAbortedError struct{}

func (launchAbortedError) Error() string { return "launch aborted" }

var errLaunchAborted = launchAbortedError{}

// Rendezvous is a reusable barrier for one group of lanes. Every cycle each
// member contributes one boolean; when the last member arrives, the OR and
// AND of the contributions are published to all members. The token is opaque
// outside this package: only the reduction functions arrive at it.
//
// A cycle's results are written before its done channel is closed, and the
// next cycle cannot complete until every member has returned from this one,
// so reads of the published results never race with the next cycle.
type Rendezvous struct {
	mu      sync.Mutex
	size    int
	arrived int
	accAny  bool
	accAll  bool
	cur     *cycle
	abort   <-chan struct{}
}

type cycle struct {
	done   chan struct{}
	resAny bool
	resAll bool
}

// arrive contributes v to the current cycle and blocks until all size
// members have contributed. Panics with errLaunchAborted if the launch is
// torn down while waiting.
func (r *Rendezvous) arrive(v bool) (anyOf, allOf bool) {
	r.mu.Lock()
	if r.cur == nil {
		r.cur = &cycle{done: make(chan struct{})}
		r.accAny = false
		r.accAll = true
	}
	c := r.cur
	r.accAny = r.accAny || v
	r.accAll = r.accAll && v
	r.arrived++
	if r.arrived == r.size {
		c.resAny = r.accAny
		c.resAll = r.accAll
		r.arrived = 0
		r.cur = nil
		r.mu.Unlock()
		close(c.done)
		return c.resAny, c.resAll
	}
	r.mu.Unlock()

	select {
	case <-c.done:
		return c.resAny, c.resAll
	case <-r.abort:
		panic(errLaunchAborted)
	}
}

// launch tracks the shared state of one Submit call: the rendezvous registry
// and the abort channel that unblocks waiting lanes when a peer fails.
type launch struct {
	device    *Device
	lanes     int
	abort     chan struct{}
	abortOnce sync.Once

	mu  sync.Mutex
	rvs map[string]*Rendezvous
}

func newLaunch(d *Device) *launch {
	return &launch{
		device: d,
		abort:  make(chan struct{}),
		rvs:    make(map[string]*Rendezvous),
	}
}

func (l *launch) doAbort() {
	l.abortOnce.Do(func() { close(l.abort) })
}

// rendezvous returns the barrier for the given group key, creating it on
// first use. All members of a group derive the same key and size, so the
// first arrival fixes the membership count for every later one.
func (l *launch) rendezvous(key string, size int) *Rendezvous {
	l.mu.Lock()
	defer l.mu.Unlock()
	rv, ok := l.rvs[key]
	if !ok {
		rv = &Rendezvous{size: size, abort: l.abort}
		l.rvs[key] = rv
	}
	return rv
}
