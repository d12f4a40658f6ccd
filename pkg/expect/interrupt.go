package expect

import (
	"os"
	"os/signal"
	"sync"
)

// Directive tells a blocked read what to do after an interrupt
type Directive int32

// The directives. The values match the classic EXP_ABORT and EXP_RESTART.
const (
	// Abort ends the enclosing expect call with the Interrupted outcome
	Abort Directive = 1
	// Restart re-issues the read with the remaining timeout
	Restart Directive = 2
)

func (d Directive) String() string {
	switch d {
	case Abort:
		return "abort"
	case Restart:
		return "restart"
	}
	return "none"
}

// Interrupter delivers asynchronous interrupts to blocked expect reads.
// A handler sets the directive, the read primitive consults it once the
// wait returns. Reads never jump out of their caller.
//
// Every expect call in flight owns a waiter, and Interrupt reaches all of
// them. An interrupt sent while no expect call is pending is dropped: it
// never aborts a later call.
type Interrupter struct {
	mu      sync.Mutex
	waiters map[*waiter]struct{}
	stops   []chan struct{}
	relays  sync.WaitGroup
}

// waiter is the wake up pipe of a single expect call
type waiter struct {
	intr     *Interrupter
	rfd, wfd int
	// guarded by intr.mu
	pending Directive
}

// NewInterrupter creates an Interrupter with no pending expect calls
func NewInterrupter() *Interrupter {
	return &Interrupter{waiters: make(map[*waiter]struct{})}
}

// Interrupt records d on every pending expect call and wakes them up.
// An Abort already pending is never downgraded to Restart.
func (i *Interrupter) Interrupt(d Directive) {
	i.mu.Lock()
	defer i.mu.Unlock()
	for w := range i.waiters {
		if w.pending != Abort {
			w.pending = d
		}
		wake(w.wfd)
	}
}

// Notify relays the given signals to the Interrupter. decide picks the
// directive for each signal. The returned function stops the relay.
func (i *Interrupter) Notify(decide func(os.Signal) Directive, sigs ...os.Signal) func() {
	ch := make(chan os.Signal, 1)
	stop := make(chan struct{})
	signal.Notify(ch, sigs...)

	i.mu.Lock()
	i.stops = append(i.stops, stop)
	i.mu.Unlock()

	i.relays.Add(1)
	go func() {
		defer i.relays.Done()
		for {
			select {
			case sig := <-ch:
				i.Interrupt(decide(sig))
			case <-stop:
				signal.Stop(ch)
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			i.mu.Lock()
			defer i.mu.Unlock()
			// Close may already have stopped it
			for idx, s := range i.stops {
				if s == stop {
					i.stops = append(i.stops[:idx], i.stops[idx+1:]...)
					close(stop)
					break
				}
			}
		})
	}
}

// Close stops every relay and returns once none of them is running
func (i *Interrupter) Close() error {
	i.mu.Lock()
	for _, s := range i.stops {
		close(s)
	}
	i.stops = nil
	i.mu.Unlock()

	i.relays.Wait()
	return nil
}

// register opens a waiter for one expect call. Interrupts sent before
// register are not seen by it.
func (i *Interrupter) register() (*waiter, error) {
	rfd, wfd, err := wakePipe()
	if err != nil {
		return nil, err
	}
	w := &waiter{intr: i, rfd: rfd, wfd: wfd}
	i.mu.Lock()
	i.waiters[w] = struct{}{}
	i.mu.Unlock()
	return w, nil
}

// release forgets w and closes its pipe. Interrupt writes under the lock,
// so the descriptors are never written once removed.
func (i *Interrupter) release(w *waiter) {
	i.mu.Lock()
	delete(i.waiters, w)
	i.mu.Unlock()
	closeFd(w.wfd)
	closeFd(w.rfd)
}

func (i *Interrupter) waiting() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.waiters)
}

// take drains the wake up pipe and returns the pending directive
func (w *waiter) take() Directive {
	drain(w.rfd)
	w.intr.mu.Lock()
	defer w.intr.mu.Unlock()
	d := w.pending
	w.pending = 0
	return d
}
