// Package fcfs implements a first-come-first-served reader-writer lock.
//
// Every arrival, reader or writer, passes through an entry gate before
// contending for the shared resource lock. A writer blocked at the gate
// cannot be overtaken by readers that arrive after it, which bounds writer
// starvation to the reader batch already admitted.
package fcfs

import "sync"

// ReadWriter is the admission surface shared by both gate variants.
type ReadWriter interface {
	Lock()
	Unlock()
	RLock()
	RUnlock()
}

// gate is the binary lock establishing arrival order at the entry point.
type gate interface {
	acquire()
	release()
}

// mutexGate is the cheap default. Go mutexes switch to a FIFO handoff mode
// under contention, so sustained overtaking at the gate is not possible,
// but brief reordering of near-simultaneous arrivals is.
type mutexGate struct {
	mu sync.Mutex
}

func (g *mutexGate) acquire() { g.mu.Lock() }
func (g *mutexGate) release() { g.mu.Unlock() }

// ticketGate admits strictly in arrival order: each arrival takes the next
// ticket and blocks until its ticket is served. This is the stricter
// variant; it costs one broadcast wakeup per passage.
type ticketGate struct {
	mu      sync.Mutex
	cond    *sync.Cond
	next    uint64
	serving uint64
}

func newTicketGate() *ticketGate {
	g := &ticketGate{}
	g.cond = sync.NewCond(&g.mu)
	return g
}

func (g *ticketGate) acquire() {
	g.mu.Lock()
	ticket := g.next
	g.next++
	for g.serving != ticket {
		g.cond.Wait()
	}
	g.mu.Unlock()
}

func (g *ticketGate) release() {
	g.mu.Lock()
	g.serving++
	g.cond.Broadcast()
	g.mu.Unlock()
}

// RWLock gives writers mutual exclusion and readers shared access.
//
// The resource lock is held either by one writer or, on behalf of every
// active reader, by the first reader of the batch. It is therefore locked
// and unlocked by different goroutines, which sync.Mutex permits.
type RWLock struct {
	gate      gate
	resource  sync.Mutex
	rmutex    sync.Mutex
	readcount int
}

// New returns a lock with the default gate.
func New() *RWLock {
	return &RWLock{gate: &mutexGate{}}
}

// NewStrict returns a lock whose gate admits in strict arrival order.
func NewStrict() *RWLock {
	return &RWLock{gate: newTicketGate()}
}

func (l *RWLock) Lock() {
	l.gate.acquire()
	l.resource.Lock()
	l.gate.release()
}

func (l *RWLock) Unlock() {
	l.resource.Unlock()
}

func (l *RWLock) RLock() {
	l.gate.acquire()
	l.rmutex.Lock()
	l.readcount++
	if l.readcount == 1 {
		l.resource.Lock()
	}
	l.gate.release()
	l.rmutex.Unlock()
}

func (l *RWLock) RUnlock() {
	l.rmutex.Lock()
	l.readcount--
	if l.readcount == 0 {
		l.resource.Unlock()
	}
	l.rmutex.Unlock()
}
