package fcfs

import (
	"sync"
	"testing"
	"time"
)

func variants() map[string]func() *RWLock {
	return map[string]func() *RWLock{
		"default": New,
		"strict":  NewStrict,
	}
}

func TestWriterMutualExclusion(t *testing.T) {
	for name, newLock := range variants() {
		t.Run(name, func(t *testing.T) {
			l := newLock()
			counter := 0 // deliberately not atomic

			var wg sync.WaitGroup
			for g := 0; g < 8; g++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := 0; i < 1000; i++ {
						l.Lock()
						counter++
						l.Unlock()
					}
				}()
			}
			wg.Wait()

			if counter != 8000 {
				t.Errorf("expected 8000 increments, got %d (writers overlapped)", counter)
			}
		})
	}
}

func TestReadersShareResource(t *testing.T) {
	for name, newLock := range variants() {
		t.Run(name, func(t *testing.T) {
			l := newLock()
			l.RLock()
			defer l.RUnlock()

			done := make(chan struct{})
			go func() {
				l.RLock()
				l.RUnlock()
				close(done)
			}()

			select {
			case <-done:
			case <-time.After(5 * time.Second):
				t.Fatal("second reader blocked while first reader held the lock")
			}
		})
	}
}

func TestWriterExcludesReaders(t *testing.T) {
	for name, newLock := range variants() {
		t.Run(name, func(t *testing.T) {
			l := newLock()
			l.Lock()

			entered := make(chan struct{})
			go func() {
				l.RLock()
				close(entered)
				l.RUnlock()
			}()

			select {
			case <-entered:
				t.Fatal("reader entered while writer held the lock")
			case <-time.After(100 * time.Millisecond):
			}

			l.Unlock()
			select {
			case <-entered:
			case <-time.After(5 * time.Second):
				t.Fatal("reader never admitted after writer exit")
			}
		})
	}
}

func TestReadersExcludeWriter(t *testing.T) {
	for name, newLock := range variants() {
		t.Run(name, func(t *testing.T) {
			l := newLock()
			l.RLock()

			entered := make(chan struct{})
			go func() {
				l.Lock()
				close(entered)
				l.Unlock()
			}()

			select {
			case <-entered:
				t.Fatal("writer entered while a reader held the lock")
			case <-time.After(100 * time.Millisecond):
			}

			l.RUnlock()
			select {
			case <-entered:
			case <-time.After(5 * time.Second):
				t.Fatal("writer never admitted after last reader exit")
			}
		})
	}
}

// waitNext spins until n tickets have been handed out, so arrival order at
// the gate is known before the next arrival is launched.
func waitNext(t *testing.T, g *ticketGate, n uint64) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		g.mu.Lock()
		next := g.next
		g.mu.Unlock()
		if next >= n {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("gate never reached ticket %d", n)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestTicketGateOrder(t *testing.T) {
	g := newTicketGate()
	g.acquire()

	var mu sync.Mutex
	var order []string
	var wg sync.WaitGroup
	pass := func(id string) {
		defer wg.Done()
		g.acquire()
		mu.Lock()
		order = append(order, id)
		mu.Unlock()
		g.release()
	}

	wg.Add(1)
	go pass("a")
	waitNext(t, g, 2)
	wg.Add(1)
	go pass("b")
	waitNext(t, g, 3)
	wg.Add(1)
	go pass("c")
	waitNext(t, g, 4)

	g.release()
	wg.Wait()

	want := []string{"a", "b", "c"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected admission order %v, got %v", want, order)
		}
	}
}

func TestConcurrentReadersAndWriters(t *testing.T) {
	for name, newLock := range variants() {
		t.Run(name, func(t *testing.T) {
			l := newLock()
			shared := 0

			var wg sync.WaitGroup
			for g := 0; g < 4; g++ {
				wg.Add(2)
				go func() {
					defer wg.Done()
					for i := 0; i < 500; i++ {
						l.Lock()
						shared++
						l.Unlock()
					}
				}()
				go func() {
					defer wg.Done()
					for i := 0; i < 500; i++ {
						l.RLock()
						_ = shared
						l.RUnlock()
					}
				}()
			}
			wg.Wait()

			if shared != 2000 {
				t.Errorf("expected 2000 increments, got %d", shared)
			}
		})
	}
}
