// Package rwlock implements a writer-preferring reader/writer mutex.
//
// The construction follows the classic two-semaphore, two-lightswitch
// pattern (Little Book of Semaphores §4.2.6): two binary semaphores,
// noReaders and noWriters, gate entry; two lightswitches (readSwitch and
// writeSwitch) let the first arriving reader or writer flip a gate and the
// last departing one flip it back. Once a writer is waiting, the gate it
// holds (noReaders) blocks every new reader, so writers never starve under
// steady read load.
package rwlock

import "sync"

// lightswitch lets the first caller through Enter grab a resource and the
// last caller through Exit release it.
type lightswitch struct {
	mu      sync.Mutex
	counter int
	gate    *semaphore
}

func newLightswitch(gate *semaphore) *lightswitch {
	return &lightswitch{gate: gate}
}

func (l *lightswitch) enter() {
	l.mu.Lock()
	l.counter++
	if l.counter == 1 {
		l.gate.acquire()
	}
	l.mu.Unlock()
}

func (l *lightswitch) exit() {
	l.mu.Lock()
	l.counter--
	if l.counter == 0 {
		l.gate.release()
	}
	l.mu.Unlock()
}

// semaphore is a binary semaphore backed by a buffered channel.
type semaphore struct {
	ch chan struct{}
}

func newSemaphore() *semaphore {
	s := &semaphore{ch: make(chan struct{}, 1)}
	s.ch <- struct{}{}

	return s
}

func (s *semaphore) acquire() {
	<-s.ch
}

func (s *semaphore) release() {
	s.ch <- struct{}{}
}

// RWLock admits any number of concurrent readers or exactly one exclusive
// writer. It is not reentrant: calling Lock twice from the same goroutine
// deadlocks. Unlocking without a matching lock is not detected: it never
// panics, but it can block forever or leave the lock in an inconsistent
// state.
type RWLock struct {
	noReaders *semaphore
	noWriters *semaphore

	readSwitch  *lightswitch
	writeSwitch *lightswitch
}

// New returns a ready-to-use RWLock.
func New() *RWLock {
	noReaders := newSemaphore()
	noWriters := newSemaphore()

	return &RWLock{
		noReaders:   noReaders,
		noWriters:   noWriters,
		readSwitch:  newLightswitch(noWriters),
		writeSwitch: newLightswitch(noReaders),
	}
}

// RLock acquires the lock for reading. It blocks while a writer holds or is
// waiting for the write gate.
func (l *RWLock) RLock() {
	l.noReaders.acquire()
	l.readSwitch.enter()
	l.noReaders.release()
}

// RUnlock releases a read lock acquired with RLock.
func (l *RWLock) RUnlock() {
	l.readSwitch.exit()
}

// Lock acquires the lock exclusively, blocking new readers as soon as it
// starts waiting.
func (l *RWLock) Lock() {
	l.writeSwitch.enter()
	l.noWriters.acquire()
}

// Unlock releases an exclusive lock acquired with Lock.
func (l *RWLock) Unlock() {
	l.noWriters.release()
	l.writeSwitch.exit()
}
