// Package timer schedules one-shot and repeating callbacks.
// Callbacks always run on UI loop goroutine, see Service.
package timer

import (
	"sync"
	"time"
)

// Handle identifies scheduled callback. Zero Handle is never returned by Schedule.
type Handle uint64

type Scheduler interface {
	Schedule(delay time.Duration, repeat bool, fn func()) Handle
	// Cancel is no-op for unknown or already fired one-shot handle.
	Cancel(h Handle)
}

// Service is Scheduler on stdlib timers.
// Expired timer does not call fn directly, instead it posts into event loop
// and the handle is checked again there. So callback of cancelled timer never runs,
// even when cancel happened after expiry but before loop picked it up.
type Service struct {
	mu      sync.Mutex
	post    func(func())
	last    Handle
	entries map[Handle]*entry
}

type entry struct {
	t      *time.Timer
	delay  time.Duration
	repeat bool
	fn     func()
}

var _ Scheduler = &Service{} // compile-time interface test

func NewService(post func(func())) *Service {
	return &Service{
		post:    post,
		entries: make(map[Handle]*entry, 4),
	}
}

func (self *Service) Schedule(delay time.Duration, repeat bool, fn func()) Handle {
	self.mu.Lock()
	defer self.mu.Unlock()
	self.last++
	h := self.last
	e := &entry{delay: delay, repeat: repeat, fn: fn}
	e.t = time.AfterFunc(delay, func() { self.post(func() { self.fire(h) }) })
	self.entries[h] = e
	return h
}

func (self *Service) Cancel(h Handle) {
	self.mu.Lock()
	defer self.mu.Unlock()
	if e, ok := self.entries[h]; ok {
		e.t.Stop()
		delete(self.entries, h)
	}
}

// Stop cancels everything.
func (self *Service) Stop() {
	self.mu.Lock()
	defer self.mu.Unlock()
	for h, e := range self.entries {
		e.t.Stop()
		delete(self.entries, h)
	}
}

func (self *Service) Len() int {
	self.mu.Lock()
	defer self.mu.Unlock()
	return len(self.entries)
}

func (self *Service) fire(h Handle) {
	self.mu.Lock()
	e, ok := self.entries[h]
	if !ok {
		self.mu.Unlock()
		return
	}
	if e.repeat {
		e.t.Reset(e.delay)
	} else {
		delete(self.entries, h)
	}
	self.mu.Unlock()
	e.fn()
}
