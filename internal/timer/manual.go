package timer

import (
	"sort"
	"time"
)

// Manual is Scheduler driven by virtual clock, for tests.
// Callbacks run synchronously inside Advance.
type Manual struct {
	now     time.Duration
	last    Handle
	entries map[Handle]*manualEntry
}

type manualEntry struct {
	due    time.Duration
	delay  time.Duration
	repeat bool
	fn     func()
}

var _ Scheduler = &Manual{} // compile-time interface test

func NewManual() *Manual {
	return &Manual{entries: make(map[Handle]*manualEntry)}
}

func (self *Manual) Schedule(delay time.Duration, repeat bool, fn func()) Handle {
	if repeat && delay <= 0 {
		panic("code error timer repeat with delay<=0")
	}
	self.last++
	self.entries[self.last] = &manualEntry{
		due:    self.now + delay,
		delay:  delay,
		repeat: repeat,
		fn:     fn,
	}
	return self.last
}

func (self *Manual) Cancel(h Handle) { delete(self.entries, h) }

func (self *Manual) Now() time.Duration { return self.now }
func (self *Manual) Len() int           { return len(self.entries) }

func (self *Manual) Pending(h Handle) bool {
	_, ok := self.entries[h]
	return ok
}

// Advance moves clock by d and fires everything that became due, in due order.
func (self *Manual) Advance(d time.Duration) {
	target := self.now + d
	for {
		h, e := self.next(target)
		if e == nil {
			break
		}
		self.now = e.due
		if e.repeat {
			e.due += e.delay
		} else {
			delete(self.entries, h)
		}
		e.fn()
	}
	self.now = target
}

func (self *Manual) next(target time.Duration) (Handle, *manualEntry) {
	hs := make([]Handle, 0, len(self.entries))
	for h, e := range self.entries {
		if e.due <= target {
			hs = append(hs, h)
		}
	}
	if len(hs) == 0 {
		return 0, nil
	}
	sort.Slice(hs, func(i, j int) bool {
		a, b := self.entries[hs[i]], self.entries[hs[j]]
		if a.due != b.due {
			return a.due < b.due
		}
		return hs[i] < hs[j]
	})
	return hs[0], self.entries[hs[0]]
}
