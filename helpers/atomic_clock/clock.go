// Package atomic_clock is wall clock timestamp safe to read from any goroutine.
// Zero value means "never set".
package atomic_clock

import (
	"sync/atomic"
	"time"
)

type Clock struct{ v int64 }

func (c *Clock) IsZero() bool { return atomic.LoadInt64(&c.v) == 0 }

func (c *Clock) SetNow()             { c.SetTime(time.Now()) }
func (c *Clock) SetTime(t time.Time) { atomic.StoreInt64(&c.v, t.UnixNano()) }

// Time returns zero time.Time for unset clock.
func (c *Clock) Time() time.Time {
	v := atomic.LoadInt64(&c.v)
	if v == 0 {
		return time.Time{}
	}
	return time.Unix(0, v)
}

// Since is 0 for unset clock.
func (c *Clock) Since() time.Duration {
	v := atomic.LoadInt64(&c.v)
	if v == 0 {
		return 0
	}
	return time.Duration(time.Now().UnixNano() - v)
}
