package helpers

import "time"

// Backoff is limited exponential delay for retry loops.
// Not safe for concurrent use.
//
//	for {
//	  err := op()
//	  if err == nil { b.Reset(); continue }
//	  time.Sleep(b.Failure())
//	}
type Backoff struct {
	Min time.Duration
	Max time.Duration
	K   float32

	next time.Duration
}

// Failure returns delay before next attempt and grows following delay by K.
func (b *Backoff) Failure() time.Duration {
	if b.next == 0 {
		b.next = b.Min
	}
	d := b.limit(b.next)
	k := b.K
	if k < 1 {
		k = 2
	}
	b.next = b.limit(time.Duration(float32(d) * k))
	return d
}

func (b *Backoff) Reset() { b.next = 0 }

func (b *Backoff) limit(d time.Duration) time.Duration {
	if d < b.Min {
		d = b.Min
	}
	if b.Max != 0 && d > b.Max {
		d = b.Max
	}
	return d
}
