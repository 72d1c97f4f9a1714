package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoff(t *testing.T) {
	t.Parallel()

	b := Backoff{Min: 100 * time.Millisecond, Max: time.Second, K: 3}
	assert.Equal(t, 100*time.Millisecond, b.Failure())
	assert.Equal(t, 300*time.Millisecond, b.Failure())
	assert.Equal(t, 900*time.Millisecond, b.Failure())
	assert.Equal(t, time.Second, b.Failure())
	assert.Equal(t, time.Second, b.Failure())
	b.Reset()
	assert.Equal(t, 100*time.Millisecond, b.Failure())
}
