package helpers

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFoldErrors(t *testing.T) {
	t.Parallel()

	assert.NoError(t, FoldErrors(nil))
	assert.NoError(t, FoldErrors([]error{nil, nil}))
	err := FoldErrors([]error{fmt.Errorf("display"), nil, fmt.Errorf("input")})
	assert.EqualError(t, err, "display\ninput")
}

func TestWrapErrChan(t *testing.T) {
	t.Parallel()

	const n = 3
	wg := sync.WaitGroup{}
	wg.Add(n)
	errch := make(chan error, n)
	go WrapErrChan(&wg, errch, func() error { return nil })
	go WrapErrChan(&wg, errch, func() error { return fmt.Errorf("config") })
	go WrapErrChan(&wg, errch, func() error { return nil })
	wg.Wait()
	close(errch)
	assert.EqualError(t, FoldErrChan(errch), "config")
}

func TestIntDefault(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 31*time.Millisecond, IntMillisecondDefault(0, 31*time.Millisecond))
	assert.Equal(t, 20*time.Second, IntMillisecondDefault(20000, time.Second))
	assert.Equal(t, 5*time.Second, IntSecondDefault(-1, 5*time.Second))
	assert.Equal(t, 2*time.Second, IntSecondDefault(2, 5*time.Second))
}
