package helpers

import (
	"strings"
	"sync"

	"github.com/juju/errors"
)

func FoldErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	ss := make([]string, 0, len(errs))
	for _, e := range errs {
		if e != nil {
			ss = append(ss, e.Error())
		}
	}
	if len(ss) == 0 {
		return nil
	}
	return errors.New(strings.Join(ss, "\n"))
}

// FoldErrChan reads errch until closed.
func FoldErrChan(errch <-chan error) error {
	errs := make([]error, 0, len(errch))
	for e := range errch {
		errs = append(errs, e)
	}
	return FoldErrors(errs)
}

// WrapErrChan is for `go WrapErrChan(&wg, errch, f)` parallel init.
func WrapErrChan(wg *sync.WaitGroup, errch chan<- error, fun func() error) {
	defer wg.Done()
	if err := fun(); err != nil {
		errch <- err
	}
}
