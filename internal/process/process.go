// Package process runs helper scripts that produce screen content.
// At most one helper runs at a time, starting new one cancels previous.
package process

import (
	"bytes"
	"context"
	"os/exec"
	"sync"
	"time"

	"github.com/aiemassfiria/huawei-oled-hijack-ng/log2"
	"github.com/juju/errors"
)

const DefaultOutputLimit = 64 << 10

const waitDelay = time.Second

// DoneFunc is called on UI loop goroutine when helper exits.
// ok=false for spawn failure or non-zero exit.
type DoneFunc func(ok bool, output string)

type Runner interface {
	Spawn(command string, done DoneFunc)
	CancelCurrent()
	IsRunning() bool
}

type Config struct {
	Shell       string `hcl:"shell"`
	OutputLimit int    `hcl:"output_limit"`
}

// Exec is Runner on os/exec.
type Exec struct {
	log   *log2.Log
	shell string
	limit int
	post  func(func())

	mu      sync.Mutex
	gen     uint64
	cancel  context.CancelFunc
	command string
}

var _ Runner = &Exec{} // compile-time interface test

func NewExec(log *log2.Log, config Config, post func(func())) *Exec {
	self := &Exec{
		log:   log,
		shell: config.Shell,
		limit: config.OutputLimit,
		post:  post,
	}
	if self.shell == "" {
		self.shell = "/bin/sh"
	}
	if self.limit <= 0 {
		self.limit = DefaultOutputLimit
	}
	return self
}

func (self *Exec) Spawn(command string, done DoneFunc) {
	self.mu.Lock()
	self.cancelLocked()
	self.gen++
	gen := self.gen
	ctx, cancel := context.WithCancel(context.Background())
	self.cancel = cancel
	self.command = command
	self.mu.Unlock()

	self.log.Debugf("process spawn command=%q", command)
	cmd := exec.CommandContext(ctx, self.shell, "-c", command)
	out := &limitBuffer{limit: self.limit}
	cmd.Stdout = out
	// grandchild may keep stdout open after shell is killed
	cmd.WaitDelay = waitDelay
	if err := cmd.Start(); err != nil {
		self.log.Errorf("process spawn command=%q err=%v", command, errors.Annotate(err, "start"))
		go self.post(func() { self.finish(gen, done, false, "") })
		return
	}
	go func() {
		err := cmd.Wait()
		if err != nil && ctx.Err() == nil {
			self.log.Debugf("process command=%q err=%v", command, err)
		}
		self.post(func() { self.finish(gen, done, err == nil, out.String()) })
	}()
}

func (self *Exec) CancelCurrent() {
	self.mu.Lock()
	self.cancelLocked()
	self.mu.Unlock()
}

func (self *Exec) IsRunning() bool {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.cancel != nil
}

func (self *Exec) cancelLocked() {
	if self.cancel != nil {
		self.log.Debugf("process cancel command=%q", self.command)
		self.cancel()
		self.cancel = nil
	}
	// completion of cancelled helper must be dropped
	self.gen++
}

func (self *Exec) finish(gen uint64, done DoneFunc, ok bool, output string) {
	self.mu.Lock()
	if gen != self.gen {
		self.mu.Unlock()
		return
	}
	if self.cancel != nil {
		self.cancel()
		self.cancel = nil
	}
	self.mu.Unlock()
	if done != nil {
		done(ok, output)
	}
}

type limitBuffer struct {
	mu    sync.Mutex
	b     bytes.Buffer
	limit int
}

func (self *limitBuffer) Write(p []byte) (int, error) {
	self.mu.Lock()
	defer self.mu.Unlock()
	if room := self.limit - self.b.Len(); room > 0 {
		if len(p) > room {
			self.b.Write(p[:room])
		} else {
			self.b.Write(p)
		}
	}
	// pretend all written, otherwise child gets EPIPE
	return len(p), nil
}

func (self *limitBuffer) String() string {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.b.String()
}
