package process

import "sync"

// Fake is Runner for tests. It records commands, completion is triggered explicitly.
type Fake struct {
	mu       sync.Mutex
	Commands []string
	Cancels  int
	done     DoneFunc
}

var _ Runner = &Fake{} // compile-time interface test

func (self *Fake) Spawn(command string, done DoneFunc) {
	self.mu.Lock()
	defer self.mu.Unlock()
	if self.done != nil {
		self.Cancels++
	}
	self.Commands = append(self.Commands, command)
	self.done = done
}

func (self *Fake) CancelCurrent() {
	self.mu.Lock()
	defer self.mu.Unlock()
	if self.done != nil {
		self.Cancels++
		self.done = nil
	}
}

func (self *Fake) IsRunning() bool {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.done != nil
}

func (self *Fake) Last() string {
	self.mu.Lock()
	defer self.mu.Unlock()
	if len(self.Commands) == 0 {
		return ""
	}
	return self.Commands[len(self.Commands)-1]
}

// Complete finishes current helper, returns false if nothing was running.
func (self *Fake) Complete(ok bool, output string) bool {
	self.mu.Lock()
	done := self.done
	self.done = nil
	self.mu.Unlock()
	if done == nil {
		return false
	}
	done(ok, output)
	return true
}
