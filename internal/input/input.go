// Package input is fan-out bus for key events from several sources
// (linux input device, remote telemetry, developer console).
package input

import (
	"sync"

	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/types"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/log2"
	"github.com/juju/errors"
)

type Source interface {
	Read() (types.InputEvent, error)
	String() string
}

type sub struct {
	ch   chan types.InputEvent
	stop <-chan struct{}
}

func (s *sub) stopped() bool {
	select {
	case <-s.stop:
		return true
	default:
		return false
	}
}

// Dispatch delivers every event to all live subscribers, in order.
// Emit blocks until dispatcher takes the event.
type Dispatch struct {
	Log  *log2.Log
	bus  chan types.InputEvent
	mu   sync.Mutex
	subs map[string]*sub
	stop <-chan struct{}
}

func NewDispatch(log *log2.Log, stop <-chan struct{}) *Dispatch {
	return &Dispatch{
		Log:  log,
		bus:  make(chan types.InputEvent),
		subs: make(map[string]*sub, 4),
		stop: stop,
	}
}

// SubscribeChan returns channel closed when substop fires.
// Name may be reused only after previous subscriber stopped.
func (self *Dispatch) SubscribeChan(name string, substop <-chan struct{}) <-chan types.InputEvent {
	s := &sub{ch: make(chan types.InputEvent), stop: substop}
	self.mu.Lock()
	defer self.mu.Unlock()
	if existing, ok := self.subs[name]; ok {
		if !existing.stopped() {
			panic("code error input duplicate subscribe name=" + name)
		}
		self.remove(name, existing)
	}
	self.subs[name] = s
	return s.ch
}

// Run blocks until stop, reading sources in background.
func (self *Dispatch) Run(sources []Source) {
	for _, source := range sources {
		go self.readSource(source)
	}

	for {
		select {
		case event := <-self.bus:
			self.mu.Lock()
			if len(self.subs) == 0 {
				self.Log.Debugf("input is not handled event=%s", event.String())
			}
			for name, s := range self.subs {
				if !self.deliver(s, event) {
					self.remove(name, s)
				}
			}
			self.mu.Unlock()

		case <-self.stop:
			drain(self.bus)
			return
		}
	}
}

func (self *Dispatch) Emit(event types.InputEvent) {
	select {
	case self.bus <- event:
		self.Log.Debugf("input emit=%s", event.String())
	case <-self.stop:
	}
}

func (self *Dispatch) deliver(s *sub, event types.InputEvent) bool {
	if s.stopped() {
		return false
	}
	select {
	case s.ch <- event:
		return true
	case <-s.stop:
		return false
	}
}

func (self *Dispatch) remove(name string, s *sub) {
	close(s.ch)
	delete(self.subs, name)
}

func (self *Dispatch) readSource(source Source) {
	tag := source.String()
	for {
		event, err := source.Read()
		if err != nil {
			self.Log.Error(errors.Annotatef(err, "input source=%s", tag))
			return
		}
		self.Emit(event)
	}
}

func drain(ch <-chan types.InputEvent) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}
