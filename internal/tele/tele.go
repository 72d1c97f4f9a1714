// Package tele is optional remote control over MQTT: publishes active screen,
// host notifications and errors, accepts button presses.
package tele

import (
	"context"
	"sync"

	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/types"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/log2"
	"github.com/juju/errors"
)

// Tele contract:
// - Init fails only with invalid config, network issues ignored
// - public API calls never block on network
// - disabled Tele accepts all calls and does nothing
type Teler interface {
	Init(ctx context.Context, log *log2.Log, teleConfig Config, onKey KeyFunc) error
	Close()
	Active(name string)
	Notify(text string)
	Error(error)
}

// KeyFunc is called from transport goroutine.
type KeyFunc func(types.Button)

type tele struct {
	config    Config
	log       *log2.Log
	transport Transporter
	onKey     KeyFunc

	mu     sync.Mutex
	active string
}

var _ Teler = &tele{} // compile-time interface test

func New() Teler { return &tele{} }
func NewWithTransporter(trans Transporter) Teler {
	return &tele{transport: trans}
}

func (self *tele) Init(ctx context.Context, log *log2.Log, teleConfig Config, onKey KeyFunc) error {
	self.config = teleConfig
	self.log = log
	self.onKey = onKey
	if self.config.LogDebug {
		self.log.SetLevel(log2.LDebug)
	}
	if !self.config.Enabled {
		self.log.Infof("tele disabled")
		return nil
	}

	// test code sets .transport
	if self.transport == nil { // production path
		self.transport = &transportMqtt{}
	}
	if err := self.transport.Init(ctx, log, teleConfig, self.onMessage); err != nil {
		self.transport = nil
		return errors.Annotate(err, "tele transport")
	}
	return nil
}

func (self *tele) Close() {
	if self.enabled() {
		self.transport.Close()
	}
}

// Active publishes retained name of active screen, repeated names are skipped.
func (self *tele) Active(name string) {
	if !self.enabled() {
		return
	}
	self.mu.Lock()
	same := self.active == name
	self.active = name
	self.mu.Unlock()
	if same {
		return
	}
	self.transport.Publish(TopicActive, true, []byte(name))
}

func (self *tele) Notify(text string) {
	if self.enabled() {
		self.transport.Publish(TopicNotify, false, []byte(text))
	}
}

func (self *tele) Error(err error) {
	if self.enabled() && err != nil {
		self.transport.Publish(TopicError, false, []byte(err.Error()))
	}
}

func (self *tele) enabled() bool { return self.config.Enabled && self.transport != nil }

func (self *tele) onMessage(topicSuffix string, payload []byte) {
	switch topicSuffix {
	case TopicKey:
		b, err := types.ParseButton(string(payload))
		if err != nil {
			self.log.Errorf("tele key: %v", err)
			return
		}
		self.log.Debugf("tele key=%s", b)
		if self.onKey != nil {
			self.onKey(b)
		}
	default:
		self.log.Errorf("tele message in unexpected topic=%s payload=%q", topicSuffix, payload)
	}
}
