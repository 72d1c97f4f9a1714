package tele

import (
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/juju/errors"
)

// MqttMock is in-memory mqtt.Client for transport tests.
type MqttMock struct {
	Opt *mqtt.ClientOptions
	Pub chan MockMsg

	mu        sync.Mutex
	subs      []MockSub
	connected bool
	// ConnectErr fails this many first Connect calls
	ConnectErr int
}

type MockSub struct {
	Pattern string
	Qos     byte
	Handler mqtt.MessageHandler
}

func NewMqttMock() *MqttMock {
	return &MqttMock{
		Pub:  make(chan MockMsg, 32),
		subs: make([]MockSub, 0, 16),
	}
}

func (self *MqttMock) MockNew(opt *mqtt.ClientOptions) mqtt.Client {
	self.Opt = opt
	return self
}

// TestPublish delivers message from broker side.
func (self *MqttMock) TestPublish(t testing.TB, topic string, payload []byte) {
	self.mu.Lock()
	subs := append([]MockSub(nil), self.subs...)
	self.mu.Unlock()
	for _, sub := range subs {
		if topic == sub.Pattern {
			sub.Handler(self, MockMsg{T: topic, P: payload})
			return
		}
	}
	t.Errorf("not subscribed for topic=%s", topic)
}

func (self *MqttMock) Subscribed(pattern string) bool {
	self.mu.Lock()
	defer self.mu.Unlock()
	for _, sub := range self.subs {
		if sub.Pattern == pattern {
			return true
		}
	}
	return false
}

func (self *MqttMock) Disconnect(uint) {
	self.mu.Lock()
	self.connected = false
	self.mu.Unlock()
}
func (self *MqttMock) IsConnected() bool {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.connected
}
func (self *MqttMock) IsConnectionOpen() bool { return self.IsConnected() }

func (self *MqttMock) Connect() mqtt.Token {
	self.mu.Lock()
	defer self.mu.Unlock()
	if self.ConnectErr > 0 {
		self.ConnectErr--
		return mockToken{errors.New("mock connect refused")}
	}
	self.connected = true
	return mockToken{nil}
}

func (self *MqttMock) Publish(topic string, qos byte, retain bool, payload interface{}) mqtt.Token {
	msg := MockMsg{T: topic, R: retain}
	switch p := payload.(type) {
	case []byte:
		msg.P = p
	case string:
		msg.P = []byte(p)
	}
	select {
	case self.Pub <- msg:
	default:
		return mockToken{errors.New("mock publish overflow")}
	}
	return mockToken{nil}
}

func (self *MqttMock) Subscribe(pattern string, qos byte, handler mqtt.MessageHandler) mqtt.Token {
	self.mu.Lock()
	self.subs = append(self.subs, MockSub{pattern, qos, handler})
	self.mu.Unlock()
	return mockToken{nil}
}

func (self *MqttMock) AddRoute(string, mqtt.MessageHandler) { panic("not implemented") }

func (self *MqttMock) OptionsReader() mqtt.ClientOptionsReader {
	panic("not implemented")
}

func (self *MqttMock) SubscribeMultiple(map[string]byte, mqtt.MessageHandler) mqtt.Token {
	panic("not implemented")
}
func (self *MqttMock) Unsubscribe(...string) mqtt.Token { panic("not implemented") }

type mockToken struct{ error }

func (tok mockToken) Error() error { return tok.error }
func (tok mockToken) Wait() bool   { return !errors.IsTimeout(tok.error) }
func (tok mockToken) WaitTimeout(time.Duration) bool {
	return !errors.IsTimeout(tok.error)
}

type MockMsg struct {
	T string
	P []byte
	R bool
}

func (msg MockMsg) Ack()              {}
func (msg MockMsg) Duplicate() bool   { return false }
func (msg MockMsg) MessageID() uint16 { return 0 }
func (msg MockMsg) Payload() []byte   { return msg.P }
func (msg MockMsg) Qos() byte         { return 0 }
func (msg MockMsg) Retained() bool    { return msg.R }
func (msg MockMsg) Topic() string     { return msg.T }
