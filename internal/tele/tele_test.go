package tele

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/types"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/log2"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	topic    string
	retained bool
	payload  string
}

type mockTransport struct {
	mu        sync.Mutex
	pubs      []published
	onMessage MessageCallback
	initErr   error
	closed    bool
}

func (self *mockTransport) Init(ctx context.Context, log *log2.Log, teleConfig Config, onMessage MessageCallback) error {
	self.onMessage = onMessage
	return self.initErr
}
func (self *mockTransport) Publish(topicSuffix string, retained bool, payload []byte) bool {
	self.mu.Lock()
	defer self.mu.Unlock()
	self.pubs = append(self.pubs, published{topicSuffix, retained, string(payload)})
	return true
}
func (self *mockTransport) Close() { self.closed = true }

func TestTele(t *testing.T) {
	t.Parallel()

	log := log2.NewTest(t, log2.LDebug)
	trans := &mockTransport{}
	keys := []types.Button{}
	tl := NewWithTransporter(trans)
	require.NoError(t, tl.Init(context.Background(), log, Config{Enabled: true}, func(b types.Button) { keys = append(keys, b) }))

	tl.Active("root")
	tl.Active("root")
	tl.Active("video")
	tl.Notify("longmenu")
	tl.Error(errors.New("socket"))
	tl.Error(nil)
	assert.Equal(t, []published{
		{TopicActive, true, "root"},
		{TopicActive, true, "video"},
		{TopicNotify, false, "longmenu"},
		{TopicError, false, "socket"},
	}, trans.pubs)

	trans.onMessage(TopicKey, []byte("menu"))
	trans.onMessage(TopicKey, []byte(" Power\n"))
	trans.onMessage(TopicKey, []byte("reboot"))
	trans.onMessage("other", []byte("menu"))
	assert.Equal(t, []types.Button{types.ButtonMenu, types.ButtonPower}, keys)

	tl.Close()
	assert.True(t, trans.closed)
}

func TestTeleDisabled(t *testing.T) {
	t.Parallel()

	trans := &mockTransport{}
	tl := NewWithTransporter(trans)
	require.NoError(t, tl.Init(context.Background(), log2.NewTest(t, log2.LDebug), Config{}, nil))
	tl.Active("root")
	tl.Notify("x")
	tl.Error(errors.New("e"))
	tl.Close()
	assert.Empty(t, trans.pubs)
	assert.Nil(t, trans.onMessage)
	assert.False(t, trans.closed)
}

func TestTeleInitError(t *testing.T) {
	t.Parallel()

	trans := &mockTransport{initErr: errors.New("bad")}
	tl := NewWithTransporter(trans)
	err := tl.Init(context.Background(), log2.NewTest(t, log2.LDebug), Config{Enabled: true}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tele transport")
	tl.Active("root")
	assert.Empty(t, trans.pubs)
}

// paho loggers are package globals, transport tests run sequentially
func TestTransportMqtt(t *testing.T) {
	mock := NewMqttMock()
	mock.ConnectErr = 1
	trans := &transportMqtt{newClient: mock.MockNew}
	type msg struct {
		suffix  string
		payload string
	}
	msgs := make(chan msg, 4)
	config := Config{
		Enabled:        true,
		MqttBroker:     "tcp://127.0.0.1:1883",
		ClientId:       "dongle",
		PingTimeoutSec: 1,
	}
	require.NoError(t, trans.Init(context.Background(), log2.NewTest(t, log2.LDebug), config, func(s string, p []byte) {
		msgs <- msg{s, string(p)}
	}))
	assert.Equal(t, "dongle", mock.Opt.ClientID)

	require.Eventually(t, func() bool { return mock.Subscribed("dongle/key") }, 5*time.Second, 10*time.Millisecond)
	online := <-mock.Pub
	assert.Equal(t, MockMsg{T: "dongle/online", P: []byte{0x01}, R: true}, online)

	trans.Publish(TopicActive, true, []byte("wifi"))
	assert.Equal(t, MockMsg{T: "dongle/active", P: []byte("wifi"), R: true}, <-mock.Pub)

	mock.TestPublish(t, "dongle/key", []byte("power"))
	assert.Equal(t, msg{"key", "power"}, <-msgs)

	trans.Close()
	assert.Equal(t, MockMsg{T: "dongle/online", P: []byte{0x00}, R: true}, <-mock.Pub)
	assert.False(t, mock.IsConnected())
}

func TestTransportMqttInvalidBroker(t *testing.T) {
	trans := &transportMqtt{newClient: NewMqttMock().MockNew}
	err := trans.Init(context.Background(), log2.NewTest(t, log2.LDebug), Config{Enabled: true, MqttBroker: "::nope"}, nil)
	assert.Error(t, err)
}
