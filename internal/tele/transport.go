package tele

import (
	"context"

	"github.com/aiemassfiria/huawei-oled-hijack-ng/log2"
)

// Tele transport contract:
// - Init fails only with invalid config, ignores network errors
// - application may start without network available
// - Publish queues message and returns quickly, delivery happens in background
// - topics are relative to configured prefix
type Transporter interface {
	Init(ctx context.Context, log *log2.Log, teleConfig Config, onMessage MessageCallback) error
	Publish(topicSuffix string, retained bool, payload []byte) bool
	Close()
}

type MessageCallback func(topicSuffix string, payload []byte)

const (
	TopicActive = "active"
	TopicNotify = "notify"
	TopicError  = "error"
	TopicKey    = "key"
	TopicOnline = "online"
)

// InputSourceTag marks input events injected by remote.
const InputSourceTag = "tele"
