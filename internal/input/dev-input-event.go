package input

import (
	"io"
	"os"
	"time"

	"github.com/aiemassfiria/huawei-oled-hijack-ng/helpers"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/types"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/log2"
	"github.com/juju/errors"
	"github.com/temoto/inputevent-go"
)

const DevInputEventTag = "dev-input-event"

// DevInputEventSource reads linux evdev. Read error reopens device with backoff,
// button driver may be reloaded while we run.
type DevInputEventSource struct {
	log     *log2.Log
	device  string
	f       io.ReadCloser
	backoff helpers.Backoff
	stop    <-chan struct{}
}

// compile-time interface compliance test
var _ Source = new(DevInputEventSource)

func (self *DevInputEventSource) String() string { return DevInputEventTag }

func NewDevInputEventSource(log *log2.Log, device string, stop <-chan struct{}) (*DevInputEventSource, error) {
	f, err := os.Open(device)
	if err != nil {
		return nil, errors.Annotatef(err, "input device=%s", device)
	}
	return &DevInputEventSource{
		log:     log,
		device:  device,
		f:       f,
		backoff: helpers.Backoff{Min: 100 * time.Millisecond, Max: 10 * time.Second, K: 2},
		stop:    stop,
	}, nil
}

func (self *DevInputEventSource) Read() (types.InputEvent, error) {
	for {
		ie, err := inputevent.ReadOne(self.f)
		if err != nil {
			self.log.Errorf("%s device=%s err=%v", DevInputEventTag, self.device, err)
			if err = self.reopen(); err != nil {
				return types.InputEvent{}, err
			}
			continue
		}
		self.backoff.Reset()
		if ie.Type == inputevent.EV_KEY {
			return types.InputEvent{
				Source: DevInputEventTag,
				Key:    types.InputKey(ie.Code),
				Up:     ie.Value == int32(inputevent.KeyStateUp),
			}, nil
		}
	}
}

func (self *DevInputEventSource) reopen() error {
	_ = self.f.Close()
	for {
		select {
		case <-self.stop:
			return errors.Errorf("stopped")
		case <-time.After(self.backoff.Failure()):
		}
		f, err := os.Open(self.device)
		if err == nil {
			self.f = f
			return nil
		}
		self.log.Debugf("%s reopen device=%s err=%v", DevInputEventTag, self.device, err)
	}
}
