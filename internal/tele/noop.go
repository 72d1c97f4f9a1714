package tele

import (
	"context"

	"github.com/aiemassfiria/huawei-oled-hijack-ng/log2"
)

type Noop struct{}

var _ Teler = Noop{} // compile-time interface test

func (Noop) Init(context.Context, *log2.Log, Config, KeyFunc) error { return nil }

func (Noop) Close() {}

func (Noop) Active(string) {}

func (Noop) Notify(string) {}

func (Noop) Error(error) {}
