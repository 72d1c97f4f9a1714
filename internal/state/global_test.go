package state

import (
	"testing"
	"time"

	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPost(t *testing.T) {
	t.Parallel()

	_, g, _ := NewTestContext(t, "")
	done := make(chan struct{})
	go g.Post(func() { close(done) })
	fn := <-g.LoopChan()
	fn()
	<-done

	g.Stop()
	// after stop Post must not block even with full queue
	for i := 0; i < loopQueueSize+1; i++ {
		g.Post(func() {})
	}
}

func TestRemoteKey(t *testing.T) {
	t.Parallel()

	_, g, _ := NewTestContext(t, `input { key_power = 200 }`)
	ch := g.Hardware.Input.SubscribeChan("test", g.Alive.StopChan())
	go g.remoteKey(types.ButtonPower)
	select {
	case e := <-ch:
		assert.Equal(t, types.InputEvent{Source: "tele", Key: 200, Up: true}, e)
	case <-time.After(5 * time.Second):
		require.Fail(t, "timeout")
	}
}

func TestTestContext(t *testing.T) {
	t.Parallel()

	ctx, g, env := NewTestContext(t, `display { height = 64 }`)
	assert.Equal(t, g, GetGlobal(ctx))
	assert.Equal(t, env.Display, g.MustDisplay())
	assert.True(t, env.Display.Small())
	assert.Equal(t, env.Runner, g.Runner)
	assert.Equal(t, env.Background, g.Background)
	assert.Equal(t, env.Scheduler, g.Scheduler)
}

func TestPostWait(t *testing.T) {
	t.Parallel()

	_, g, _ := NewTestContext(t, "")
	called := false
	go func() {
		fn := <-g.LoopChan()
		fn()
	}()
	assert.True(t, g.PostWait(func() { called = true }))
	assert.True(t, called)

	// nobody serves loop
	g.Stop()
	assert.False(t, g.PostWait(func() {}))
}
