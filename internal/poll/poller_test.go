package poll_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/listify/internal/poll"
)

func TestPollerTicksUntilStopped(t *testing.T) {
	var n atomic.Int32
	p := poll.New(10*time.Millisecond, func(context.Context) { n.Add(1) })

	p.Start(context.Background())
	assert.True(t, p.Running())
	require.Eventually(t, func() bool { return n.Load() >= 3 }, time.Second, 5*time.Millisecond)

	p.Stop()
	assert.False(t, p.Running())
	after := n.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, n.Load(), "no tick may fire after Stop returns")

	p.Stop()
}

func TestPollerRestartResetsLoop(t *testing.T) {
	var n atomic.Int32
	p := poll.New(10*time.Millisecond, func(context.Context) { n.Add(1) })
	defer p.Stop()

	p.Start(context.Background())
	p.Start(context.Background())
	require.Eventually(t, func() bool { return n.Load() >= 2 }, time.Second, 5*time.Millisecond)
	assert.True(t, p.Running())
}

func TestPollerStopsWithParentContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := poll.New(10*time.Millisecond, func(context.Context) {})
	p.Start(ctx)
	cancel()
	require.Eventually(t, func() bool { return !p.Running() }, time.Second, 5*time.Millisecond)
	p.Stop()
}

func TestStopCancelsInFlightTick(t *testing.T) {
	started := make(chan struct{}, 1)
	var finished atomic.Bool
	p := poll.New(5*time.Millisecond, func(ctx context.Context) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-ctx.Done()
		finished.Store(true)
	})
	p.Start(context.Background())
	<-started
	p.Stop()
	assert.True(t, finished.Load())
}
