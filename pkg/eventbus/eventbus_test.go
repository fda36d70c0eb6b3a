package eventbus

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type testEvent struct{}

func (testEvent) Name() string { return "test.event" }

func TestBus_PublishCallsEverySubscriber(t *testing.T) {
	bus := New(zap.NewNop())

	var calls int32
	for i := 0; i < 3; i++ {
		bus.Subscribe("test.event", func(ctx context.Context, event Event) error {
			atomic.AddInt32(&calls, 1)
			return nil
		})
	}
	// Ошибка слушателя только логируется
	bus.Subscribe("test.event", func(ctx context.Context, event Event) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("boom")
	})

	bus.Publish(context.Background(), testEvent{})
	bus.Wait()

	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
}

func TestBus_PublishWithoutSubscribers(t *testing.T) {
	bus := New(zap.NewNop())
	bus.Publish(context.Background(), testEvent{})
	bus.Wait()
}

func TestBus_ListenerOutlivesCanceledContext(t *testing.T) {
	bus := New(zap.NewNop())

	var ctxErr atomic.Value
	bus.Subscribe("test.event", func(ctx context.Context, event Event) error {
		ctxErr.Store(ctx.Err() == nil)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.Publish(ctx, testEvent{})
	bus.Wait()

	assert.Equal(t, true, ctxErr.Load())
}
